// internal/catalog/catalog.go
package catalog

import (
	"card-advisor/internal/domain"
	"card-advisor/internal/storage"
	"context"
	"fmt"
	"log/slog"
)

// Source records which dataset answered a read.
type Source string

const (
	SourceStore  Source = "store"
	SourceStatic Source = "static"
)

// Catalog reads cards from a store and falls back to the static dataset
// when the store fails.
type Catalog struct {
	store  storage.CatalogStore
	logger *slog.Logger
}

func New(store storage.CatalogStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, logger: logger}
}

func (c *Catalog) Store() storage.CatalogStore {
	return c.store
}

// All returns every card. An empty or failing store yields the static dataset.
func (c *Catalog) All(ctx context.Context) ([]domain.CardRecord, Source) {
	cards, err := c.store.GetAll(ctx)
	if err != nil {
		c.logger.Warn("catalog read failed, using static cards", "error", err)
		return Static(), SourceStatic
	}
	if len(cards) == 0 {
		return Static(), SourceStatic
	}
	return cards, SourceStore
}

// Get returns one card. A store miss is domain.ErrNotFound; a store failure
// falls back to the static dataset.
func (c *Catalog) Get(ctx context.Context, id int) (domain.CardRecord, Source, error) {
	card, err := c.store.GetByID(ctx, id)
	if err != nil {
		c.logger.Warn("card lookup failed, using static cards", "card_id", id, "error", err)
		if static, ok := StaticByID(id); ok {
			return static, SourceStatic, nil
		}
		return domain.CardRecord{}, SourceStatic, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	if card == nil {
		return domain.CardRecord{}, SourceStore, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	return *card, SourceStore, nil
}

// ByIDs passes straight through to the store.
func (c *Catalog) ByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error) {
	cards, err := c.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get cards by ids: %w", err)
	}
	return cards, nil
}

func (c *Catalog) QueryEligible(ctx context.Context, q storage.EligibleQuery) ([]domain.CardRecord, error) {
	return c.store.QueryEligible(ctx, q)
}
