// internal/storage/storage.go
package storage

import (
	"card-advisor/internal/domain"
	"context"
)

// EligibleQuery carries the pre-filter the store applies before scoring.
// CategoryPattern is a LIKE pattern such as "%travel%dining%"; BenefitLabel may be empty.
type EligibleQuery struct {
	Income          float64
	CreditScore     int
	CategoryPattern string
	BenefitLabel    string
}

type CatalogStore interface {
	GetAll(ctx context.Context) ([]domain.CardRecord, error)
	// GetByID returns nil, nil when the card does not exist.
	GetByID(ctx context.Context, id int) (*domain.CardRecord, error)
	GetByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error)
	QueryEligible(ctx context.Context, q EligibleQuery) ([]domain.CardRecord, error)
	Ping(ctx context.Context) error
}

// Offline stands in for a store that could not be opened. Every call fails
// with domain.ErrUnavailable so callers take their fallback paths.
type Offline struct {
	Reason error
}

func (o Offline) err() error {
	if o.Reason == nil {
		return domain.ErrUnavailable
	}
	return &offlineError{reason: o.Reason}
}

type offlineError struct{ reason error }

func (e *offlineError) Error() string { return "catalog store offline: " + e.reason.Error() }

func (e *offlineError) Unwrap() []error { return []error{domain.ErrUnavailable, e.reason} }

func (o Offline) GetAll(context.Context) ([]domain.CardRecord, error) { return nil, o.err() }

func (o Offline) GetByID(context.Context, int) (*domain.CardRecord, error) { return nil, o.err() }

func (o Offline) GetByIDs(context.Context, []int) ([]domain.CardRecord, error) { return nil, o.err() }

func (o Offline) QueryEligible(context.Context, EligibleQuery) ([]domain.CardRecord, error) {
	return nil, o.err()
}

func (o Offline) Ping(context.Context) error { return o.err() }
