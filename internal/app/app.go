// Package app builds the shared service graph used by the api and bot binaries.
package app

import (
	"card-advisor/internal/catalog"
	"card-advisor/internal/comparison"
	"card-advisor/internal/config"
	"card-advisor/internal/eligibility"
	"card-advisor/internal/health"
	"card-advisor/internal/notify"
	"card-advisor/internal/ranker"
	"card-advisor/internal/recommend"
	"card-advisor/internal/scoring"
	"card-advisor/internal/storage"
	"card-advisor/internal/storage/postgres"
	"card-advisor/internal/storage/sqlite"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var errMockForced = errors.New("mock data forced")

type App struct {
	Catalog     *catalog.Catalog
	Monitor     *health.Monitor
	Recommender *recommend.Orchestrator
	Comparer    *comparison.Engine
	Sender      notify.Sender

	closers []func()
}

// New wires every component from cfg. A store that cannot be opened is
// replaced by storage.Offline so the service still answers from the static set.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{}

	store := a.openStore(ctx, cfg.Catalog, log)
	a.Catalog = catalog.New(store, log)
	a.Monitor = health.NewMonitor(store, health.Config{
		Schedule:     cfg.Catalog.ProbeSchedule,
		ProbeTimeout: cfg.Catalog.ProbeTimeout,
		ForceMock:    cfg.Catalog.ForceMock,
	}, log)

	opts, err := recommendOptions(cfg.Recommend)
	if err != nil {
		a.Close()
		return nil, err
	}
	rk := ranker.New(ranker.Config{
		BaseURL:    cfg.Ranker.BaseURL,
		APIKey:     cfg.Ranker.APIKey,
		Model:      cfg.Ranker.Model,
		Timeout:    cfg.Ranker.Timeout,
		MaxRetries: cfg.Ranker.MaxRetries,
	}, log)
	a.Recommender = recommend.New(eligibility.NewFilterer(a.Catalog, log), rk, a.Monitor, opts, log)
	a.Comparer = comparison.NewEngine(a.Catalog, log)

	a.Sender, err = newSender(cfg.Twilio, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) storage.CatalogStore {
	if cfg.ForceMock {
		log.Info("mock data forced, catalog store not opened")
		return storage.Offline{Reason: errMockForced}
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, catalog.Seed())
		if err != nil {
			log.Error("sqlite catalog unavailable", "path", cfg.SQLitePath, "error", err)
			return storage.Offline{Reason: err}
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		log.Info("catalog store opened", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return s
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres catalog unavailable", "error", err)
			return storage.Offline{Reason: err}
		}
		a.closers = append(a.closers, pool.Close)
		log.Info("catalog store opened", "driver", cfg.Driver)
		return postgres.NewStorage(pool)
	}
}

func recommendOptions(cfg config.RecommendConfig) (recommend.Options, error) {
	opts := recommend.DefaultOptions()

	live, err := scoring.ProjectionByName(cfg.LiveProjection)
	if err != nil {
		return opts, fmt.Errorf("live path: %w", err)
	}
	fallback, err := scoring.ProjectionByName(cfg.FallbackProjection)
	if err != nil {
		return opts, fmt.Errorf("fallback path: %w", err)
	}

	opts.Live.Projection = live
	opts.Fallback.Projection = fallback
	if cfg.LiveTopN > 0 {
		opts.Live.TopN = cfg.LiveTopN
	}
	if cfg.FallbackTopN > 0 {
		opts.Fallback.TopN = cfg.FallbackTopN
	}
	opts.Enrich = cfg.Enrich
	opts.Rerank = cfg.Rerank
	if cfg.RerankTimeout > 0 {
		opts.RerankTimeout = cfg.RerankTimeout
	}
	return opts, nil
}

func newSender(cfg config.TwilioConfig, log *slog.Logger) (notify.Sender, error) {
	tc := notify.TwilioConfig{
		AccountSID: cfg.AccountSID,
		AuthToken:  cfg.AuthToken,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}
	if !tc.Configured() {
		log.Warn("twilio credentials missing, whatsapp sends disabled")
		return notify.Disabled{}, nil
	}
	client, err := notify.NewTwilio(tc, log)
	if err != nil {
		return nil, fmt.Errorf("twilio client: %w", err)
	}
	return notify.NewWhatsApp(client, notify.WhatsAppConfig{
		From:            cfg.From,
		DefaultTemplate: cfg.DefaultTemplate,
	}, log), nil
}

// Close releases store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
