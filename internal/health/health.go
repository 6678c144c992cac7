// Package health tracks whether the catalog store is reachable.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Pinger is satisfied by every catalog store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	// Schedule is a cron spec, e.g. "@every 30s".
	Schedule     string
	ProbeTimeout time.Duration
	// ForceMock pins the service to the static dataset.
	ForceMock bool
}

// Monitor probes the store on a schedule and exposes the last result.
type Monitor struct {
	store     Pinger
	cfg       Config
	log       *slog.Logger
	available atomic.Bool
	probed    atomic.Bool
}

func NewMonitor(store Pinger, cfg Config, log *slog.Logger) *Monitor {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 30s"
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{store: store, cfg: cfg, log: log.With("component", "health")}
}

// Available reports whether requests should go to the store.
func (m *Monitor) Available() bool {
	return !m.cfg.ForceMock && m.available.Load()
}

// MockMode is the inverse of Available.
func (m *Monitor) MockMode() bool {
	return !m.Available()
}

// Probe pings the store once and records the result.
func (m *Monitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	err := m.store.Ping(ctx)
	up := err == nil
	prev := m.available.Swap(up)
	first := !m.probed.Swap(true)

	switch {
	case first && up:
		m.log.Info("catalog store connected")
	case first:
		m.log.Warn("catalog store unreachable, running in mock mode", "error", err)
	case prev && !up:
		m.log.Warn("catalog store went down, switching to mock mode", "error", err)
	case !prev && up:
		m.log.Info("catalog store is back")
	}
	return up
}

// Run probes immediately, then on the schedule until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.ForceMock {
		m.log.Info("mock mode forced by configuration")
		<-ctx.Done()
		return nil
	}

	m.Probe(ctx)

	c := cron.New()
	if _, err := c.AddFunc(m.cfg.Schedule, func() { m.Probe(ctx) }); err != nil {
		return fmt.Errorf("register health probe %q: %w", m.cfg.Schedule, err)
	}
	c.Start()
	m.log.Debug("health probe scheduled", "schedule", m.cfg.Schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	MockMode  bool      `json:"mockMode"`
}

func (m *Monitor) Status(now time.Time) Status {
	return Status{Status: "ok", Timestamp: now.UTC(), MockMode: m.MockMode()}
}
