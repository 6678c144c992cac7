package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	down  atomic.Bool
	pings atomic.Int32
}

func (s *flakyStore) Ping(context.Context) error {
	s.pings.Add(1)
	if s.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMonitorStartsUnavailable(t *testing.T) {
	m := NewMonitor(&flakyStore{}, Config{}, quiet())
	assert.False(t, m.Available())
	assert.True(t, m.MockMode())
}

func TestProbeTracksStore(t *testing.T) {
	store := &flakyStore{}
	m := NewMonitor(store, Config{}, quiet())

	assert.True(t, m.Probe(context.Background()))
	assert.True(t, m.Available())

	store.down.Store(true)
	assert.False(t, m.Probe(context.Background()))
	assert.False(t, m.Available())

	store.down.Store(false)
	m.Probe(context.Background())
	assert.True(t, m.Available())
}

func TestForceMockWins(t *testing.T) {
	m := NewMonitor(&flakyStore{}, Config{ForceMock: true}, quiet())
	m.Probe(context.Background())
	assert.False(t, m.Available())
	assert.True(t, m.Status(time.Now()).MockMode)
}

func TestRunProbesOnSchedule(t *testing.T) {
	store := &flakyStore{}
	m := NewMonitor(store, Config{Schedule: "@every 1s"}, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return store.pings.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
	assert.True(t, m.Available())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestRunRejectsBadSchedule(t *testing.T) {
	m := NewMonitor(&flakyStore{}, Config{Schedule: "every now and then"}, quiet())
	err := m.Run(context.Background())
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	store := &flakyStore{}
	m := NewMonitor(store, Config{}, quiet())
	m.Probe(context.Background())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))
	st := m.Status(now)
	assert.Equal(t, "ok", st.Status)
	assert.False(t, st.MockMode)
	assert.Equal(t, time.UTC, st.Timestamp.Location())
}
