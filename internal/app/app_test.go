package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"card-advisor/internal/config"
	"card-advisor/internal/domain"
	"card-advisor/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "cards.db"),
		},
		Recommend: config.RecommendConfig{
			LiveProjection:     "conservative",
			LiveTopN:           5,
			FallbackProjection: "simple",
			FallbackTopN:       3,
		},
	}
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewWithSQLite(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), quiet())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.True(t, a.Monitor.Probe(ctx))
	assert.IsType(t, notify.Disabled{}, a.Sender)

	cards, err := a.Recommender.Recommend(ctx, domain.UserProfile{
		MonthlyIncome:  150000,
		CreditScore:    800,
		SpendingHabits: []string{"travel"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cards)
	assert.LessOrEqual(t, len(cards), 5)
}

func TestNewForceMockStaysOffline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.ForceMock = true

	a, err := New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.False(t, a.Monitor.Probe(context.Background()))
	assert.True(t, a.Monitor.MockMode())
}

func TestNewRejectsUnknownProjection(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recommend.LiveProjection = "lavish"
	_, err := New(context.Background(), cfg, quiet())
	assert.ErrorContains(t, err, "live path")
}

func TestNewSenderWithCredentials(t *testing.T) {
	s, err := newSender(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"}, quiet())
	require.NoError(t, err)
	assert.IsType(t, &notify.WhatsApp{}, s)
}
