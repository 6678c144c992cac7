package ranker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"card-advisor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() domain.UserProfile {
	return domain.UserProfile{
		MonthlyIncome:     85000,
		CreditScore:       760,
		SpendingHabits:    []string{"travel", "dining"},
		PreferredBenefits: domain.BenefitTravelPoints,
	}
}

func testCards() []domain.ScoredCard {
	return []domain.ScoredCard{
		{CardRecord: domain.CardRecord{Name: "Alpha", Issuer: "A Bank", AnnualFee: 500, RewardType: domain.RewardPoints, Categories: domain.TagList{"travel"}}, Reasons: []string{"r1"}},
		{CardRecord: domain.CardRecord{Name: "Beta", Issuer: "B Bank", RewardType: domain.RewardCashback}},
	}
}

func reply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"output": map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:      srv.URL,
		APIKey:       "secret",
		Model:        "test/model",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRerankSendsInferenceRequest(t *testing.T) {
	var got inferenceRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/inference/test/model", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, reply("Sure! Here you go:\n[{\"name\":\"Beta\",\"score\":91},{\"name\":\"Alpha\",\"score\":40}] hope it helps"))
	})

	scores, err := c.Rerank(context.Background(), testProfile(), testCards())
	require.NoError(t, err)
	assert.Equal(t, []domain.RankScore{{Name: "Beta", Score: 91}, {Name: "Alpha", Score: 40}}, scores)

	require.Len(t, got.Input.Messages, 2)
	assert.Equal(t, "system", got.Input.Messages[0].Role)
	assert.Equal(t, 500, got.MaxTokens)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Input.Messages[1].Content, "Card Name: Alpha")
	assert.Contains(t, got.Input.Messages[1].Content, "Reasons: r1")
	assert.Contains(t, got.Input.Messages[1].Content, "Spending Categories: travel, dining")
}

func TestEnrichParsesAlignedReasons(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, reply(`[["Lounge access for your trips","Miles on dining"], null]`))
	})

	reasons, err := c.Enrich(context.Background(), testProfile(), testCards())
	require.NoError(t, err)
	require.Len(t, reasons, 2)
	assert.Equal(t, []string{"Lounge access for your trips", "Miles on dining"}, reasons[0])
	assert.Nil(t, reasons[1])
}

func TestUnparseableReply(t *testing.T) {
	for _, content := range []string{"I cannot help with that.", "[not json]", ""} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, reply(content))
		})
		_, err := c.Enrich(context.Background(), testProfile(), testCards())
		require.ErrorIs(t, err, ErrUnparseable, content)

		_, err = c.Rerank(context.Background(), testProfile(), testCards())
		require.ErrorIs(t, err, ErrUnparseable, content)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, reply(`[{"name":"Alpha","score":70}]`))
	})

	scores, err := c.Rerank(context.Background(), testProfile(), testCards())
	require.NoError(t, err)
	assert.Len(t, scores, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"bad key"}`)
	})

	_, err := c.Rerank(context.Background(), testProfile(), testCards())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRerankHonoursContextTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Rerank(ctx, testProfile(), testCards())
	require.Error(t, err)
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	r := New(Config{}, nil)
	_, err := r.Rerank(context.Background(), testProfile(), testCards())
	require.ErrorIs(t, err, ErrDisabled)
	_, err = r.Enrich(context.Background(), testProfile(), testCards())
	require.ErrorIs(t, err, ErrDisabled)
}
