package recommend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"card-advisor/internal/catalog"
	"card-advisor/internal/domain"
	"card-advisor/internal/eligibility"
	"card-advisor/internal/ranker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEligibility struct {
	live        eligibility.Result
	liveCalls   int
	staticCalls int
}

func (s *stubEligibility) Eligible(context.Context, domain.UserProfile) eligibility.Result {
	s.liveCalls++
	return s.live
}

func (s *stubEligibility) EligibleStatic(p domain.UserProfile) eligibility.Result {
	s.staticCalls++
	out, stage := eligibility.Filter(p, catalog.Static())
	return eligibility.Result{Cards: out, Stage: stage, Source: catalog.SourceStatic}
}

type health bool

func (h health) Available() bool { return bool(h) }

type stubRanker struct {
	scores    []domain.RankScore
	reasons   [][]string
	rerankErr error
	enrichErr error
	block     bool
}

func (s stubRanker) Rerank(ctx context.Context, _ domain.UserProfile, _ []domain.ScoredCard) ([]domain.RankScore, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.scores, s.rerankErr
}

func (s stubRanker) Enrich(context.Context, domain.UserProfile, []domain.ScoredCard) ([][]string, error) {
	return s.reasons, s.enrichErr
}

func storeCards() []domain.CardRecord {
	return []domain.CardRecord{
		{ID: 1, Name: "Travel Plus", MinIncome: 600000, MinCreditScore: 700, Categories: domain.TagList{"travel"}, RewardType: domain.RewardPoints, AnnualFee: 2500},
		{ID: 2, Name: "Cash Basic", MinIncome: 100000, MinCreditScore: 650, Categories: domain.TagList{"groceries"}, RewardType: domain.RewardCashback},
		{ID: 3, Name: "Fuel Saver", MinIncome: 900000, MinCreditScore: 800, Categories: domain.TagList{"fuel"}, RewardType: domain.RewardCashback, AnnualFee: 500},
	}
}

func travelProfile() domain.UserProfile {
	return domain.UserProfile{MonthlyIncome: 700000, CreditScore: 750, SpendingHabits: []string{"travel"}, PreferredBenefits: domain.BenefitTravelPoints}
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func names(cards []domain.ScoredCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func liveEligibility() *stubEligibility {
	return &stubEligibility{live: eligibility.Result{Cards: storeCards(), Stage: eligibility.StageStrict, Source: catalog.SourceStore}}
}

func TestRecommendRejectsIncompleteProfile(t *testing.T) {
	o := New(liveEligibility(), nil, health(true), DefaultOptions(), quiet())

	_, err := o.Recommend(context.Background(), domain.UserProfile{CreditScore: 700})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = o.Recommend(context.Background(), domain.UserProfile{MonthlyIncome: 1000})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecommendLivePath(t *testing.T) {
	elig := liveEligibility()
	o := New(elig, nil, health(true), DefaultOptions(), quiet())

	got, err := o.Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Equal(t, 1, elig.liveCalls)
	assert.Equal(t, 0, elig.staticCalls)

	// Fuel Saver scores 0 and is dropped on the live path
	require.Equal(t, []string{"Travel Plus", "Cash Basic"}, names(got))
	assert.Equal(t, 60, got[0].Score)
	// conservative projection: min(700000*0.4, 50000) * 12 * 1.5%
	assert.Equal(t, int64(9000), got[0].YearlyRewards)
	assert.Equal(t, 30, got[1].Score)
}

func TestRecommendLivePathCapsAtFive(t *testing.T) {
	cards := make([]domain.CardRecord, 0, 8)
	for i := 1; i <= 8; i++ {
		cards = append(cards, domain.CardRecord{ID: i, Name: string(rune('A' + i)), RewardType: domain.RewardPoints})
	}
	elig := &stubEligibility{live: eligibility.Result{Cards: cards, Source: catalog.SourceStore}}
	got, err := New(elig, nil, health(true), DefaultOptions(), quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestRecommendMockModeUsesStaticFallbackPath(t *testing.T) {
	elig := liveEligibility()
	o := New(elig, nil, health(false), DefaultOptions(), quiet())

	got, err := o.Recommend(context.Background(), domain.UserProfile{MonthlyIncome: 300000, CreditScore: 650, PreferredBenefits: domain.BenefitCashback})
	require.NoError(t, err)
	assert.Equal(t, 0, elig.liveCalls)
	assert.Equal(t, 1, elig.staticCalls)
	require.Len(t, got, 3)
	// simple projection: 300000*0.3*12*2%
	assert.Equal(t, int64(21600), got[0].YearlyRewards)
}

func TestRecommendStaticSourceSwitchesToFallbackPath(t *testing.T) {
	elig := &stubEligibility{live: eligibility.Result{Cards: storeCards(), Stage: eligibility.StageStrict, Source: catalog.SourceStatic}}
	got, err := New(elig, nil, health(true), DefaultOptions(), quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)

	// fallback path keeps zero scores
	require.Equal(t, []string{"Travel Plus", "Cash Basic", "Fuel Saver"}, names(got))
	// 700000*0.3*12*1.5%
	assert.Equal(t, int64(37800), got[0].YearlyRewards)
}

func TestRecommendRerank(t *testing.T) {
	opts := DefaultOptions()
	opts.Rerank = true
	r := stubRanker{scores: []domain.RankScore{{Name: "Cash Basic", Score: 88}, {Name: "Unknown", Score: 99}}}

	got, err := New(liveEligibility(), r, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	require.Equal(t, []string{"Cash Basic", "Travel Plus"}, names(got))
	require.NotNil(t, got[0].AIScore)
	assert.Equal(t, 88.0, *got[0].AIScore)
	assert.Equal(t, float64(DefaultAIScore), *got[1].AIScore)
}

func TestRecommendRerankFailureKeepsOrder(t *testing.T) {
	base, err := New(liveEligibility(), nil, health(true), DefaultOptions(), quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Rerank = true
	for _, r := range []ranker.Ranker{
		stubRanker{rerankErr: errors.New("502 bad gateway")},
		stubRanker{rerankErr: ranker.ErrUnparseable},
		ranker.Disabled{},
	} {
		got, err := New(liveEligibility(), r, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
		require.NoError(t, err)
		assert.Equal(t, names(base), names(got))
		for _, c := range got {
			assert.Nil(t, c.AIScore)
		}
	}
}

func TestRecommendRerankTimeoutKeepsOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.Rerank = true
	opts.RerankTimeout = 10 * time.Millisecond

	got, err := New(liveEligibility(), stubRanker{block: true}, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel Plus", "Cash Basic"}, names(got))
}

func TestRecommendEnrich(t *testing.T) {
	opts := DefaultOptions()
	opts.Enrich = true

	r := stubRanker{reasons: [][]string{{"Lounge access for frequent trips"}}}
	got, err := New(liveEligibility(), r, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Equal(t, []string{"Lounge access for frequent trips"}, got[0].Reasons)
	assert.Equal(t, GenericReasons, got[1].Reasons)

	r = stubRanker{enrichErr: ranker.ErrUnparseable}
	got, err = New(liveEligibility(), r, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Equal(t, GenericReasons, got[0].Reasons)
	assert.Equal(t, GenericReasons, got[1].Reasons)

	r = stubRanker{enrichErr: errors.New("connection reset")}
	got, err = New(liveEligibility(), r, health(true), opts, quiet()).Recommend(context.Background(), travelProfile())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Excellent travel rewards program",
		"Great rewards on travel spending",
		"Low annual fee relative to your income",
	}, got[0].Reasons)
}

func TestApplyScoresIsStable(t *testing.T) {
	cards := []domain.ScoredCard{
		{CardRecord: domain.CardRecord{Name: "A"}},
		{CardRecord: domain.CardRecord{Name: "B"}},
		{CardRecord: domain.CardRecord{Name: "C"}},
	}
	got := ApplyScores(cards, []domain.RankScore{{Name: "C", Score: 0}, {Name: "B", Score: 50}})
	assert.Equal(t, []string{"A", "B", "C"}, names(got))
	assert.Nil(t, cards[0].AIScore, "input is not modified")
}
