package eligibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"card-advisor/internal/catalog"
	"card-advisor/internal/domain"
	"card-advisor/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardIDs(cards []domain.CardRecord) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestFilterStages(t *testing.T) {
	cards := catalog.Static()

	tests := []struct {
		name      string
		profile   domain.UserProfile
		wantStage Stage
		wantIDs   []int
	}{
		{
			name:      "strict",
			profile:   domain.UserProfile{MonthlyIncome: 300000, CreditScore: 650},
			wantStage: StageStrict,
			wantIDs:   []int{3, 4, 5, 8},
		},
		{
			name:      "relaxed when nothing qualifies strictly",
			profile:   domain.UserProfile{MonthlyIncome: 100000, CreditScore: 600},
			wantStage: StageRelaxed,
			wantIDs:   []int{3, 4, 5, 8},
		},
		{
			name:      "prefix when relaxed rule is empty too",
			profile:   domain.UserProfile{MonthlyIncome: 1000, CreditScore: 100},
			wantStage: StagePrefix,
			wantIDs:   []int{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stage := Filter(tt.profile, cards)
			assert.Equal(t, tt.wantStage, stage)
			assert.Equal(t, tt.wantIDs, cardIDs(got))
		})
	}
}

func TestFilterStrictResultsSatisfyThresholds(t *testing.T) {
	cards := catalog.Static()
	for _, income := range []float64{200000, 500000, 750000, 2000000} {
		for _, score := range []int{600, 680, 720, 800} {
			p := domain.UserProfile{MonthlyIncome: income, CreditScore: score}
			got, stage := Filter(p, cards)
			if stage != StageStrict {
				continue
			}
			for _, c := range got {
				assert.True(t, Qualifies(c, p), "card %d for income=%v score=%d", c.ID, income, score)
			}
		}
	}
}

func TestFilterEmptyCatalog(t *testing.T) {
	got, stage := Filter(domain.UserProfile{MonthlyIncome: 1, CreditScore: 1}, nil)
	assert.Equal(t, StagePrefix, stage)
	assert.Empty(t, got)
}

func TestScenarioTravelCardQualifies(t *testing.T) {
	card := domain.CardRecord{ID: 1, MinIncome: 600000, MinCreditScore: 700, Categories: domain.TagList{"travel"}, RewardType: domain.RewardPoints}
	p := domain.UserProfile{MonthlyIncome: 700000, CreditScore: 750, SpendingHabits: []string{"travel"}, PreferredBenefits: domain.BenefitTravelPoints}

	got, stage := Filter(p, []domain.CardRecord{card})
	assert.Equal(t, StageStrict, stage)
	assert.Equal(t, []int{1}, cardIDs(got))
}

func TestCategoryPattern(t *testing.T) {
	assert.Equal(t, "%", CategoryPattern(nil))
	assert.Equal(t, "%travel%", CategoryPattern([]string{"travel"}))
	assert.Equal(t, "%travel%dining%", CategoryPattern([]string{"travel", "dining"}))
}

func TestQuery(t *testing.T) {
	q := Query(domain.UserProfile{MonthlyIncome: 5e5, CreditScore: 720, SpendingHabits: []string{"fuel"}, PreferredBenefits: domain.BenefitCashback})
	assert.Equal(t, storage.EligibleQuery{Income: 5e5, CreditScore: 720, CategoryPattern: "%fuel%", BenefitLabel: "cashback"}, q)
}

type stubCatalog struct {
	eligible []domain.CardRecord
	err      error
	all      []domain.CardRecord
	src      catalog.Source
	queried  storage.EligibleQuery
}

func (s *stubCatalog) QueryEligible(_ context.Context, q storage.EligibleQuery) ([]domain.CardRecord, error) {
	s.queried = q
	return s.eligible, s.err
}

func (s *stubCatalog) All(context.Context) ([]domain.CardRecord, catalog.Source) {
	return s.all, s.src
}

func newTestFilterer(c Catalog) *Filterer {
	return NewFilterer(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEligibleUsesStoreRows(t *testing.T) {
	stored := []domain.CardRecord{{ID: 11}, {ID: 12}}
	cat := &stubCatalog{eligible: stored}
	p := domain.UserProfile{MonthlyIncome: 1, CreditScore: 1, SpendingHabits: []string{"travel"}}

	res := newTestFilterer(cat).Eligible(context.Background(), p)
	assert.Equal(t, StageStrict, res.Stage)
	assert.Equal(t, catalog.SourceStore, res.Source)
	assert.Equal(t, []int{11, 12}, cardIDs(res.Cards))
	assert.Equal(t, "%travel%", cat.queried.CategoryPattern)
}

func TestEligibleRelaxesOverCatalogOnZeroRows(t *testing.T) {
	all := []domain.CardRecord{
		{ID: 1, MinIncome: 900000, MinCreditScore: 800},
		{ID: 2, MinIncome: 110000, MinCreditScore: 800},
	}
	cat := &stubCatalog{all: all, src: catalog.SourceStore}
	p := domain.UserProfile{MonthlyIncome: 100000, CreditScore: 600}

	res := newTestFilterer(cat).Eligible(context.Background(), p)
	assert.Equal(t, StageRelaxed, res.Stage)
	assert.Equal(t, catalog.SourceStore, res.Source)
	assert.Equal(t, []int{2}, cardIDs(res.Cards))
}

func TestEligibleFallsBackToStaticOnStoreFailure(t *testing.T) {
	cat := &stubCatalog{err: errors.New("connection refused")}
	p := domain.UserProfile{MonthlyIncome: 300000, CreditScore: 650}

	res := newTestFilterer(cat).Eligible(context.Background(), p)
	require.NotEmpty(t, res.Cards)
	assert.Equal(t, catalog.SourceStatic, res.Source)
	assert.Equal(t, StageStrict, res.Stage)
	assert.Equal(t, []int{3, 4, 5, 8}, cardIDs(res.Cards))
}
