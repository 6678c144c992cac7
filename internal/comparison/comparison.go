// Package comparison derives side-by-side metrics for a short list of cards.
package comparison

import (
	"card-advisor/internal/domain"
	"card-advisor/internal/scoring"
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
)

// BaselineMonthlySpend is the spend every compared card is valued against.
const BaselineMonthlySpend = 30000

const (
	rewardTermMax   = 40
	feeTermMax      = 30
	perksTermMax    = 30
	perkPoints      = 10
	benefitScale    = 10000
	feeScale        = 15000
	perkSubPoints   = 25
	notApplicable   = "N/A"
	scoreUpperBound = 100
)

// Feature keys reported in ComparisonRow.BestIn.
const (
	FeatureJoiningFee = "joining_fee"
	FeatureAnnualFee  = "annual_fee"
	FeatureBenefit    = "estimated_yearly_benefit"
	FeatureRatio      = "cost_benefit_ratio"
)

func EstimatedYearlyBenefit(r domain.RewardType) int64 {
	return scoring.YearlyRewards(BaselineMonthlySpend, r)
}

// CostBenefitRatio is "N/A" for a free card, otherwise benefit/fee to two decimals.
func CostBenefitRatio(benefit, annualFee int64) string {
	if annualFee == 0 {
		return notApplicable
	}
	return decimal.NewFromInt(benefit).Div(decimal.NewFromInt(annualFee)).StringFixed(2)
}

func ratioValue(ratio string) float64 {
	if ratio == notApplicable {
		return 0
	}
	d, err := decimal.NewFromString(ratio)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func rewardTerm(benefit int64) float64 {
	return math.Min(rewardTermMax, float64(benefit)/benefitScale*rewardTermMax)
}

func feeTerm(annualFee int64) float64 {
	if annualFee == 0 {
		return feeTermMax
	}
	return math.Max(0, (1-float64(annualFee)/feeScale)*feeTermMax)
}

func perksTerm(perks int) float64 {
	return math.Min(perksTermMax, float64(perks*perkPoints))
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(scoreUpperBound, v))))
}

// OverallScore is the 0-100 composite of reward value, fee burden and perk count.
func OverallScore(benefit, annualFee int64, perks int) int {
	return clampScore(rewardTerm(benefit) + feeTerm(annualFee) + perksTerm(perks))
}

// SubScoresFor rescales each composite term to 0-100 on its own.
func SubScoresFor(benefit, annualFee int64, perks int, overall int) domain.SubScores {
	return domain.SubScores{
		RewardValue:  clampScore(math.Round(float64(benefit) / benefitScale * 100)),
		AnnualCost:   clampScore(math.Round((1 - float64(annualFee)/feeScale) * 100)),
		PerksValue:   clampScore(float64(perks * perkSubPoints)),
		OverallScore: clampScore(float64(overall)),
	}
}

// Row computes the derived metrics for one card.
func Row(card domain.CardRecord) domain.ComparisonRow {
	benefit := EstimatedYearlyBenefit(card.RewardType)
	overall := OverallScore(benefit, card.AnnualFee, len(card.SpecialPerks))
	return domain.ComparisonRow{
		CardRecord:             card,
		EstimatedYearlyBenefit: benefit,
		CostBenefitRatio:       CostBenefitRatio(benefit, card.AnnualFee),
		OverallScore:           overall,
		SubScores:              SubScoresFor(benefit, card.AnnualFee, len(card.SpecialPerks), overall),
	}
}

// Rows builds comparison rows and marks the top pick and per-feature winners.
func Rows(cards []domain.CardRecord) []domain.ComparisonRow {
	rows := make([]domain.ComparisonRow, len(cards))
	for i, c := range cards {
		rows[i] = Row(c)
	}
	if len(rows) == 0 {
		return rows
	}

	best := 0
	for i := range rows {
		if rows[i].OverallScore > rows[best].OverallScore {
			best = i
		}
	}
	rows[best].TopPick = true

	markBest(rows, FeatureJoiningFee, func(r domain.ComparisonRow) float64 { return -float64(r.JoiningFee) })
	markBest(rows, FeatureAnnualFee, func(r domain.ComparisonRow) float64 { return -float64(r.AnnualFee) })
	markBest(rows, FeatureBenefit, func(r domain.ComparisonRow) float64 { return float64(r.EstimatedYearlyBenefit) })
	markBest(rows, FeatureRatio, func(r domain.ComparisonRow) float64 { return ratioValue(r.CostBenefitRatio) })
	return rows
}

// markBest tags every row that reaches the highest value.
func markBest(rows []domain.ComparisonRow, feature string, value func(domain.ComparisonRow) float64) {
	top := math.Inf(-1)
	for _, r := range rows {
		top = math.Max(top, value(r))
	}
	for i := range rows {
		if value(rows[i]) == top {
			rows[i].BestIn = append(rows[i].BestIn, feature)
		}
	}
}

var (
	syntheticIssuers    = []string{"HDFC Bank", "ICICI Bank", "SBI Card", "Axis Bank"}
	syntheticPerks      = []string{"Airport lounge access", "Fuel surcharge waiver", "Movie ticket discounts", "Dining privileges"}
	syntheticCategories = []string{"travel", "dining", "shopping", "entertainment", "groceries"}
)

// Synthetic builds deterministic placeholder cards for ids that could not be resolved.
func Synthetic(ids []int) []domain.CardRecord {
	cards := make([]domain.CardRecord, len(ids))
	for i, id := range ids {
		rewardType, suffix := domain.RewardPoints, "X"
		if i%2 == 0 {
			rewardType, suffix = domain.RewardCashback, "%"
		}
		rate := decimal.NewFromFloat(1.5).Add(decimal.NewFromFloat(0.25).Mul(decimal.NewFromInt(int64(i))))

		cards[i] = domain.CardRecord{
			ID:             id,
			Name:           fmt.Sprintf("Credit Card %d", id),
			Issuer:         syntheticIssuers[i%len(syntheticIssuers)],
			JoiningFee:     1000,
			AnnualFee:      int64(500 + i*250),
			RewardType:     rewardType,
			RewardRate:     rate.StringFixed(1) + suffix,
			MinIncome:      int64(500000 + i*100000),
			MinCreditScore: 700 + i*20,
			SpecialPerks:   append(domain.TagList{}, syntheticPerks[:2+i%3]...),
			Categories:     append(domain.TagList{}, syntheticCategories[:2+i%4]...),
		}
	}
	return cards
}

type Catalog interface {
	ByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error)
}

type Engine struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewEngine(c Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{catalog: c, logger: logger}
}

// Compare resolves ids against the catalog when live. Unresolvable ids, a
// failing store, or mock mode all produce synthetic rows instead.
func (e *Engine) Compare(ctx context.Context, ids []int, live bool) ([]domain.ComparisonRow, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: cardIds must not be empty", domain.ErrInvalidInput)
	}
	return Rows(e.Cards(ctx, ids, live)), nil
}

// Cards returns the catalog cards for ids, or synthetic ones.
func (e *Engine) Cards(ctx context.Context, ids []int, live bool) []domain.CardRecord {
	if !live {
		return Synthetic(ids)
	}
	cards, err := e.catalog.ByIDs(ctx, ids)
	if err != nil {
		e.logger.Warn("comparison lookup failed, using synthetic cards", "ids", ids, "error", err)
		return Synthetic(ids)
	}
	if len(cards) == 0 {
		e.logger.Info("no stored cards for comparison, using synthetic cards", "ids", ids)
		return Synthetic(ids)
	}
	return cards
}
