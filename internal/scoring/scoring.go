// Package scoring turns eligible cards into ranked, explained suggestions.
package scoring

import (
	"card-advisor/internal/domain"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	pointsIncome         = 20
	pointsIncomeHeadroom = 10
	pointsPerCategory    = 15
	pointsBenefit        = 25

	headroomFactor  = 0.5
	lowFeeIncomeCut = 0.01
)

// Projection is the assumed card spend used for the yearly reward estimate.
type Projection struct {
	Name       string
	SpendRatio float64
	// MonthlyCap limits the assumed monthly spend; zero means no cap.
	MonthlyCap float64
}

var (
	Conservative = Projection{Name: "conservative", SpendRatio: 0.4, MonthlyCap: 50000}
	Simple       = Projection{Name: "simple", SpendRatio: 0.3}
)

// ProjectionByName resolves a configured preset name.
func ProjectionByName(name string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Conservative.Name:
		return Conservative, nil
	case Simple.Name:
		return Simple, nil
	}
	return Projection{}, fmt.Errorf("unknown spend projection %q", name)
}

func (p Projection) MonthlySpend(income float64) float64 {
	spend := income * p.SpendRatio
	if p.MonthlyCap > 0 && spend > p.MonthlyCap {
		spend = p.MonthlyCap
	}
	return spend
}

// YearlyRewards is floor(monthlySpend * 12 * rate) for the reward type.
func YearlyRewards(monthlySpend float64, r domain.RewardType) int64 {
	return decimal.NewFromFloat(monthlySpend).
		Mul(decimal.NewFromInt(12)).
		Mul(decimal.NewFromFloat(r.ValueRate())).
		Floor().
		IntPart()
}

type Engine struct {
	projection Projection
}

func NewEngine(p Projection) *Engine {
	return &Engine{projection: p}
}

func (e *Engine) Projection() Projection {
	return e.projection
}

// Score returns a fresh ScoredCard; the input card is not modified.
func (e *Engine) Score(card domain.CardRecord, p domain.UserProfile) domain.ScoredCard {
	score := 0
	if float64(card.MinIncome) <= p.MonthlyIncome {
		score += pointsIncome
		if float64(card.MinIncome) <= p.MonthlyIncome*headroomFactor {
			score += pointsIncomeHeadroom
		}
	}

	matched := matchingCategories(card, p)
	score += len(matched) * pointsPerCategory

	if p.PreferredBenefits.Matches(card.RewardType) {
		score += pointsBenefit
	}

	out := domain.ScoredCard{
		CardRecord:    card,
		Score:         score,
		YearlyRewards: YearlyRewards(e.projection.MonthlySpend(p.MonthlyIncome), card.RewardType),
		Reasons:       reasons(card, p, matched),
	}
	out.SpecialPerks = append(domain.TagList{}, card.SpecialPerks...)
	out.Categories = append(domain.TagList{}, card.Categories...)
	return out
}

// ScoreAll scores cards in input order.
func (e *Engine) ScoreAll(cards []domain.CardRecord, p domain.UserProfile) []domain.ScoredCard {
	out := make([]domain.ScoredCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, e.Score(c, p))
	}
	return out
}

func matchingCategories(card domain.CardRecord, p domain.UserProfile) []string {
	var matched []string
	for _, cat := range card.Categories {
		if p.HasHabit(cat) {
			matched = append(matched, cat)
		}
	}
	return matched
}

func reasons(card domain.CardRecord, p domain.UserProfile, matched []string) []string {
	out := make([]string, 0, 4)

	switch {
	case p.PreferredBenefits == domain.BenefitCashback && card.RewardType == domain.RewardCashback:
		out = append(out, "High cashback rewards match your preference")
	case p.PreferredBenefits == domain.BenefitTravelPoints && card.RewardType == domain.RewardPoints:
		out = append(out, "Excellent travel rewards program")
	}

	if len(matched) > 0 {
		out = append(out, fmt.Sprintf("Great rewards on %s spending", strings.Join(matched, " and ")))
	}

	switch {
	case card.AnnualFee == 0:
		out = append(out, "Zero annual fee")
	case float64(card.AnnualFee) < p.MonthlyIncome*lowFeeIncomeCut:
		out = append(out, "Low annual fee relative to your income")
	}

	if len(card.SpecialPerks) > 0 {
		out = append(out, "Premium perks: "+card.SpecialPerks[0])
	}
	return out
}

// Rank optionally drops non-positive scores, sorts descending keeping the
// prior order on ties, and cuts to topN (topN <= 0 keeps everything).
func Rank(cards []domain.ScoredCard, positiveOnly bool, topN int) []domain.ScoredCard {
	out := make([]domain.ScoredCard, 0, len(cards))
	for _, c := range cards {
		if positiveOnly && c.Score <= 0 {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
