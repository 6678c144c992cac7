// internal/domain/models.go
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// MaxCreditScore is the upper bound accepted for a card's credit-score threshold.
const MaxCreditScore = 900

type RewardType string

const (
	RewardCashback RewardType = "Cashback"
	RewardPoints   RewardType = "Points"
)

// ValueRate is the share of spend a reward type is worth when projecting yearly rewards.
func (r RewardType) ValueRate() float64 {
	if r == RewardCashback {
		return 0.02
	}
	return 0.015
}

type Benefit string

const (
	BenefitCashback     Benefit = "cashback"
	BenefitTravelPoints Benefit = "travel_points"
	BenefitRewards      Benefit = "rewards"
	BenefitLounge       Benefit = "lounge_access"
	BenefitInsurance    Benefit = "insurance"
	BenefitZeroFees     Benefit = "zero_fees"
)

// Benefits lists the preference tags the intake dialog offers.
var Benefits = []Benefit{
	BenefitCashback,
	BenefitTravelPoints,
	BenefitRewards,
	BenefitLounge,
	BenefitInsurance,
	BenefitZeroFees,
}

// ParseBenefit normalizes free text such as "Travel Points" to travel_points.
func ParseBenefit(text string) Benefit {
	folded := cases.Fold().String(strings.TrimSpace(text))
	return Benefit(strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_"))
}

// Known reports whether b is one of Benefits.
func (b Benefit) Known() bool {
	for _, k := range Benefits {
		if b == k {
			return true
		}
	}
	return false
}

// Label is the human form, "travel points" for travel_points.
func (b Benefit) Label() string {
	return strings.ReplaceAll(string(b), "_", " ")
}

// Matches reports whether the preference is served by the card's reward type.
func (b Benefit) Matches(r RewardType) bool {
	return (b == BenefitCashback && r == RewardCashback) ||
		(b == BenefitTravelPoints && r == RewardPoints)
}

// CardRecord: один продукт каталога
type CardRecord struct {
	ID             int        `json:"card_id"`
	Name           string     `json:"name"`
	Issuer         string     `json:"issuer"`
	JoiningFee     int64      `json:"joining_fee"`
	AnnualFee      int64      `json:"annual_fee"`
	RewardType     RewardType `json:"reward_type"`
	RewardRate     string     `json:"reward_rate"`
	MinIncome      int64      `json:"min_income"`
	MinCreditScore int        `json:"min_credit_score"`
	SpecialPerks   TagList    `json:"special_perks"`
	Categories     TagList    `json:"categories"`
	ApplyLink      string     `json:"apply_link,omitempty"`
	CardImage      string     `json:"card_image,omitempty"`
}

func (c CardRecord) Validate() error {
	if c.MinIncome < 0 {
		return fmt.Errorf("card %d: min_income must not be negative", c.ID)
	}
	if c.MinCreditScore < 0 || c.MinCreditScore > MaxCreditScore {
		return fmt.Errorf("card %d: min_credit_score must be between 0 and %d", c.ID, MaxCreditScore)
	}
	if c.JoiningFee < 0 || c.AnnualFee < 0 {
		return fmt.Errorf("card %d: fees must not be negative", c.ID)
	}
	if c.RewardType != RewardCashback && c.RewardType != RewardPoints {
		return fmt.Errorf("card %d: unknown reward_type %q", c.ID, c.RewardType)
	}
	return nil
}

// UserProfile is the completed intake answer set.
type UserProfile struct {
	MonthlyIncome     float64  `json:"monthlyIncome"`
	CreditScore       int      `json:"creditScore"`
	SpendingHabits    []string `json:"spendingHabits"`
	PreferredBenefits Benefit  `json:"preferredBenefits,omitempty"`
}

func (p UserProfile) Validate() error {
	if p.MonthlyIncome <= 0 {
		return fmt.Errorf("%w: monthlyIncome must be a positive number", ErrInvalidInput)
	}
	if p.CreditScore <= 0 {
		return fmt.Errorf("%w: creditScore must be a positive integer", ErrInvalidInput)
	}
	return nil
}

// HasHabit reports whether the category is one of the profile's spending habits.
func (p UserProfile) HasHabit(category string) bool {
	for _, h := range p.SpendingHabits {
		if h == category {
			return true
		}
	}
	return false
}

type ScoredCard struct {
	CardRecord
	Score         int      `json:"score"`
	YearlyRewards int64    `json:"yearly_rewards"`
	Reasons       []string `json:"reasons"`
	AIScore       *float64 `json:"ai_score,omitempty"`
}

type SubScores struct {
	RewardValue  int `json:"reward_value"`
	AnnualCost   int `json:"annual_cost"`
	PerksValue   int `json:"perks_value"`
	OverallScore int `json:"overall_score"`
}

type ComparisonRow struct {
	CardRecord
	EstimatedYearlyBenefit int64     `json:"estimated_yearly_benefit"`
	CostBenefitRatio       string    `json:"cost_benefit_ratio"`
	OverallScore           int       `json:"overall_score"`
	SubScores              SubScores `json:"sub_scores"`
	TopPick                bool      `json:"top_pick"`
	BestIn                 []string  `json:"best_in,omitempty"`
}

// RankScore is one suitability judgement returned by the external ranking service.
type RankScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
