package ranker

import (
	"card-advisor/internal/domain"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	rerankSystem = "You are a credit card recommendation expert who carefully analyzes user profiles to provide personalized card rankings."
	enrichSystem = "You are a credit card recommendation expert who provides detailed, personalized analysis."
)

var jsonArray = regexp.MustCompile(`\[[\s\S]*\]`)

func profileSummary(p domain.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly Income: ₹%s\n", strconv.FormatFloat(p.MonthlyIncome, 'f', -1, 64))
	fmt.Fprintf(&b, "Spending Categories: %s\n", strings.Join(p.SpendingHabits, ", "))
	fmt.Fprintf(&b, "Preferred Benefits: %s\n", p.PreferredBenefits)
	fmt.Fprintf(&b, "Credit Score: %d\n", p.CreditScore)
	return b.String()
}

func cardSummaries(cards []domain.ScoredCard, withReasons bool) string {
	blocks := make([]string, 0, len(cards))
	for _, c := range cards {
		var b strings.Builder
		fmt.Fprintf(&b, "Card Name: %s\n", c.Name)
		fmt.Fprintf(&b, "Issuer: %s\n", c.Issuer)
		fmt.Fprintf(&b, "Annual Fee: ₹%d\n", c.AnnualFee)
		fmt.Fprintf(&b, "Reward Type: %s\n", c.RewardType)
		fmt.Fprintf(&b, "Reward Rate: %s\n", c.RewardRate)
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(c.Categories, ", "))
		fmt.Fprintf(&b, "Special Perks: %s\n", strings.Join(c.SpecialPerks, ", "))
		if withReasons {
			fmt.Fprintf(&b, "Reasons: %s\n", strings.Join(c.Reasons, ", "))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}

func rerankPrompt(p domain.UserProfile, cards []domain.ScoredCard) string {
	return `Based on the following user profile:
` + profileSummary(p) + `
And these credit card options:
` + cardSummaries(cards, true) + `
Analyze the suitability of each card for this specific user. Rank the cards in order of relevance, where 1 is the most suitable.
For each card, assign a relevance score from 1-100 based on how well it matches the user's profile, spending habits, and preferences.

Format the output as a JSON array of objects, where each object contains the card name and relevance score. Example:
[
  {"name": "Card Name 1", "score": 95},
  {"name": "Card Name 2", "score": 82},
  {"name": "Card Name 3", "score": 70}
]
`
}

func enrichPrompt(p domain.UserProfile, cards []domain.ScoredCard) string {
	return `Based on the following user profile:
` + profileSummary(p) + `
And these credit card options:
` + cardSummaries(cards, false) + `
For each card, generate 3-5 highly personalized reasons why this specific card would be good for this specific user.
Focus on matching the card benefits to the user's spending habits, income level, and preferences.
Be specific about how each card's features address the user's particular needs.

Format the output as a JSON array of arrays, where each inner array contains the reasons for one card in the same order as provided. Example:
[
  ["Perfect match for dining and travel spending patterns", "Premium airport lounge access suits your travel needs"],
  ["5% cashback on groceries optimizes your regular spending", "Zero annual fee great for your budget preferences"]
]
`
}

func extractArray(content string) ([]json.RawMessage, error) {
	match := jsonArray.FindString(content)
	if match == "" {
		return nil, ErrUnparseable
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return items, nil
}

// parseScores keeps every entry that decodes as {name, score}.
func parseScores(content string) ([]domain.RankScore, error) {
	items, err := extractArray(content)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RankScore, 0, len(items))
	for _, raw := range items {
		var s domain.RankScore
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// parseReasons decodes an array of string arrays. Entries that are not string
// arrays come back nil.
func parseReasons(content string) ([][]string, error) {
	items, err := extractArray(content)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(items))
	for i, raw := range items {
		var reasons []string
		if err := json.Unmarshal(raw, &reasons); err != nil || len(reasons) == 0 {
			continue
		}
		out[i] = reasons
	}
	return out, nil
}
