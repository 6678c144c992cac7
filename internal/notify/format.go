package notify

import (
	"card-advisor/internal/domain"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxListed is how many cards a recommendation message shows.
const MaxListed = 3

var ErrNothingToSend = errors.New("no card recommendations to send")

// Summary is the part of a card a message needs. It decodes from both a
// scored card and a comparison row.
type Summary struct {
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	AnnualFee     int64  `json:"annual_fee"`
	RewardRate    string `json:"reward_rate"`
	YearlyRewards int64  `json:"yearly_rewards"`
}

func SummaryOf(c domain.CardRecord) Summary {
	return Summary{Name: c.Name, Issuer: c.Issuer, AnnualFee: c.AnnualFee, RewardRate: c.RewardRate}
}

func SummariesOf(cards []domain.ScoredCard) []Summary {
	out := make([]Summary, len(cards))
	for i, c := range cards {
		out[i] = SummaryOf(c.CardRecord)
		out[i].YearlyRewards = c.YearlyRewards
	}
	return out
}

func FormatRecommendations(cards []Summary) (string, error) {
	if len(cards) == 0 {
		return "", ErrNothingToSend
	}

	var b strings.Builder
	b.WriteString("Your Top Credit Card Recommendations:\n\n")
	for i, c := range cards {
		if i == MaxListed {
			break
		}
		value := "N/A"
		if c.YearlyRewards != 0 {
			value = strconv.FormatInt(c.YearlyRewards, 10)
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Name, c.Issuer)
		fmt.Fprintf(&b, "   • Annual Fee: ₹%d\n", c.AnnualFee)
		fmt.Fprintf(&b, "   • Rewards: %s\n", c.RewardRate)
		fmt.Fprintf(&b, "   • Est. Annual Value: ₹%s\n\n", value)
	}
	b.WriteString("Visit our website to apply or compare more options!")
	return b.String(), nil
}
