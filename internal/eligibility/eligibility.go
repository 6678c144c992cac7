// Package eligibility decides which catalog cards a profile qualifies for.
package eligibility

import (
	"card-advisor/internal/catalog"
	"card-advisor/internal/domain"
	"card-advisor/internal/storage"
	"context"
	"log/slog"
	"strings"
)

// Stage says which rule produced a result.
type Stage string

const (
	StageStrict  Stage = "strict"
	StageRelaxed Stage = "relaxed"
	StagePrefix  Stage = "prefix"
)

// PrefixSize is how many catalog cards are returned when no rule matches.
const PrefixSize = 3

const (
	relaxedIncomeFactor = 1.2
	relaxedScoreMargin  = 50
)

// Qualifies is the strict threshold rule.
func Qualifies(card domain.CardRecord, p domain.UserProfile) bool {
	return float64(card.MinIncome) <= p.MonthlyIncome && card.MinCreditScore <= p.CreditScore
}

func qualifiesRelaxed(card domain.CardRecord, p domain.UserProfile) bool {
	return float64(card.MinIncome) <= p.MonthlyIncome*relaxedIncomeFactor ||
		card.MinCreditScore <= p.CreditScore+relaxedScoreMargin
}

// Filter applies the strict rule, then the relaxed rule, then the fixed prefix,
// stopping at the first stage that yields cards.
func Filter(p domain.UserProfile, cards []domain.CardRecord) ([]domain.CardRecord, Stage) {
	if out := keep(cards, p, Qualifies); len(out) > 0 {
		return out, StageStrict
	}
	return relax(p, cards)
}

func relax(p domain.UserProfile, cards []domain.CardRecord) ([]domain.CardRecord, Stage) {
	if out := keep(cards, p, qualifiesRelaxed); len(out) > 0 {
		return out, StageRelaxed
	}
	n := min(PrefixSize, len(cards))
	return append([]domain.CardRecord{}, cards[:n]...), StagePrefix
}

func keep(cards []domain.CardRecord, p domain.UserProfile, rule func(domain.CardRecord, domain.UserProfile) bool) []domain.CardRecord {
	var out []domain.CardRecord
	for _, c := range cards {
		if rule(c, p) {
			out = append(out, c)
		}
	}
	return out
}

// CategoryPattern joins habits into a LIKE pattern: ["travel","dining"] -> "%travel%dining%".
// No habits matches any category.
func CategoryPattern(habits []string) string {
	if len(habits) == 0 {
		return "%"
	}
	return "%" + strings.Join(habits, "%") + "%"
}

// Query builds the store pre-filter for a profile.
func Query(p domain.UserProfile) storage.EligibleQuery {
	return storage.EligibleQuery{
		Income:          p.MonthlyIncome,
		CreditScore:     p.CreditScore,
		CategoryPattern: CategoryPattern(p.SpendingHabits),
		BenefitLabel:    string(p.PreferredBenefits),
	}
}

type Result struct {
	Cards  []domain.CardRecord
	Stage  Stage
	Source catalog.Source
}

type Catalog interface {
	QueryEligible(ctx context.Context, q storage.EligibleQuery) ([]domain.CardRecord, error)
	All(ctx context.Context) ([]domain.CardRecord, catalog.Source)
}

type Filterer struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewFilterer(c Catalog, logger *slog.Logger) *Filterer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filterer{catalog: c, logger: logger}
}

// Eligible asks the store first. Zero rows relax over the whole catalog; a
// failing store relaxes over the static dataset. It never fails.
func (f *Filterer) Eligible(ctx context.Context, p domain.UserProfile) Result {
	cards, err := f.catalog.QueryEligible(ctx, Query(p))
	if err != nil {
		f.logger.Warn("eligible query failed, using static cards", "error", err)
		return f.EligibleStatic(p)
	}
	if len(cards) > 0 {
		return Result{Cards: cards, Stage: StageStrict, Source: catalog.SourceStore}
	}

	all, src := f.catalog.All(ctx)
	out, stage := relax(p, all)
	f.logger.Debug("no strict matches, relaxed criteria", "stage", stage, "source", src, "cards", len(out))
	return Result{Cards: out, Stage: stage, Source: src}
}

// EligibleStatic runs the full rule chain over the static dataset only.
func (f *Filterer) EligibleStatic(p domain.UserProfile) Result {
	out, stage := Filter(p, catalog.Static())
	return Result{Cards: out, Stage: stage, Source: catalog.SourceStatic}
}
