// Package recommend composes eligibility, scoring and the optional external
// ranker into one recommendation call.
package recommend

import (
	"card-advisor/internal/catalog"
	"card-advisor/internal/domain"
	"card-advisor/internal/eligibility"
	"card-advisor/internal/ranker"
	"card-advisor/internal/scoring"
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"
)

// GenericReasons replace enrichment output that could not be used.
var GenericReasons = []string{
	"Great match for your spending habits",
	"Excellent rewards structure",
	"Good value for annual fee",
}

// DefaultAIScore is given to cards the ranker did not mention.
const DefaultAIScore = 50

// PathOptions tune one of the two recommendation paths.
type PathOptions struct {
	Projection   scoring.Projection
	TopN         int
	PositiveOnly bool
}

type Options struct {
	// Live is used when the catalog store answered.
	Live PathOptions
	// Fallback is used in mock mode and whenever the store failed.
	Fallback      PathOptions
	Enrich        bool
	Rerank        bool
	RerankTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Live:          PathOptions{Projection: scoring.Conservative, TopN: 5, PositiveOnly: true},
		Fallback:      PathOptions{Projection: scoring.Simple, TopN: 3, PositiveOnly: false},
		RerankTimeout: 10 * time.Second,
	}
}

// HealthChecker reports whether the catalog store is believed reachable.
type HealthChecker interface {
	Available() bool
}

type Eligibility interface {
	Eligible(ctx context.Context, p domain.UserProfile) eligibility.Result
	EligibleStatic(p domain.UserProfile) eligibility.Result
}

type Orchestrator struct {
	eligibility Eligibility
	ranker      ranker.Ranker
	health      HealthChecker
	opts        Options
	log         *slog.Logger
}

func New(e Eligibility, r ranker.Ranker, h HealthChecker, opts Options, log *slog.Logger) *Orchestrator {
	if r == nil {
		r = ranker.Disabled{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{eligibility: e, ranker: r, health: h, opts: opts, log: log}
}

// Recommend returns the top cards for p. Only input validation errors are returned.
func (o *Orchestrator) Recommend(ctx context.Context, p domain.UserProfile) ([]domain.ScoredCard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var res eligibility.Result
	if o.health != nil && !o.health.Available() {
		res = o.eligibility.EligibleStatic(p)
	} else {
		res = o.eligibility.Eligible(ctx, p)
	}

	path := o.opts.Live
	if res.Source == catalog.SourceStatic {
		path = o.opts.Fallback
	}

	scored := scoring.NewEngine(path.Projection).ScoreAll(res.Cards, p)
	top := scoring.Rank(scored, path.PositiveOnly, path.TopN)

	o.log.Info("recommendations computed",
		"source", res.Source,
		"stage", res.Stage,
		"projection", path.Projection.Name,
		"candidates", len(res.Cards),
		"returned", len(top),
	)

	if len(top) == 0 {
		return top, nil
	}
	if o.opts.Enrich {
		top = o.enrich(ctx, p, top)
	}
	if o.opts.Rerank {
		top = o.rerank(ctx, p, top)
	}
	return top, nil
}

func (o *Orchestrator) enrich(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) []domain.ScoredCard {
	reasons, err := o.ranker.Enrich(ctx, p, cards)
	switch {
	case errors.Is(err, ranker.ErrUnparseable):
		o.log.Warn("enrichment reply unusable, using generic reasons", "error", err)
		reasons = nil
	case err != nil:
		if !errors.Is(err, ranker.ErrDisabled) {
			o.log.Warn("enrichment failed, keeping reasons", "error", err)
		}
		return cards
	}
	return ApplyReasons(cards, reasons)
}

func (o *Orchestrator) rerank(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) []domain.ScoredCard {
	if o.opts.RerankTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RerankTimeout)
		defer cancel()
	}

	scores, err := o.ranker.Rerank(ctx, p, cards)
	if err != nil {
		if !errors.Is(err, ranker.ErrDisabled) {
			o.log.Warn("re-rank failed, keeping order", "error", err)
		}
		return cards
	}
	return ApplyScores(cards, scores)
}

// ApplyReasons replaces reasons by position; missing entries get GenericReasons.
func ApplyReasons(cards []domain.ScoredCard, reasons [][]string) []domain.ScoredCard {
	out := make([]domain.ScoredCard, len(cards))
	for i, c := range cards {
		if i < len(reasons) && len(reasons[i]) > 0 {
			c.Reasons = append([]string{}, reasons[i]...)
		} else {
			c.Reasons = append([]string{}, GenericReasons...)
		}
		out[i] = c
	}
	return out
}

// ApplyScores attaches an AI score by card name and sorts by it, keeping the
// prior order on ties. Unmatched or zero scores become DefaultAIScore.
func ApplyScores(cards []domain.ScoredCard, scores []domain.RankScore) []domain.ScoredCard {
	byName := make(map[string]float64, len(scores))
	for _, s := range scores {
		if _, ok := byName[s.Name]; !ok {
			byName[s.Name] = s.Score
		}
	}

	out := make([]domain.ScoredCard, len(cards))
	for i, c := range cards {
		score, ok := byName[c.Name]
		if !ok || score == 0 {
			score = DefaultAIScore
		}
		c.AIScore = &score
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].AIScore > *out[j].AIScore })
	return out
}
