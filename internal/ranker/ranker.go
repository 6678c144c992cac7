// Package ranker asks an external text-generation service to re-order and
// explain recommendations.
package ranker

import (
	"card-advisor/internal/domain"
	"context"
	"errors"
)

var (
	// ErrDisabled is returned when no service is configured.
	ErrDisabled = errors.New("ranker disabled")
	// ErrUnparseable means the reply held no usable JSON array.
	ErrUnparseable = errors.New("ranker reply has no usable JSON array")
)

type Ranker interface {
	// Rerank returns a suitability score per card name.
	Rerank(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) ([]domain.RankScore, error)
	// Enrich returns reason lists aligned with cards by position. An entry may
	// be nil when the reply had nothing usable for that card.
	Enrich(ctx context.Context, p domain.UserProfile, cards []domain.ScoredCard) ([][]string, error)
}

type Disabled struct{}

func (Disabled) Rerank(context.Context, domain.UserProfile, []domain.ScoredCard) ([]domain.RankScore, error) {
	return nil, ErrDisabled
}

func (Disabled) Enrich(context.Context, domain.UserProfile, []domain.ScoredCard) ([][]string, error) {
	return nil, ErrDisabled
}
