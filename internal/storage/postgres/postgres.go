// internal/storage/postgres/postgres.go
package postgres

import (
	"card-advisor/internal/domain"
	"card-advisor/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cardColumns = `card_id, name, issuer, joining_fee, annual_fee, reward_type, reward_rate,
	min_income, min_credit_score, special_perks, categories, apply_link, card_image`

type Storage struct {
	db *pgxpool.Pool
}

var _ storage.CatalogStore = (*Storage)(nil)

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// Connect opens a pool without waiting for the server. An unreachable database
// shows up later through Ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}

// sanitizeString очищает строку от невидимых и проблемных символов
func sanitizeString(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			result = append(result, ' ')
		case unicode.IsPrint(r):
			result = append(result, r)
		}
	}
	return strings.Join(strings.Fields(string(result)), " ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.CardRecord, error) {
	var (
		c                  domain.CardRecord
		rewardType         string
		perks, categories  string
		applyLink, imgPath *string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Issuer, &c.JoiningFee, &c.AnnualFee, &rewardType, &c.RewardRate,
		&c.MinIncome, &c.MinCreditScore, &perks, &categories, &applyLink, &imgPath)
	if err != nil {
		return c, err
	}

	c.Name = sanitizeString(c.Name)
	c.Issuer = sanitizeString(c.Issuer)
	c.RewardRate = sanitizeString(c.RewardRate)
	c.RewardType = domain.RewardType(rewardType)
	if applyLink != nil {
		c.ApplyLink = *applyLink
	}
	if imgPath != nil {
		c.CardImage = *imgPath
	}

	if c.SpecialPerks, err = domain.DecodeTags(perks); err != nil {
		slog.Warn("card perks are not a list", "card_id", c.ID, "field", "special_perks", "error", err)
	}
	if c.Categories, err = domain.DecodeCategories(categories); err != nil {
		slog.Warn("card categories are not a list", "card_id", c.ID, "field", "categories", "error", err)
	}
	return c, nil
}

func collectCards(rows pgx.Rows) ([]domain.CardRecord, error) {
	defer rows.Close()

	cards := make([]domain.CardRecord, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (s *Storage) GetAll(ctx context.Context) ([]domain.CardRecord, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cardColumns+` FROM credit_cards ORDER BY card_id`)
	if err != nil {
		return nil, fmt.Errorf("query all cards: %w", err)
	}
	return collectCards(rows)
}

func (s *Storage) GetByID(ctx context.Context, id int) (*domain.CardRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE card_id = $1`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find card %d: %w", id, err)
	}
	return &card, nil
}

func (s *Storage) GetByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error) {
	if len(ids) == 0 {
		return []domain.CardRecord{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+cardColumns+`
		FROM credit_cards
		WHERE card_id = ANY($1)
		ORDER BY array_position($1, card_id)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query cards by ids: %w", err)
	}
	return collectCards(rows)
}

// QueryEligible mirrors the catalog's case-insensitive LIKE pre-filter.
func (s *Storage) QueryEligible(ctx context.Context, q storage.EligibleQuery) ([]domain.CardRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+cardColumns+`
		FROM credit_cards
		WHERE min_income <= $1::float8
		AND min_credit_score <= $2
		AND (categories ILIKE $3 OR LOWER(reward_type) = LOWER($4))
		ORDER BY card_id
	`, q.Income, q.CreditScore, q.CategoryPattern, q.BenefitLabel)
	if err != nil {
		return nil, fmt.Errorf("query eligible cards: %w", err)
	}
	return collectCards(rows)
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}

const (
	clearCatalogSQL = `TRUNCATE credit_cards RESTART IDENTITY`

	// A NULL id falls back to the serial sequence.
	insertCardSQL = `INSERT INTO credit_cards (` + cardColumns + `)
		VALUES (COALESCE($1, nextval(pg_get_serial_sequence('credit_cards', 'card_id'))),
			$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	// Explicit ids bypass the sequence, so move it past the highest one.
	syncSequenceSQL = `SELECT setval(pg_get_serial_sequence('credit_cards', 'card_id'),
		COALESCE(MAX(card_id), 0) + 1, false) FROM credit_cards`
)

func insertCardArgs(c domain.CardRecord) []any {
	var id *int32
	if c.ID > 0 {
		v := int32(c.ID)
		id = &v
	}
	return []any{id, c.Name, c.Issuer, c.JoiningFee, c.AnnualFee, string(c.RewardType), c.RewardRate,
		c.MinIncome, c.MinCreditScore, c.SpecialPerks.Encode(), c.Categories.Encode(),
		nullIfEmpty(c.ApplyLink), nullIfEmpty(c.CardImage)}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ReplaceAll swaps the whole catalog for cards in one transaction. Positive
// ids are kept; the rest are numbered by the sequence in input order.
func (s *Storage) ReplaceAll(ctx context.Context, cards []domain.CardRecord) error {
	for _, c := range cards {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("card name cannot be empty")
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// RESTART IDENTITY so cards without an id get 1..n on every run.
	if _, err := tx.Exec(ctx, clearCatalogSQL); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	for _, c := range cards {
		if _, err := tx.Exec(ctx, insertCardSQL, insertCardArgs(c)...); err != nil {
			return fmt.Errorf("insert card %q: %w", c.Name, err)
		}
	}

	if _, err := tx.Exec(ctx, syncSequenceSQL); err != nil {
		return fmt.Errorf("sync card id sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	slog.Debug("ReplaceAll completed", "cards", len(cards))
	return nil
}
