// Package sqlite is a single-file catalog store for local runs and tests.
package sqlite

import (
	"card-advisor/internal/domain"
	"card-advisor/internal/storage"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

const cardColumns = `card_id, name, issuer, joining_fee, annual_fee, reward_type, reward_rate,
	min_income, min_credit_score, special_perks, categories, apply_link, card_image`

type Storage struct {
	db *sql.DB
}

var _ storage.CatalogStore = (*Storage)(nil)

// Open opens (or creates) the database at path and fills an empty catalog with seed.
func Open(ctx context.Context, path string, seed []domain.CardRecord) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedIfEmpty(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	slog.Info("sqlite catalog opened", "path", path)
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS credit_cards (
		card_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL,
		issuer           TEXT NOT NULL,
		joining_fee      INTEGER NOT NULL DEFAULT 0 CHECK (joining_fee >= 0),
		annual_fee       INTEGER NOT NULL DEFAULT 0 CHECK (annual_fee >= 0),
		reward_type      TEXT NOT NULL,
		reward_rate      TEXT NOT NULL DEFAULT '',
		min_income       INTEGER NOT NULL DEFAULT 0 CHECK (min_income >= 0),
		min_credit_score INTEGER NOT NULL DEFAULT 0 CHECK (min_credit_score BETWEEN 0 AND 900),
		special_perks    TEXT NOT NULL DEFAULT '[]',
		categories       TEXT NOT NULL DEFAULT '[]',
		apply_link       TEXT,
		card_image       TEXT
	)`)
	return err
}

func (s *Storage) seedIfEmpty(ctx context.Context, seed []domain.CardRecord) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credit_cards").Scan(&n); err != nil {
		return fmt.Errorf("count cards: %w", err)
	}
	if n > 0 || len(seed) == 0 {
		return nil
	}
	return s.Insert(ctx, seed...)
}

// Insert adds cards in one transaction. IDs on the input are ignored unless positive.
func (s *Storage) Insert(ctx context.Context, cards ...domain.CardRecord) error {
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range cards {
		var id any
		if c.ID > 0 {
			id = c.ID
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO credit_cards (`+cardColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.Name, c.Issuer, c.JoiningFee, c.AnnualFee, string(c.RewardType), c.RewardRate,
			c.MinIncome, c.MinCreditScore, c.SpecialPerks.Encode(), c.Categories.Encode(),
			nullIfEmpty(c.ApplyLink), nullIfEmpty(c.CardImage))
		if err != nil {
			return fmt.Errorf("insert card %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.CardRecord, error) {
	var (
		c                  domain.CardRecord
		rewardType         string
		perks, categories  string
		applyLink, imgPath sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Issuer, &c.JoiningFee, &c.AnnualFee, &rewardType, &c.RewardRate,
		&c.MinIncome, &c.MinCreditScore, &perks, &categories, &applyLink, &imgPath)
	if err != nil {
		return c, err
	}
	c.RewardType = domain.RewardType(rewardType)
	c.ApplyLink = applyLink.String
	c.CardImage = imgPath.String

	if c.SpecialPerks, err = domain.DecodeTags(perks); err != nil {
		slog.Warn("card perks are not a list", "card_id", c.ID, "field", "special_perks", "error", err)
	}
	if c.Categories, err = domain.DecodeCategories(categories); err != nil {
		slog.Warn("card categories are not a list", "card_id", c.ID, "field", "categories", "error", err)
	}
	return c, nil
}

func (s *Storage) queryCards(ctx context.Context, query string, args ...any) ([]domain.CardRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]domain.CardRecord, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *Storage) GetAll(ctx context.Context) ([]domain.CardRecord, error) {
	cards, err := s.queryCards(ctx, `SELECT `+cardColumns+` FROM credit_cards ORDER BY card_id`)
	if err != nil {
		return nil, fmt.Errorf("query all cards: %w", err)
	}
	return cards, nil
}

func (s *Storage) GetByID(ctx context.Context, id int) (*domain.CardRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE card_id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find card %d: %w", id, err)
	}
	return &card, nil
}

// GetByIDs returns the stored cards among ids, in the order the ids were given.
func (s *Storage) GetByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error) {
	if len(ids) == 0 {
		return []domain.CardRecord{}, nil
	}

	args := make([]any, len(ids))
	pos := make(map[int]int, len(ids))
	for i, id := range ids {
		args[i] = id
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	cards, err := s.queryCards(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE card_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards by ids: %w", err)
	}
	sort.SliceStable(cards, func(i, j int) bool { return pos[cards[i].ID] < pos[cards[j].ID] })
	return cards, nil
}

// QueryEligible uses LIKE, which sqlite matches case-insensitively for ASCII.
func (s *Storage) QueryEligible(ctx context.Context, q storage.EligibleQuery) ([]domain.CardRecord, error) {
	cards, err := s.queryCards(ctx, `
		SELECT `+cardColumns+`
		FROM credit_cards
		WHERE min_income <= ?
		AND min_credit_score <= ?
		AND (categories LIKE ? OR lower(reward_type) = lower(?))
		ORDER BY card_id
	`, q.Income, q.CreditScore, q.CategoryPattern, q.BenefitLabel)
	if err != nil {
		return nil, fmt.Errorf("query eligible cards: %w", err)
	}
	return cards, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}
