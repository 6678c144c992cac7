package postgres

import (
	"errors"
	"strings"
	"testing"

	"card-advisor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = r.values[i].(int)
		case *int64:
			*p = r.values[i].(int64)
		case *string:
			*p = r.values[i].(string)
		case **string:
			if r.values[i] != nil {
				s := r.values[i].(string)
				*p = &s
			}
		}
	}
	return nil
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "HDFC Bank", sanitizeString("  HDFC Bank\t"))
	assert.Equal(t, "4-10 miles per ₹100", sanitizeString("4-10 miles​ per ₹100"))
	assert.Equal(t, "", sanitizeString("\x00\x01"))
}

func TestScanCardDecodesTags(t *testing.T) {
	row := fakeRow{values: []any{
		3, "ICICI Amazon Pay", "ICICI Bank", int64(0), int64(500), "Cashback", "5% on Amazon",
		int64(300000), 700, `["Amazon Prime benefits"]`, `"[\"online\",\"fuel\"]"`, "https://example.com", nil,
	}}

	card, err := scanCard(row)
	require.NoError(t, err)
	assert.Equal(t, 3, card.ID)
	assert.Equal(t, domain.RewardCashback, card.RewardType)
	assert.Equal(t, domain.TagList{"Amazon Prime benefits"}, card.SpecialPerks)
	assert.Equal(t, domain.TagList{"online", "fuel"}, card.Categories)
	assert.Equal(t, "https://example.com", card.ApplyLink)
	assert.Empty(t, card.CardImage)
}

func TestScanCardKeepsCardWhenTagsAreBroken(t *testing.T) {
	row := fakeRow{values: []any{
		9, "Broken", "Bank", int64(0), int64(0), "Points", "1%",
		int64(0), 600, `not json`, ``, nil, nil,
	}}

	card, err := scanCard(row)
	require.NoError(t, err)
	assert.Equal(t, 9, card.ID)
	assert.Empty(t, card.SpecialPerks)
	assert.Empty(t, card.Categories)
}

func TestScanCardPropagatesScanError(t *testing.T) {
	_, err := scanCard(fakeRow{err: errors.New("conn reset")})
	require.Error(t, err)
}

func TestReplaceAllRestartsIdentity(t *testing.T) {
	assert.Contains(t, clearCatalogSQL, "RESTART IDENTITY")
	assert.Contains(t, insertCardSQL, "card_id")
	assert.Contains(t, insertCardSQL, "COALESCE($1, nextval(")
	assert.Contains(t, syncSequenceSQL, "setval(pg_get_serial_sequence('credit_cards', 'card_id')")
}

func TestInsertCardArgs(t *testing.T) {
	card := domain.CardRecord{
		ID: 7, Name: "SBI Card PRIME", Issuer: "SBI Card", AnnualFee: 2999,
		RewardType: domain.RewardPoints, RewardRate: "10X", MinCreditScore: 750,
		Categories: domain.TagList{"dining"},
	}

	args := insertCardArgs(card)
	require.Len(t, args, strings.Count(insertCardSQL, "$"))
	id, ok := args[0].(*int32)
	require.True(t, ok)
	require.NotNil(t, id)
	assert.Equal(t, int32(7), *id)
	assert.Equal(t, `["dining"]`, args[10])
	assert.Nil(t, args[11])

	card.ID = 0
	assert.Nil(t, insertCardArgs(card)[0])
}
