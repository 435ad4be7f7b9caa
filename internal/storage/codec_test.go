package storage

import (
	"errors"
	"testing"

	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTrades_NilIsEmptyArray(t *testing.T) {
	b, err := EncodeTrades(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))
}

func TestDecodeTrades(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    int
		corrupt bool
	}{
		{name: "empty input", in: "", want: 0},
		{name: "empty array", in: "[]", want: 0},
		{name: "null", in: "null", want: 0},
		{name: "not json", in: "{oops", corrupt: true},
		{name: "object instead of array", in: `{"id":"VT1"}`, corrupt: true},
		{name: "wrong field type", in: `[{"id":"VT1","quantity":"many"}]`, corrupt: true},
		{
			// Records written by the browser front end store numbers, not strings.
			name: "numeric money fields",
			in:   `[{"id":"VT1000","type":"BUY","instrument":"EQUITY","symbol":"AAPL","quantity":100,"price":150.5,"total":15050,"counterparty":"GS","trader":"JS","status":"confirmed","voiceTrade":true,"timestamp":"2025-09-11T10:00:00Z"}]`,
			want: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := DecodeTrades([]byte(tc.in))
			if tc.corrupt {
				assert.True(t, errors.Is(err, ErrCorruptRecord), "err=%v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, out, tc.want)
		})
	}
}

func TestDecodeTrades_NumericFields(t *testing.T) {
	in := `[{"id":"VT1000","quantity":100,"price":150.5,"total":15050,"status":"pending","voiceTrade":true}]`
	out, err := DecodeTrades([]byte(in))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(100), out[0].Quantity)
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("150.5")))
	assert.True(t, out[0].Total.Equal(decimal.NewFromInt(15050)))
	assert.Equal(t, models.StatusPending, out[0].Status)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := t.Context()

	out, err := repo.LoadTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, repo.SaveTrades(ctx, []models.Trade{sampleTrade()}))
	raw, ok := repo.Raw()
	require.True(t, ok)
	assert.Contains(t, string(raw), `"id":"VT1000"`)

	out, err = repo.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "AAPL", out[0].Symbol)

	repo.SetRaw([]byte("garbage"))
	_, err = repo.LoadTrades(ctx)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	require.NoError(t, repo.DeleteTrades(ctx))
	_, ok = repo.Raw()
	assert.False(t, ok)
}
