package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/voicetrade/internal/domain/models"
)

// ErrCorruptRecord is returned when a persisted record cannot be decoded.
// Callers treat it as an empty trade set.
var ErrCorruptRecord = errors.New("corrupt trade record")

// EncodeTrades serializes trades as a JSON array.
// A nil slice is written as "[]" so a stored record is always an array.
func EncodeTrades(trades []models.Trade) ([]byte, error) {
	if trades == nil {
		trades = []models.Trade{}
	}
	b, err := json.Marshal(trades)
	if err != nil {
		return nil, fmt.Errorf("encode trades: %w", err)
	}
	return b, nil
}

// DecodeTrades parses a JSON array of trades.
// Empty input decodes to an empty set; anything that is not an array of
// trade objects yields ErrCorruptRecord.
func DecodeTrades(b []byte) ([]models.Trade, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var trades []models.Trade
	if err := json.Unmarshal(b, &trades); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return trades, nil
}
