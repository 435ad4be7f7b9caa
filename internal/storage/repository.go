package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/guttosm/voicetrade/internal/domain/models"
)

// DefaultKey is the record name the trade set is stored under.
const DefaultKey = "voiceTrades"

// Schema creates the local key/value table. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// TradesRepository defines the persistence contract for the trade set.
// The whole set is read and written as a single named record.
type TradesRepository interface {
	LoadTrades(ctx context.Context) ([]models.Trade, error)
	SaveTrades(ctx context.Context, trades []models.Trade) error
	DeleteTrades(ctx context.Context) error
}

type tradesRepository struct {
	db  *sql.DB
	key string
}

// NewTradesRepository returns a repository storing the trade set under key
// in the kv_store table of db. An empty key falls back to DefaultKey.
func NewTradesRepository(db *sql.DB, key string) TradesRepository {
	if key == "" {
		key = DefaultKey
	}
	return &tradesRepository{db: db, key: key}
}

// Migrate applies Schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// LoadTrades reads and decodes the stored record.
// A missing record yields an empty set and no error.
func (r *tradesRepository) LoadTrades(ctx context.Context) ([]models.Trade, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeTrades([]byte(value))
}

// SaveTrades replaces the stored record with the encoded trade set.
func (r *tradesRepository) SaveTrades(ctx context.Context, trades []models.Trade) error {
	b, err := EncodeTrades(trades)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value,
					  updated_at = CURRENT_TIMESTAMP
	`, r.key, string(b))
	return err
}

// DeleteTrades removes the stored record.
func (r *tradesRepository) DeleteTrades(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, r.key)
	return err
}
