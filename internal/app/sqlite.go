package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guttosm/voicetrade/config"
	"github.com/guttosm/voicetrade/internal/storage"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitSQLite opens the local SQLite database that backs the trade store.
//
// Parameters:
//   - ctx (context.Context): bounds the ping and the schema migration.
//   - cfg (config.Config): application configuration; cfg.Store.Path names the database file.
//
// Behavior:
//   - Opens a database handle with sql.Open and limits it to a single connection,
//     so ":memory:" databases are shared by every query.
//   - Pings the database to validate that the file can be opened.
//   - Creates the kv_store table when it does not exist yet.
//
// Returns:
//   - *sql.DB: an open database handle.
//   - error: if opening, pinging or migrating fails.
//
// Example usage:
//
//	db, err := app.InitSQLite(ctx, config.AppConfig)
//	if err != nil {
//	    log.Fatalf("failed to open store: %v", err)
//	}
//	defer db.Close()
func InitSQLite(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := sqlOpener("sqlite3", cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	return db, nil
}

// sqliteOpener is an indirection used by InitializeApp; overridden in tests to avoid real files.
var sqliteOpener = InitSQLite
