package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/voicetrade/config"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/guttosm/voicetrade/internal/service"
	"github.com/guttosm/voicetrade/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// an opened trade store, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the SQLite database using InitSQLite().
//   - Initializes the repository layer (TradesRepository) under the configured key.
//   - Opens the TradeStore, loading persisted trades and applying the reload policy.
//   - Provides a cleanup function that cancels timers and closes the database.
//
// A persistence warning from opening the store is logged, not returned: the
// store keeps working in memory.
//
// Returns:
//   - *service.TradeStore: the ready trade store.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(ctx context.Context, onConfirm func(models.Trade)) (*service.TradeStore, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	opts, err := StoreOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts.OnConfirm = onConfirm

	// indirection for unit testing
	db, err := sqliteOpener(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	repo := storage.NewTradesRepository(db, cfg.Store.Key)

	store, err := service.Open(ctx, repo, opts)
	if err != nil {
		var perr *service.PersistenceError
		if !errors.As(err, &perr) {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to open trade store: %w", err)
		}
		logger.L().Warn().Err(err).Msg("trade store opened without persistence")
	}

	cleanup := func() {
		_ = store.Close()
		_ = db.Close()
	}

	return store, cleanup, nil
}

// StoreOptions maps configuration onto service.Options.
func StoreOptions(cfg config.Config) (service.Options, error) {
	policy, err := service.ParseReloadPolicy(cfg.Capture.ReloadPolicy)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		ConfirmDelay: cfg.Capture.ConfirmDelay,
		IDSeed:       cfg.Capture.IDSeed,
		ReloadPolicy: policy,
	}, nil
}
