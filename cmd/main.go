package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/guttosm/voicetrade/config"
	"github.com/guttosm/voicetrade/internal/cli"
	"github.com/guttosm/voicetrade/internal/logger"
)

// execute is an indirection for unit testing; defaults to cli.Execute.
var execute = cli.Execute

// runMain loads configuration, runs the command tree until it returns or an
// interrupt arrives, and reports the process exit code.
func runMain(ctx context.Context) int {
	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// SIGINT/SIGTERM cancel the command context; stores cancel their timers on the way out.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx); err != nil {
		return 1
	}
	return 0
}

// main is the entry point of the voicetrade CLI.
//
// Commands:
//   - capture: record one voice trade from flags.
//   - list, stats: inspect captured trades.
//   - reset: delete every trade.
//   - import, export: CSV tickets in, CSV blotter out.
//   - session: interactive desk prompt.
func main() {
	os.Exit(runMain(context.Background()))
}
