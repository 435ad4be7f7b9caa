package middleware

import (
	"time"

	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/spf13/cobra"
)

// CommandLogger is a middleware that logs the command path, outcome,
// latency and command ID (if available).
//
// Behavior:
//   - Captures start time before the command body runs.
//   - After it returns, calculates latency.
//   - Logs at info on success and at error when the body returned an error.
//
// Example log output:
//
//	command_id=123e4567-e89b-12d3-a456-426614174000 command="voicetrade capture" args=0 latency_ms=15
func CommandLogger() Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			err := next(cmd, args)

			ev := logger.L().Info()
			if err != nil {
				ev = logger.L().Error().Err(err)
			}
			ev.Str("command_id", CommandIDFrom(cmd.Context())).
				Str("command", cmd.CommandPath()).
				Int("args", len(args)).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("command")
			return err
		}
	}
}
