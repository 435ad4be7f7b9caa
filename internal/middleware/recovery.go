package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/spf13/cobra"
)

// Recovery returns a middleware that recovers from any panic in a command body,
// logs the stack trace, and turns it into a standardized error.
//
// Behavior:
//   - Uses defer to catch any panic raised while the command runs.
//   - Logs the recovered value and stack trace.
//   - Returns a dto.ErrorResponse so the process exits non-zero instead of crashing.
func Recovery() Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.L().Error().
						Str("command_id", CommandIDFrom(cmd.Context())).
						Str("panic", fmt.Sprintf("%v", r)).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					err = dto.NewErrorResponse("Internal error", fmt.Errorf("%v", r))
				}
			}()

			return next(cmd, args)
		}
	}
}
