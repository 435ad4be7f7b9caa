package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type commandIDKey struct{}

// CommandID is a middleware that injects a unique identifier
// for each command invocation.
//
// Behavior:
//   - Generates a new UUID (v4).
//   - Stores it in the command context, retrievable with CommandIDFrom.
//   - Ensures traceability of one invocation across log lines.
func CommandID() Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, commandIDKey{}, uuid.NewString()))
			return next(cmd, args)
		}
	}
}

// CommandIDFrom returns the invocation id stored by CommandID, or "".
func CommandIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(commandIDKey{}).(string)
	return id
}
