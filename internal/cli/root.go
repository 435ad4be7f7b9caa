package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/guttosm/voicetrade/config"
	"github.com/guttosm/voicetrade/internal/app"
	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/middleware"
	"github.com/guttosm/voicetrade/internal/service"
	"github.com/spf13/cobra"
)

// openStore is an indirection used by every command; overridden in tests to avoid real files.
var openStore = app.InitializeApp

// NewRootCommand builds the voicetrade command tree.
//
// Commands:
//   - capture: validate and record one voice trade.
//   - list / show / stats: inspect the blotter.
//   - reset: clear every trade (requires --force).
//   - import / export: move tickets in and trades out as CSV.
//   - session: long-lived desk prompt that shows confirmations as they happen.
//
// Global flags:
//   - --json: print results and errors as JSON.
//   - --store: SQLite file to use instead of STORE_PATH.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "voicetrade",
		Short:         "Capture and track voice-brokered trades",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f := cmd.Flags().Lookup("store"); f != nil && f.Changed {
				config.AppConfig.Store.Path = f.Value.String()
			}
			return nil
		},
	}
	root.PersistentFlags().Bool("json", false, "print output as JSON")
	root.PersistentFlags().String("store", "", "SQLite database file (overrides STORE_PATH)")

	root.AddCommand(
		newCaptureCommand(),
		newListCommand(),
		newShowCommand(),
		newStatsCommand(),
		newResetCommand(),
		newImportCommand(),
		newExportCommand(),
		newSessionCommand(),
	)

	middleware.Wrap(root, middleware.CommandID(), middleware.CommandLogger(), middleware.Recovery())
	return root
}

// Execute runs the command tree with ctx and prints any failure to stderr.
func Execute(ctx context.Context) error {
	return run(ctx, NewRootCommand())
}

func run(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err != nil {
		asJSON, _ := root.PersistentFlags().GetBool("json")
		printError(root.ErrOrStderr(), err, asJSON)
	}
	return err
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// toErrorResponse maps command errors onto the printed error structure.
func toErrorResponse(err error) dto.ErrorResponse {
	var verr *service.ValidationError
	var resp dto.ErrorResponse
	switch {
	case errors.As(err, &verr):
		r := dto.NewErrorResponse("trade rejected", nil)
		r.Violations = verr.Messages
		return r
	case errors.As(err, &resp):
		return resp
	default:
		return dto.NewErrorResponse("command failed", err)
	}
}

func printError(w io.Writer, err error, asJSON bool) {
	resp := toErrorResponse(err)
	if asJSON {
		_ = writeJSON(w, resp)
		return
	}
	if len(resp.Violations) > 0 {
		_, _ = fmt.Fprintf(w, "%s:\n", resp.Message)
		for _, v := range resp.Violations {
			_, _ = fmt.Fprintf(w, "  - %s\n", v)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "error: %s\n", resp.Error())
}
