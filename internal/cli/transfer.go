package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/ingestion"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Capture every ticket from CSV files",
		Long: `Capture every ticket from CSV files.

Each file starts with the header
  type,instrument,symbol,quantity,price,counterparty,trader,notes
Files are parsed concurrently and captured in the order given. Rows that fail
validation are reported and skipped; a malformed file aborts the whole import.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := ingestion.ImportFiles(cmd.Context(), args, store, parallel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return writeJSON(out, report)
			}
			_, _ = fmt.Fprintf(out, "Imported %d of %d tickets from %d file(s).\n", len(report.Captured), report.Rows, report.Files)
			if len(report.Captured) > 0 {
				_, _ = fmt.Fprintf(out, "Captured: %s\n", strings.Join(report.Captured, ", "))
			}
			for _, r := range report.Rejected {
				_, _ = fmt.Fprintf(out, "Rejected %s:%d: %s\n", r.File, r.Line, strings.Join(r.Messages, "; "))
			}
			if report.Unpersisted > 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d trade(s) could not be persisted\n", report.Unpersisted)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 0, "how many files to parse concurrently (0=auto)")
	return cmd
}

// exportWriters maps --format values to encoders.
var exportWriters = map[string]func(io.Writer, []models.Trade) error{
	"csv":  ingestion.WriteCSV,
	"yaml": ingestion.WriteYAML,
}

func newExportCommand() *cobra.Command {
	var outPath, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all trades as CSV or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			write, ok := exportWriters[strings.ToLower(format)]
			if !ok {
				return dto.NewErrorResponse("unknown export format "+format, nil)
			}

			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			trades := store.List()
			if outPath == "" || outPath == "-" {
				return write(cmd.OutOrStdout(), trades)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := write(f, trades); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outPath, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d trade(s) to %s\n", len(trades), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or yaml")
	return cmd
}
