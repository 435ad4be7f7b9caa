package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show captured trades in capture order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			trades := store.List()
			if status != "" {
				filtered := trades[:0]
				for _, t := range trades {
					if string(t.Status) == status {
						filtered = append(filtered, t)
					}
				}
				trades = filtered
			}

			if jsonOutput(cmd) {
				if trades == nil {
					trades = []models.Trade{}
				}
				return writeJSON(cmd.OutOrStdout(), trades)
			}
			return writeTradeTable(cmd.OutOrStdout(), trades)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show trades with this status (pending or confirmed)")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show trade count, total volume and average size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			resp := dto.NewStatsResponse(store.Stats())
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return writeStats(cmd.OutOrStdout(), resp)
		},
	}
}

func newResetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every trade and restart ids at the seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return dto.NewErrorResponse("refusing to reset without --force", nil)
			}

			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			cleared := len(store.List())
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"cleared": cleared})
			}
			_, err = cmd.OutOrStdout().Write([]byte("All trades cleared.\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm that all trades should be deleted")
	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show every field of one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := lookupTrade(store.Get, args[0])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			return writeTradeDetail(cmd.OutOrStdout(), t)
		},
	}
}

// lookupTrade resolves id case-insensitively through get.
func lookupTrade(get func(string) (models.Trade, bool), id string) (models.Trade, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	t, ok := get(id)
	if !ok {
		return models.Trade{}, dto.NewErrorResponse("trade "+id+" not found", nil)
	}
	return t, nil
}

func writeTradeDetail(w io.Writer, t models.Trade) error {
	notes := t.Notes
	if notes == "" {
		notes = "-"
	}
	_, err := fmt.Fprintf(w,
		"Trade ID:     %s\nTimestamp:    %s\nType:         %s\nInstrument:   %s\nSymbol:       %s\n"+
			"Quantity:     %d\nPrice:        $%s\nTotal:        $%s\nCounterparty: %s\nTrader:       %s\n"+
			"Notes:        %s\nStatus:       %s\n",
		t.ID, t.Timestamp.Local().Format(time.DateTime), t.Type, t.Instrument, t.Symbol,
		t.Quantity, t.Price.StringFixed(2), t.Total.StringFixed(2), t.Counterparty, t.Trader,
		notes, t.Status)
	return err
}
