package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/service"
	"github.com/spf13/cobra"
)

func newCaptureCommand() *cobra.Command {
	var (
		form    dto.TradeForm
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Validate and record one voice trade",
		Long: `Validate and record one voice trade.

Every rule is checked and all violations are reported together. An accepted
trade is stored as pending and confirmed once the confirmation delay elapses.
Without --wait the command returns at once; a trade still pending when the
process exits is handled by RELOAD_POLICY the next time the store opens.`,
		Example: `  voicetrade capture --type BUY --instrument EQUITY --symbol AAPL \
    --quantity 100 --price 150.50 --counterparty "Goldman Sachs" --trader "John Smith"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// ─── Open store, listening for confirmations ──────────────
			confirmed := make(chan models.Trade, 64)
			store, cleanup, err := openStore(ctx, func(t models.Trade) {
				select {
				case confirmed <- t:
				default:
				}
			})
			if err != nil {
				return err
			}
			defer cleanup()

			// ─── Capture ──────────────────────────────────────────────
			form.Type = strings.ToUpper(form.Type)
			form.Instrument = strings.ToUpper(form.Instrument)
			trade, err := store.Capture(ctx, form)
			resp := dto.CaptureResponse{}
			switch {
			case err == nil:
			case errors.Is(err, service.ErrPersistence) && trade != nil:
				resp.Warning = err.Error()
			default:
				return err
			}
			resp.Trade = *trade

			// ─── Optionally block until confirmed ─────────────────────
			if wait {
				t, err := awaitConfirmation(cmd, confirmed, trade.ID, timeout)
				if err != nil {
					return err
				}
				resp.Trade = t
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return writeJSON(out, resp)
			}
			_, _ = fmt.Fprintf(out, "Captured %s\n", formatTrade(resp.Trade))
			if resp.Warning != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", resp.Warning)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Type, "type", "", "BUY or SELL")
	f.StringVar(&form.Instrument, "instrument", "", "EQUITY, BOND, FX or COMMODITY")
	f.StringVar(&form.Symbol, "symbol", "", "instrument symbol, 1-10 characters")
	f.StringVar(&form.Quantity, "quantity", "", "whole number of units")
	f.StringVar(&form.Price, "price", "", "price per unit")
	f.StringVar(&form.Counterparty, "counterparty", "", "counterparty name")
	f.StringVar(&form.Trader, "trader", "", "trader name")
	f.StringVar(&form.Notes, "notes", "", "free text notes")
	f.BoolVar(&wait, "wait", false, "block until the trade is confirmed")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "maximum time to wait with --wait")

	return cmd
}

func awaitConfirmation(cmd *cobra.Command, confirmed <-chan models.Trade, id string, timeout time.Duration) (models.Trade, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case t := <-confirmed:
			if t.ID == id {
				return t, nil
			}
		case <-timer.C:
			return models.Trade{}, fmt.Errorf("trade %s not confirmed within %s", id, timeout)
		case <-cmd.Context().Done():
			return models.Trade{}, cmd.Context().Err()
		}
	}
}
