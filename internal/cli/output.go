package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTrade renders one blotter line.
func formatTrade(t models.Trade) string {
	s := fmt.Sprintf("%s %s %s %d %s @ %s = %s | %s | %s | %s",
		t.ID, t.Type, t.Instrument, t.Quantity, t.Symbol,
		t.Price.StringFixed(2), t.Total.StringFixed(2),
		t.Counterparty, t.Trader, t.Status)
	if t.Notes != "" {
		s += " | " + t.Notes
	}
	return s
}

func writeTradeTable(w io.Writer, trades []models.Trade) error {
	if len(trades) == 0 {
		_, err := fmt.Fprintln(w, "No trades captured yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTIME\tTYPE\tINSTRUMENT\tSYMBOL\tQTY\tPRICE\tTOTAL\tCOUNTERPARTY\tTRADER\tSTATUS")
	for _, t := range trades {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Timestamp.Local().Format(time.TimeOnly), t.Type, t.Instrument, t.Symbol,
			t.Quantity, t.Price.StringFixed(2), t.Total.StringFixed(2),
			t.Counterparty, t.Trader, t.Status)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, st dto.StatsResponse) error {
	_, err := fmt.Fprintf(w, "Total trades: %d (pending %d, confirmed %d)\nTotal volume: $%s\nAverage size: $%s\n",
		st.TotalTrades, st.Pending, st.Confirmed, st.TotalVolume, st.AverageSize)
	return err
}

// syncWriter serializes writes from the command goroutine and confirmation timers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
