package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/models"
	"gopkg.in/yaml.v3"
)

var exportHeaders = []string{
	"id", "timestamp", "type", "instrument", "symbol", "quantity",
	"price", "total", "counterparty", "trader", "notes", "status",
}

// WriteCSV writes trades as CSV, one row per trade in the order given.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		rec := []string{
			t.ID,
			t.Timestamp.UTC().Format(time.RFC3339),
			string(t.Type),
			string(t.Instrument),
			t.Symbol,
			strconv.FormatInt(t.Quantity, 10),
			t.Price.String(),
			t.Total.String(),
			t.Counterparty,
			t.Trader,
			t.Notes,
			string(t.Status),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportRecord is the YAML shape of one exported trade.
type exportRecord struct {
	ID           string `yaml:"id"`
	Timestamp    string `yaml:"timestamp"`
	Type         string `yaml:"type"`
	Instrument   string `yaml:"instrument"`
	Symbol       string `yaml:"symbol"`
	Quantity     int64  `yaml:"quantity"`
	Price        string `yaml:"price"`
	Total        string `yaml:"total"`
	Counterparty string `yaml:"counterparty"`
	Trader       string `yaml:"trader"`
	Notes        string `yaml:"notes,omitempty"`
	Status       string `yaml:"status"`
}

// WriteYAML writes trades as a YAML sequence in the order given.
func WriteYAML(w io.Writer, trades []models.Trade) error {
	recs := make([]exportRecord, 0, len(trades))
	for _, t := range trades {
		recs = append(recs, exportRecord{
			ID:           t.ID,
			Timestamp:    t.Timestamp.UTC().Format(time.RFC3339),
			Type:         string(t.Type),
			Instrument:   string(t.Instrument),
			Symbol:       t.Symbol,
			Quantity:     t.Quantity,
			Price:        t.Price.String(),
			Total:        t.Total.String(),
			Counterparty: t.Counterparty,
			Trader:       t.Trader,
			Notes:        t.Notes,
			Status:       string(t.Status),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
