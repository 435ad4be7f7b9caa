package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guttosm/voicetrade/internal/domain/dto"
)

// expectedHeaders enforces strict column ordering for ticket files.
// If the header doesn't match EXACTLY (order + count), the file is refused.
var expectedHeaders = []string{
	"type",
	"instrument",
	"symbol",
	"quantity",
	"price",
	"counterparty",
	"trader",
	"notes",
}

// Row is one ticket read from a file, with the line it came from.
type Row struct {
	Line int
	Form dto.TradeForm
}

// ParseFile opens and parses one ticket file.
func ParseFile(ctx context.Context, path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseTickets(ctx, f)
}

// ParseTickets validates the header and reads every row into a TradeForm.
// It fails on:
//   - header not matching expected order/length
//   - a row with the wrong number of columns
//   - unrecoverable I/O errors
//
// It tolerates:
//   - empty cells (they become empty fields and are judged by validation later)
func ParseTickets(ctx context.Context, in io.Reader) ([]Row, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // allow variable but we'll check explicitly

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), expectedHeaders[i]) {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	var rows []Row
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read line: %w", err)
		}
		line, _ := r.FieldPos(0)

		if isBlank(rec) {
			continue
		}
		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", line, len(expectedHeaders), len(rec))
		}

		rows = append(rows, Row{Line: line, Form: RecordToForm(rec)})
	}

	return rows, nil
}

// ParseLine reads a single ticket row typed at the desk prompt. The notes
// column may be left off.
func ParseLine(line string) (dto.TradeForm, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	rec, err := r.Read()
	if err != nil {
		return dto.TradeForm{}, fmt.Errorf("parse ticket: %w", err)
	}
	switch len(rec) {
	case len(expectedHeaders):
	case len(expectedHeaders) - 1:
		rec = append(rec, "")
	default:
		return dto.TradeForm{}, fmt.Errorf("parse ticket: expected %d or %d columns (%s), got %d",
			len(expectedHeaders)-1, len(expectedHeaders), strings.Join(expectedHeaders, ","), len(rec))
	}
	return RecordToForm(rec), nil
}

// RecordToForm maps an already length-checked record onto a TradeForm.
//
// Column order:
//
//	0 type          → Type
//	1 instrument    → Instrument
//	2 symbol        → Symbol
//	3 quantity      → Quantity
//	4 price         → Price
//	5 counterparty  → Counterparty
//	6 trader        → Trader
//	7 notes         → Notes
func RecordToForm(rec []string) dto.TradeForm {
	return dto.TradeForm{
		Type:         strings.ToUpper(strings.TrimSpace(rec[0])),
		Instrument:   strings.ToUpper(strings.TrimSpace(rec[1])),
		Symbol:       strings.TrimSpace(rec[2]),
		Quantity:     strings.TrimSpace(rec[3]),
		Price:        strings.TrimSpace(rec[4]),
		Counterparty: strings.TrimSpace(rec[5]),
		Trader:       strings.TrimSpace(rec[6]),
		Notes:        strings.TrimSpace(rec[7]),
	}
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
