package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guttosm/voicetrade/internal/domain/dto"
)

const validHeader = "type,instrument,symbol,quantity,price,counterparty,trader,notes\n"

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return p
}

func TestParseFile_TableDriven(t *testing.T) {
	dir := t.TempDir()
	validRow := "BUY,EQUITY,AAPL,100,150.50,Goldman Sachs,John Smith,morning call\n"

	cases := []struct {
		name     string
		content  string
		wantErr  bool
		wantRows int
	}{
		{name: "ok single row", content: validHeader + validRow, wantRows: 1},
		{name: "header only", content: validHeader, wantRows: 0},
		{name: "empty file", content: "", wantErr: true},
		{name: "bad header order", content: "symbol,type,instrument,quantity,price,counterparty,trader,notes\n", wantErr: true},
		{name: "short header", content: "type,instrument,symbol\n", wantErr: true},
		{name: "bad col count", content: validHeader + "BUY,EQUITY\n", wantErr: true},
		{name: "empty cells tolerated", content: validHeader + "BUY,,AAPL,,,,,\n", wantRows: 1},
		{name: "blank rows skipped", content: validHeader + validRow + ",,,,,,,\n" + validRow, wantRows: 2},
		{name: "quoted comma in notes", content: validHeader + `SELL,BOND,UST10Y,10,98.25,JPMorgan,Jane Doe,"client call, urgent"` + "\n", wantRows: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, dir, "tickets.csv", tc.content)
			rows, err := ParseFile(context.Background(), path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(rows) != tc.wantRows {
				t.Fatalf("rows: want %d got %d", tc.wantRows, len(rows))
			}
		})
	}
}

func TestParseTickets_FieldsAndLines(t *testing.T) {
	in := validHeader +
		"buy, equity ,aapl,100,150.50,Goldman Sachs,John Smith,\n" +
		"\n" +
		`SELL,BOND,UST10Y,10,98.25,JPMorgan,Jane Doe,"client call, urgent"` + "\n"

	rows, err := ParseTickets(context.Background(), strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseTickets: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows got %d", len(rows))
	}

	want := dto.TradeForm{
		Type: "BUY", Instrument: "EQUITY", Symbol: "aapl", Quantity: "100", Price: "150.50",
		Counterparty: "Goldman Sachs", Trader: "John Smith",
	}
	if rows[0].Form != want {
		t.Fatalf("row 0 form: %+v", rows[0].Form)
	}
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Fatalf("lines: got %d and %d", rows[0].Line, rows[1].Line)
	}
	if rows[1].Form.Notes != "client call, urgent" {
		t.Fatalf("notes: %q", rows[1].Form.Notes)
	}
}

func TestParseFile_OpenError(t *testing.T) {
	if _, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestParseTickets_ContextCanceled(t *testing.T) {
	var b strings.Builder
	b.WriteString(validHeader)
	for i := 0; i < 1000; i++ {
		b.WriteString("BUY,EQUITY,AAPL,100,150.50,GS,JS,\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // immediately canceled
	if _, err := ParseTickets(ctx, strings.NewReader(b.String())); err == nil {
		t.Fatalf("expected context canceled error")
	}
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		wantErr bool
		notes   string
	}{
		{name: "all columns", line: "BUY,EQUITY,AAPL,100,150.50,GS,JS,note", notes: "note"},
		{name: "notes omitted", line: "SELL,FX,EURUSD,1000,1.08,JPM,JD"},
		{name: "too few columns", line: "SELL,FX,EURUSD", wantErr: true},
		{name: "too many columns", line: "a,b,c,d,e,f,g,h,i", wantErr: true},
		{name: "unbalanced quote", line: `BUY,EQUITY,"AAPL,100,150.50,GS,JS`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form, err := ParseLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if form.Notes != tc.notes {
				t.Fatalf("notes: want %q got %q", tc.notes, form.Notes)
			}
		})
	}
}
