package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/service"
	"github.com/guttosm/voicetrade/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCapturer hands out sequential ids and rejects forms whose symbol is "BAD".
type fakeCapturer struct {
	mu      sync.Mutex
	next    int
	symbols []string
	failOn  string
	failErr error
	persist bool
}

func (f *fakeCapturer) Capture(_ context.Context, form dto.TradeForm) (*models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if form.Symbol == "BAD" {
		return nil, &service.ValidationError{Messages: []string{"Symbol must be 1-10 characters"}}
	}
	if f.failOn != "" && form.Symbol == f.failOn {
		return nil, f.failErr
	}
	f.symbols = append(f.symbols, form.Symbol)
	tr := &models.Trade{ID: fmt.Sprintf("VT%d", 1000+f.next), Symbol: form.Symbol}
	f.next++
	if f.persist {
		return tr, &service.PersistenceError{Op: "save", Err: errors.New("disk full")}
	}
	return tr, nil
}

func ticketFile(t *testing.T, dir, name string, symbols ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(validHeader)
	for _, s := range symbols {
		fmt.Fprintf(&b, "BUY,EQUITY,%s,10,5.00,GS,JS,\n", s)
	}
	return writeTempFile(t, dir, name, b.String())
}

func TestImportFiles_OrderAndRejections(t *testing.T) {
	dir := t.TempDir()
	a := ticketFile(t, dir, "a.csv", "AAA", "BAD", "BBB")
	b := ticketFile(t, dir, "b.csv", "CCC", "DDD")

	c := &fakeCapturer{}
	report, err := ImportFiles(context.Background(), []string{a, b}, c, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, c.symbols, "rows are captured in file order")
	assert.Equal(t, []string{"VT1000", "VT1001", "VT1002", "VT1003"}, report.Captured)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 5, report.Rows)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, a, report.Rejected[0].File)
	assert.Equal(t, 3, report.Rejected[0].Line)
	assert.Equal(t, []string{"Symbol must be 1-10 characters"}, report.Rejected[0].Messages)
}

func TestImportFiles_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	ok := ticketFile(t, dir, "ok.csv", "AAA")
	_, err := ImportFiles(context.Background(), []string{ok, filepath.Join(dir, "gone.csv")}, &fakeCapturer{}, 0)
	if err == nil || !strings.Contains(err.Error(), "missing ticket files") {
		t.Fatalf("expected missing files error, got %v", err)
	}
}

func TestImportFiles_StructuralErrorCapturesNothing(t *testing.T) {
	dir := t.TempDir()
	good := ticketFile(t, dir, "good.csv", "AAA")
	bad := writeTempFile(t, dir, "bad.csv", "X;Y;Z\n")

	c := &fakeCapturer{}
	_, err := ImportFiles(context.Background(), []string{good, bad}, c, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
	assert.Empty(t, c.symbols)
}

func TestImportFiles_PersistenceWarningCounts(t *testing.T) {
	dir := t.TempDir()
	f := ticketFile(t, dir, "a.csv", "AAA", "BBB")

	report, err := ImportFiles(context.Background(), []string{f}, &fakeCapturer{persist: true}, 1)
	require.NoError(t, err)
	assert.Len(t, report.Captured, 2)
	assert.Equal(t, 2, report.Unpersisted)
}

func TestImportFiles_StopsOnClosedStore(t *testing.T) {
	dir := t.TempDir()
	f := ticketFile(t, dir, "a.csv", "AAA", "STOP", "CCC")

	c := &fakeCapturer{failOn: "STOP", failErr: service.ErrStoreClosed}
	report, err := ImportFiles(context.Background(), []string{f}, c, 1)
	require.ErrorIs(t, err, service.ErrStoreClosed)
	require.NotNil(t, report)
	assert.Equal(t, []string{"VT1000"}, report.Captured)
}

func TestImportFiles_WithTradeStore(t *testing.T) {
	dir := t.TempDir()
	f := writeTempFile(t, dir, "desk.csv", validHeader+
		"BUY,EQUITY,AAPL,100,150.50,Goldman Sachs,John Smith,\n"+
		"HOLD,CRYPTO,BTC,-10,-100,,,\n"+
		"SELL,FX,EURUSD,1000,1.08,JPMorgan,Jane Doe,hedge\n")

	store, err := service.Open(context.Background(), storage.NewMemoryRepository(), service.Options{ConfirmDelay: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	report, err := ImportFiles(context.Background(), []string{f}, store, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"VT1000", "VT1001"}, report.Captured)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 3, report.Rejected[0].Line)
	assert.Len(t, report.Rejected[0].Messages, 6)
	assert.Len(t, store.List(), 2)
}
