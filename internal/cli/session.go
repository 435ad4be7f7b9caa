package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/ingestion"
	"github.com/guttosm/voicetrade/internal/service"
	"github.com/spf13/cobra"
)

const drainPoll = 20 * time.Millisecond

const sessionHelp = `Enter one ticket per line:
  type,instrument,symbol,quantity,price,counterparty,trader[,notes]
Commands: :list  :show ID  :stats  :reset  :help  :quit
`

// sessionEvent is one line of --json session output.
type sessionEvent struct {
	Event   string             `json:"event"`
	Trade   *models.Trade      `json:"trade,omitempty"`
	Trades  []models.Trade     `json:"trades,omitempty"`
	Stats   *dto.StatsResponse `json:"stats,omitempty"`
	Warning string             `json:"warning,omitempty"`
	Error   *dto.ErrorResponse `json:"error,omitempty"`
}

// desk is a running session: one store, one input stream, one serialized output.
type desk struct {
	store  *service.TradeStore
	out    io.Writer
	asJSON bool

	mu       sync.Mutex
	awaiting map[string]struct{} // captured this session, confirmation not yet printed
	early    map[string]struct{} // confirmation printed before the capture was recorded
}

func newSessionCommand() *cobra.Command {
	var drain bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run a desk session reading tickets from stdin",
		Long: `Run a desk session reading tickets from stdin.

The store stays open for the whole session, so confirmations are printed as
their delay elapses. At end of input the session waits for outstanding
confirmations unless --drain=false. :quit and interrupt leave pending trades
to the reload policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := &desk{
				out:      &syncWriter{w: cmd.OutOrStdout()},
				asJSON:   jsonOutput(cmd),
				awaiting: make(map[string]struct{}),
				early:    make(map[string]struct{}),
			}

			store, cleanup, err := openStore(ctx, d.confirmed)
			if err != nil {
				return err
			}
			defer cleanup()
			d.store = store

			if !d.asJSON {
				_, _ = io.WriteString(cmd.ErrOrStderr(), sessionHelp)
			}

			eof, err := d.run(ctx, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if eof && drain {
				d.drain(ctx)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&drain, "drain", true, "at end of input, wait for pending confirmations")
	return cmd
}

// run reads lines until end of input, :quit or ctx is done.
// It reports whether input ended on its own.
func (d *desk) run(ctx context.Context, in io.Reader) (bool, error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return false, nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return false, fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return true, nil
			}
			quit, err := d.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return false, err
			}
			if quit {
				return false, nil
			}
		}
	}
}

// handle processes one input line and reports whether the session should end.
func (d *desk) handle(ctx context.Context, line string) (bool, error) {
	switch line {
	case "":
		return false, nil
	case ":quit", ":q", ":exit":
		return true, nil
	case ":help":
		d.text(sessionHelp)
		return false, nil
	case ":list":
		trades := d.store.List()
		if d.asJSON {
			d.emit(sessionEvent{Event: "list", Trades: trades})
		} else {
			_ = writeTradeTable(d.out, trades)
		}
		return false, nil
	case ":stats":
		st := dto.NewStatsResponse(d.store.Stats())
		if d.asJSON {
			d.emit(sessionEvent{Event: "stats", Stats: &st})
		} else {
			_ = writeStats(d.out, st)
		}
		return false, nil
	case ":reset":
		if err := d.store.Reset(ctx); err != nil {
			d.fail(err)
			return false, nil
		}
		d.mu.Lock()
		clear(d.awaiting)
		clear(d.early)
		d.mu.Unlock()
		if d.asJSON {
			d.emit(sessionEvent{Event: "reset"})
		} else {
			d.text("All trades cleared.\n")
		}
		return false, nil
	}

	if strings.HasPrefix(line, "#") {
		return false, nil
	}
	if id, ok := strings.CutPrefix(line, ":show "); ok {
		t, err := lookupTrade(d.store.Get, id)
		switch {
		case err != nil:
			d.fail(err)
		case d.asJSON:
			d.emit(sessionEvent{Event: "show", Trade: &t})
		default:
			_ = writeTradeDetail(d.out, t)
		}
		return false, nil
	}
	if strings.HasPrefix(line, ":") {
		d.fail(dto.NewErrorResponse("unknown command "+line, nil))
		return false, nil
	}

	form, err := ingestion.ParseLine(line)
	if err != nil {
		d.fail(err)
		return false, nil
	}

	trade, err := d.store.Capture(ctx, form)
	switch {
	case err == nil:
		d.captured(*trade, "")
	case errors.Is(err, service.ErrPersistence) && trade != nil:
		d.captured(*trade, err.Error())
	case errors.Is(err, service.ErrStoreClosed):
		return true, err
	default:
		d.fail(err)
	}
	return false, nil
}

// drain waits until every trade captured in this session has been
// reported confirmed, or ctx is done.
func (d *desk) drain(ctx context.Context) {
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for d.outstanding() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *desk) outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.awaiting)
}

func (d *desk) captured(t models.Trade, warning string) {
	if t.Pending() {
		d.mu.Lock()
		if _, ok := d.early[t.ID]; ok {
			delete(d.early, t.ID)
		} else {
			d.awaiting[t.ID] = struct{}{}
		}
		d.mu.Unlock()
	}

	if d.asJSON {
		d.emit(sessionEvent{Event: "captured", Trade: &t, Warning: warning})
		return
	}
	d.text(fmt.Sprintf("Captured %s\n", formatTrade(t)))
	if warning != "" {
		d.text("warning: " + warning + "\n")
	}
}

// confirmed is the store's confirmation hook; it runs on a timer goroutine.
func (d *desk) confirmed(t models.Trade) {
	defer func() {
		d.mu.Lock()
		if _, ok := d.awaiting[t.ID]; ok {
			delete(d.awaiting, t.ID)
		} else {
			d.early[t.ID] = struct{}{}
		}
		d.mu.Unlock()
	}()

	if d.asJSON {
		d.emit(sessionEvent{Event: "confirmed", Trade: &t})
		return
	}
	d.text(fmt.Sprintf("Confirmed %s %s %d %s\n", t.ID, t.Type, t.Quantity, t.Symbol))
}

func (d *desk) fail(err error) {
	resp := toErrorResponse(err)
	if d.asJSON {
		d.emit(sessionEvent{Event: "error", Error: &resp})
		return
	}
	var b strings.Builder
	printError(&b, err, false)
	d.text(b.String())
}

func (d *desk) emit(ev sessionEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = d.out.Write(append(b, '\n'))
}

func (d *desk) text(s string) {
	_, _ = io.WriteString(d.out, s)
}
