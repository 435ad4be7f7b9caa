package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/guttosm/voicetrade/internal/storage"
	"github.com/guttosm/voicetrade/internal/validation"
)

const (
	// DefaultConfirmDelay is how long a captured trade stays pending.
	DefaultConfirmDelay = 2 * time.Second

	// DefaultIDSeed is the first counter value handed out by a fresh store.
	DefaultIDSeed int64 = 1000

	idPrefix = "VT"
)

// ReloadPolicy decides what happens to trades still pending when a store
// is opened over previously persisted state.
type ReloadPolicy string

const (
	// ReloadConfirm confirms every pending trade immediately on open.
	ReloadConfirm ReloadPolicy = "confirm"
	// ReloadResume schedules the remainder of each trade's original delay,
	// measured from its capture timestamp.
	ReloadResume ReloadPolicy = "resume"
)

// ParseReloadPolicy maps a configuration value to a ReloadPolicy.
func ParseReloadPolicy(s string) (ReloadPolicy, error) {
	switch p := ReloadPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ReloadConfirm, ReloadResume:
		return p, nil
	case "":
		return ReloadConfirm, nil
	}
	return "", fmt.Errorf("unknown reload policy %q", s)
}

// Options tunes a TradeStore. Zero values select the defaults.
//
// Fields:
//   - ConfirmDelay: time between capture and confirmation (default 2s).
//   - IDSeed: first id counter value (default 1000).
//   - ReloadPolicy: handling of pending trades found on open (default ReloadConfirm).
//   - OnConfirm: called after a trade is confirmed by its timer, outside the store lock.
//   - Now: clock used for capture timestamps (default time.Now).
type Options struct {
	ConfirmDelay time.Duration
	IDSeed       int64
	ReloadPolicy ReloadPolicy
	OnConfirm    func(models.Trade)
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ConfirmDelay <= 0 {
		o.ConfirmDelay = DefaultConfirmDelay
	}
	if o.IDSeed <= 0 {
		o.IDSeed = DefaultIDSeed
	}
	if o.ReloadPolicy == "" {
		o.ReloadPolicy = ReloadConfirm
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// TradeStore owns the captured trades of one session.
//
// Responsibilities:
//   - Validate capture requests and build trades from the typed ticket.
//   - Assign "VT<n>" ids from a monotonic counter.
//   - Persist the whole trade set after every change.
//   - Confirm each trade once its delay elapses, via a cancellable timer.
//
// All methods are safe for concurrent use; one mutex guards the counter,
// the trade sequence and the timer handles.
type TradeStore struct {
	mu     sync.Mutex
	repo   storage.TradesRepository
	opts   Options
	trades []models.Trade
	index  map[string]int
	next   int64
	epoch  uint64 // bumped by Reset and Close so stale timers become no-ops
	sched  *confirmScheduler
	closed bool
}

// Open builds a store over repo and loads the persisted trade set.
//
// A missing or unreadable record starts the store empty. When the record
// cannot be read or rewritten because of a storage failure, the store is still
// returned, usable in memory, together with a *PersistenceError.
func Open(ctx context.Context, repo storage.TradesRepository, opts Options) (*TradeStore, error) {
	opts = opts.withDefaults()
	s := &TradeStore{
		repo:  repo,
		opts:  opts,
		index: make(map[string]int),
		next:  opts.IDSeed,
		sched: newConfirmScheduler(),
	}

	var warn error
	loaded, err := repo.LoadTrades(ctx)
	switch {
	case errors.Is(err, storage.ErrCorruptRecord):
		logger.L().Warn().Err(err).Msg("persisted trades unreadable, starting empty")
		loaded = nil
	case err != nil:
		warn = &PersistenceError{Op: "load", Err: err}
		logger.L().Warn().Err(err).Msg("loading trades failed, continuing in memory")
		loaded = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range loaded {
		s.trades = append(s.trades, t)
		s.index[t.ID] = len(s.trades) - 1
		if n, ok := parseTradeID(t.ID); ok && n >= s.next && n < math.MaxInt64 {
			s.next = n + 1
		}
	}

	if s.applyReloadPolicyLocked() {
		if err := s.persistLocked(ctx); err != nil && warn == nil {
			warn = err
		}
	}

	logger.L().Info().
		Int("trades", len(s.trades)).
		Str("next_id", formatTradeID(s.next)).
		Str("reload_policy", string(opts.ReloadPolicy)).
		Msg("trade store opened")

	return s, warn
}

// applyReloadPolicyLocked handles trades loaded in pending state.
// It reports whether any trade changed and the set must be re-persisted.
func (s *TradeStore) applyReloadPolicyLocked() bool {
	changed := false
	now := s.opts.Now()
	for i := range s.trades {
		t := &s.trades[i]
		if !t.Pending() {
			continue
		}
		switch s.opts.ReloadPolicy {
		case ReloadResume:
			remaining := t.Timestamp.Add(s.opts.ConfirmDelay).Sub(now)
			s.scheduleLocked(t.ID, remaining)
		default:
			t.Status = models.StatusConfirmed
			changed = true
			logger.L().Info().Str("trade_id", t.ID).Msg("pending trade confirmed on reload")
		}
	}
	return changed
}

// Capture validates form and, when it passes, records a new pending trade.
//
// Returns:
//   - (*Trade, nil): trade captured and persisted.
//   - (nil, *ValidationError): rejected; the store is unchanged.
//   - (*Trade, *PersistenceError): captured in memory, but the record could not be written.
//   - (nil, ErrStoreClosed): the store was closed.
func (s *TradeStore) Capture(ctx context.Context, form dto.TradeForm) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	res := validation.Validate(form)
	if !res.Valid {
		logger.L().Info().Strs("violations", res.Errors).Msg("trade rejected")
		return nil, &ValidationError{Messages: res.Errors}
	}

	id := formatTradeID(s.next)
	s.next++

	trade := models.NewTrade(id, *res.Ticket, s.opts.Now())
	s.trades = append(s.trades, trade)
	s.index[id] = len(s.trades) - 1
	s.scheduleLocked(id, s.opts.ConfirmDelay)

	out := trade
	if err := s.persistLocked(ctx); err != nil {
		logger.L().Warn().Err(err).Str("trade_id", id).Msg("trade captured in memory only")
		return &out, err
	}

	logger.L().Info().
		Str("trade_id", id).
		Str("type", string(trade.Type)).
		Str("symbol", trade.Symbol).
		Str("total", trade.Total.String()).
		Msg("trade captured")
	return &out, nil
}

// scheduleLocked arms the confirmation timer for id in the current epoch.
func (s *TradeStore) scheduleLocked(id string, d time.Duration) {
	epoch := s.epoch
	s.sched.schedule(id, d, func() { s.confirm(id, epoch) })
}

// confirm moves a pending trade to confirmed. It runs on the timer goroutine.
// Unknown ids, already confirmed trades and timers from an earlier epoch are
// ignored.
func (s *TradeStore) confirm(id string, epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.sched.cancel(id)

	i, ok := s.index[id]
	if !ok || !s.trades[i].Pending() {
		s.mu.Unlock()
		logger.L().Debug().Str("trade_id", id).Msg("confirmation skipped")
		return
	}

	s.trades[i].Status = models.StatusConfirmed
	confirmed := s.trades[i]
	err := s.persistLocked(context.Background())
	hook := s.opts.OnConfirm
	s.mu.Unlock()

	if err != nil {
		logger.L().Warn().Err(err).Str("trade_id", id).Msg("confirmation kept in memory only")
	}
	logger.L().Info().Str("trade_id", id).Msg("trade confirmed")
	if hook != nil {
		hook(confirmed)
	}
}

func (s *TradeStore) persistLocked(ctx context.Context) error {
	if err := s.repo.SaveTrades(ctx, slices.Clone(s.trades)); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// List returns a copy of all trades in capture order.
func (s *TradeStore) List() []models.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trades)
}

// Get returns the trade with the given id.
func (s *TradeStore) Get(id string) (models.Trade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.Trade{}, false
	}
	return s.trades[i], true
}

// Stats aggregates count, volume and average size over every trade.
func (s *TradeStore) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ComputeStats(s.trades)
}

// PendingConfirmations returns how many confirmation timers are armed.
func (s *TradeStore) PendingConfirmations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.outstanding()
}

// Reset cancels every confirmation, clears all trades, restarts the id
// counter at the seed and deletes the persisted record.
func (s *TradeStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	cancelled := s.sched.cancelAll()
	s.epoch++
	cleared := len(s.trades)
	s.trades = nil
	s.index = make(map[string]int)
	s.next = s.opts.IDSeed

	logger.L().Info().Int("cleared", cleared).Int("timers_cancelled", cancelled).Msg("trade store reset")

	if err := s.repo.DeleteTrades(ctx); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// Close cancels all outstanding confirmations. Trades still pending stay
// pending in storage and are handled by the reload policy on the next Open.
func (s *TradeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.epoch++
	n := s.sched.cancelAll()
	logger.L().Info().Int("timers_cancelled", n).Msg("trade store closed")
	return nil
}

func formatTradeID(n int64) string {
	return idPrefix + strconv.FormatInt(n, 10)
}

// parseTradeID extracts n from "VT<n>".
func parseTradeID(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
