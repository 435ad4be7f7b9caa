package service

import "time"

// confirmScheduler holds one cancellable timer per pending trade id.
// It is not safe for concurrent use; TradeStore guards it with its mutex.
type confirmScheduler struct {
	timers map[string]*time.Timer
}

func newConfirmScheduler() *confirmScheduler {
	return &confirmScheduler{timers: make(map[string]*time.Timer)}
}

// schedule arms fn to run after d, replacing any timer already held for id.
func (s *confirmScheduler) schedule(id string, d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.cancel(id)
	s.timers[id] = time.AfterFunc(d, fn)
}

// cancel stops the timer for id and forgets its handle. Stopping a timer
// that already fired is harmless. It reports whether a handle was held.
func (s *confirmScheduler) cancel(id string) bool {
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, id)
	return true
}

// cancelAll stops every outstanding timer and returns how many were held.
func (s *confirmScheduler) cancelAll() int {
	n := len(s.timers)
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	return n
}

func (s *confirmScheduler) outstanding() int {
	return len(s.timers)
}
