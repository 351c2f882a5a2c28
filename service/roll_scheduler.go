package service

import (
	"sync"
	"time"
)

// RollScheduler holds at most one pending delayed roll per session key.
// Cancellation and firing race against the same mutex: a task that has been
// claimed by its timer can no longer be cancelled, and a cancelled task never
// runs. Entries are always removed on fire or cancel.
type RollScheduler struct {
	mu      sync.Mutex
	pending map[SessionKey]*time.Timer
}

// NewRollScheduler creates an empty scheduler
func NewRollScheduler() *RollScheduler {
	return &RollScheduler{
		pending: make(map[SessionKey]*time.Timer),
	}
}

// Schedule registers fn to run after delay, keyed by key. If a roll is
// already pending for the key, the existing one is kept and Schedule reports
// false; a re-join never resets the countdown.
func (s *RollScheduler) Schedule(key SessionKey, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[key]; exists {
		return false
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		// Claim-before-run: only the entry owner executes fn. If Cancel won
		// the race, the entry is gone (or replaced) and we do nothing.
		s.mu.Lock()
		current, ok := s.pending[key]
		if !ok || current != timer {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()

		fn()
	})

	s.pending[key] = timer
	return true
}

// Cancel removes the pending roll for the key before it fires. Reports false
// when nothing was pending, including when the task already claimed itself.
func (s *RollScheduler) Cancel(key SessionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.pending[key]
	if !ok {
		return false
	}
	delete(s.pending, key)
	timer.Stop()
	return true
}

// PendingCount returns the number of pending rolls
func (s *RollScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending roll; used during shutdown
func (s *RollScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.pending {
		timer.Stop()
		delete(s.pending, key)
	}
}
