package tui

import "sync"

// inputSequencer orders engine calls by keystroke. Tickets are issued from
// Update, which runs on one goroutine; commands run on their own goroutines
// and may start in any order.
type inputSequencer struct {
	mu     sync.Mutex
	issued uint64
}

// next issues the ticket for the newest keystroke.
func (s *inputSequencer) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// run calls fn if ticket is still the newest one issued, holding the lock so
// engine calls never overlap. It reports whether fn ran.
func (s *inputSequencer) run(ticket uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.issued {
		return false
	}
	fn()
	return true
}

// barrier invalidates every outstanding ticket and calls fn under the lock.
// Session-ending calls go through it so no older edit can follow them.
func (s *inputSequencer) barrier(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	fn()
}
