// Package ratelimit provides the in-memory admission counter that gates
// entry to the transcription pipeline. It is an explicitly constructed,
// injectable store with its own sweep lifecycle; nothing here coordinates
// across processes.
package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Store counts requests per caller identity within a fixed window. Safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once

	// now is swappable in tests.
	now func() time.Time
}

// NewStore creates a Store and starts its background sweep of expired
// entries. Call Stop when the store is no longer needed.
func NewStore(sweepEvery time.Duration) *Store {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	s := &Store{
		entries:    make(map[string]*entry),
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
	go s.sweepLoop()
	return s
}

// Allow reports whether the identity may make another request under the
// given policy. Each identity's first request in a window starts the clock;
// once maxRequests is reached, further requests are rejected until the
// window's reset time passes.
func (s *Store) Allow(identity string, maxRequests int, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.entries[identity]
	if !ok || now.After(rec.resetAt) {
		s.entries[identity] = &entry{count: 1, resetAt: now.Add(window)}
		return true
	}

	if rec.count >= maxRequests {
		return false
	}

	rec.count++
	return true
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for identity, rec := range s.entries {
		if now.After(rec.resetAt) {
			delete(s.entries, identity)
		}
	}
}

// Len returns the number of tracked identities. Used by the sweep tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
