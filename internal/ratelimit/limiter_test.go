package ratelimit

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	s := NewStore(time.Hour)
	t.Cleanup(s.Stop)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	return s, &current
}

func TestAllowWithinLimit(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 5; i++ {
		if !s.Allow("203.0.113.7", 5, 300*time.Second) {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if s.Allow("203.0.113.7", 5, 300*time.Second) {
		t.Error("6th request within the window should be rejected")
	}
}

func TestAllowIdentitiesAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 5; i++ {
		s.Allow("203.0.113.7", 5, 300*time.Second)
	}
	if !s.Allow("198.51.100.9", 5, 300*time.Second) {
		t.Error("a different identity must not be throttled")
	}
}

func TestAllowWindowResets(t *testing.T) {
	s, current := newTestStore(t)

	for i := 0; i < 5; i++ {
		s.Allow("203.0.113.7", 5, 300*time.Second)
	}
	if s.Allow("203.0.113.7", 5, 300*time.Second) {
		t.Fatal("expected rejection before the window expires")
	}

	*current = current.Add(301 * time.Second)
	if !s.Allow("203.0.113.7", 5, 300*time.Second) {
		t.Error("expected admission after the window reset")
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	s, current := newTestStore(t)

	s.Allow("203.0.113.7", 5, 300*time.Second)
	s.Allow("198.51.100.9", 5, 600*time.Second)
	if got := s.Len(); got != 2 {
		t.Fatalf("tracked identities = %d, want 2", got)
	}

	*current = current.Add(301 * time.Second)
	s.sweep()

	if got := s.Len(); got != 1 {
		t.Errorf("tracked identities after sweep = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewStore(time.Millisecond)
	s.Stop()
	s.Stop()
}
