// Package cooldown gates repeated sync requests. The last-run timestamps and
// the clock are injected so callers can persist them and tests can move
// time.
package cooldown

import (
	"fmt"
	"sync"
	"time"

	"github.com/dukerupert/clubsite/internal/syncerr"
)

// DefaultWindow is the minimum time between two untrusted syncs.
const DefaultWindow = 60 * time.Second

// Store remembers when a key last ran.
type Store interface {
	LastRunAt(key string) (time.Time, bool, error)
	RecordRun(key string, at time.Time) error
}

// Clock returns the current time.
type Clock func() time.Time

type Gate struct {
	store  Store
	window time.Duration
	now    Clock
}

func NewGate(store Store, window time.Duration, now Clock) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{store: store, window: window, now: now}
}

// Check returns a *syncerr.RateLimitedError if key ran less than one window
// ago.
func (g *Gate) Check(key string) error {
	last, ok, err := g.store.LastRunAt(key)
	if err != nil {
		return fmt.Errorf("read last run: %w", err)
	}
	if !ok {
		return nil
	}
	elapsed := g.now().Sub(last)
	if elapsed < g.window {
		return &syncerr.RateLimitedError{Remaining: g.window - elapsed}
	}
	return nil
}

// Record marks key as having run now.
func (g *Gate) Record(key string) error {
	if err := g.store.RecordRun(key, g.now()); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Now exposes the gate's clock.
func (g *Gate) Now() time.Time {
	return g.now()
}

// MemoryStore keeps last-run timestamps in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]time.Time)}
}

func (s *MemoryStore) LastRunAt(key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.runs[key]
	return t, ok, nil
}

func (s *MemoryStore) RecordRun(key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[key] = at
	return nil
}
