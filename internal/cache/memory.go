package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process. Counters are lost on restart and not shared
// between instances; expired ones are dropped by PurgeExpired.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
	now      func() time.Time
}

type memoryCounter struct {
	hits      int64
	expiresAt time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]memoryCounter), now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	if now != nil {
		s.now = now
	}
	return s
}

// IncrementWithTTL has the same fixed-window semantics as DatabaseStore.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[key]
	if !ok || !counter.expiresAt.After(now) {
		counter = memoryCounter{expiresAt: now.Add(window)}
	}
	counter.hits++
	s.counters[key] = counter
	return counter.hits, counter.expiresAt.Sub(now), nil
}

// PurgeExpired drops counters whose window has elapsed.
func (s *MemoryStore) PurgeExpired(context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, counter := range s.counters {
		if !counter.expiresAt.After(now) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many counters are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
