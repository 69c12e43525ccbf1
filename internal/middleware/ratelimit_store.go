package middleware

import (
	"context"
	"time"

	"github.com/romyseb/wedding/internal/cache"
)

// RateStore counts requests per key within a window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

type counterRateStore struct {
	counters cache.Store
}

// NewRateStore limits on top of counters, either cache.MemoryStore or cache.DatabaseStore.
// A nil store returns nil, which disables limiting.
func NewRateStore(counters cache.Store) RateStore {
	if counters == nil {
		return nil
	}
	return &counterRateStore{counters: counters}
}

func (s *counterRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	count, ttl, err := s.counters.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
