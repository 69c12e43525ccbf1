package cache

import (
	"context"
	"time"
)

var (
	_ Store = (*DatabaseStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Store holds the fixed-window counters behind the public API rate limit.
type Store interface {
	// IncrementWithTTL counts one hit on key and returns the hits so far in the current
	// window and the time left in it.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	// PurgeExpired removes counters whose window has elapsed.
	PurgeExpired(ctx context.Context) (int64, error)
}
