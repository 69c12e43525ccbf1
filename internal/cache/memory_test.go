package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFixedWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return current })
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "rl|1.2.3.4|/api/invite/resend", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	current = current.Add(45 * time.Second)
	count, ttl, err = store.IncrementWithTTL(ctx, "rl|1.2.3.4|/api/invite/resend", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 15*time.Second, ttl)

	current = current.Add(15 * time.Second)
	count, _, err = store.IncrementWithTTL(ctx, "rl|1.2.3.4|/api/invite/resend", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count, "window boundary starts a new window")
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return current })
	ctx := context.Background()

	_, _, _ = store.IncrementWithTTL(ctx, "short", time.Second)
	_, _, _ = store.IncrementWithTTL(ctx, "long", time.Hour)

	current = current.Add(time.Minute)
	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStoreConcurrentHits(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.IncrementWithTTL(context.Background(), "shared", time.Minute)
		}()
	}
	wg.Wait()

	count, _, err := store.IncrementWithTTL(context.Background(), "shared", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 51, count)
}
