package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetchBasic(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	var fetches int32
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&fetches, 1)
		return "value1", nil
	}

	v, err := c.GetOrFetch(ctx, "key1", time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, "value1", v)
	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	// Second call within TTL serves from cache.
	v, err = c.GetOrFetch(ctx, "key1", time.Minute, fetch)
	require.NoError(t, err)
	require.Equal(t, "value1", v)
	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestGetOrFetchExpiration(t *testing.T) {
	c := New[string, int](Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	var fetches int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&fetches, 1)), nil
	}

	v, err := c.GetOrFetch(ctx, "key1", 30*time.Millisecond, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	time.Sleep(40 * time.Millisecond)

	// Entry is stale, fetch runs again.
	v, err = c.GetOrFetch(ctx, "key1", 30*time.Millisecond, fetch)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestGetOrFetchCoalescing(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	var fetches int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&fetches, 1)
		close(started)
		<-release
		return "shared", nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.GetOrFetch(ctx, "key1", time.Minute, fetch)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(ctx, "key1", time.Minute, func(ctx context.Context) (string, error) {
				atomic.AddInt32(&fetches, 1)
				return "duplicate", nil
			})
		}(i)
	}

	// Give the late callers time to register as waiters.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "shared", results[i])
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	_, err := c.GetOrFetch(ctx, "key1", time.Minute, func(ctx context.Context) (string, error) {
		return "", errors.New("upstream down")
	})
	require.Error(t, err)
	require.Equal(t, 0, c.Size())

	// Failed fetch was not cached, the next caller retries and succeeds.
	v, err := c.GetOrFetch(ctx, "key1", time.Minute, func(ctx context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", v)
}

func TestGetOrFetchErrorKeepsStaleEntryOut(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	v, err := c.GetOrFetch(ctx, "key1", 10*time.Millisecond, func(ctx context.Context) (string, error) {
		return "old", nil
	})
	require.NoError(t, err)
	require.Equal(t, "old", v)

	time.Sleep(20 * time.Millisecond)

	// Refresh fails, the error propagates to the caller.
	_, err = c.GetOrFetch(ctx, "key1", 10*time.Millisecond, func(ctx context.Context) (string, error) {
		return "", errors.New("upstream down")
	})
	require.Error(t, err)
}

func TestEviction(t *testing.T) {
	c := New[string, int](Config{DefaultTTL: time.Minute, MaxEntries: 2})
	ctx := context.Background()

	fetchConst := func(v int) FetchFunc[int] {
		return func(ctx context.Context) (int, error) { return v, nil }
	}

	_, err := c.GetOrFetch(ctx, "a", time.Minute, fetchConst(1))
	require.NoError(t, err)
	_, err = c.GetOrFetch(ctx, "b", time.Minute, fetchConst(2))
	require.NoError(t, err)

	// Touch "a" so "b" is the LRU victim.
	_, ok := c.Get("a", time.Minute)
	require.True(t, ok)

	_, err = c.GetOrFetch(ctx, "c", time.Minute, fetchConst(3))
	require.NoError(t, err)
	require.Equal(t, 2, c.Size())

	_, ok = c.Get("b", time.Minute)
	require.False(t, ok)
	_, ok = c.Get("a", time.Minute)
	require.True(t, ok)
}

func TestWaiterContextCancellation(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = c.GetOrFetch(context.Background(), "key1", time.Minute, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrFetch(ctx, "key1", time.Minute, func(ctx context.Context) (string, error) {
		return "unused", nil
	})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestSetAndDelete(t *testing.T) {
	c := New[string, string](Config{DefaultTTL: time.Minute, MaxEntries: 10})

	c.Set("key1", "value1")
	v, ok := c.Get("key1", time.Minute)
	require.True(t, ok)
	require.Equal(t, "value1", v)

	c.Delete("key1")
	_, ok = c.Get("key1", time.Minute)
	require.False(t, ok)
	require.Equal(t, 0, c.Size())
}
