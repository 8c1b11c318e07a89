// Package cache provides a TTL response cache with in-flight request
// coalescing, used to deduplicate identical LLM calls.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// FetchFunc produces a value for a key when the cache has no fresh entry.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// call tracks a single in-flight fetch. Waiters block on done and then
// read value/err.
type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// entry is a cached value plus an optional in-flight fetch.
type entry[V any] struct {
	value     V
	hasValue  bool
	timestamp time.Time
	inflight  *call[V]
	elem      *list.Element
}

// Config tunes a Cache.
type Config struct {
	// DefaultTTL applies when GetOrFetch is called with ttl <= 0.
	DefaultTTL time.Duration
	// MaxEntries caps the number of cached keys; the least recently
	// used entry with no in-flight fetch is evicted past the cap.
	MaxEntries int
}

// Cache is a concurrency-safe TTL cache keyed by K. Concurrent callers
// asking for the same missing or stale key share a single fetch.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	order   *list.List // front = most recently used, holds K
	config  Config
}

// New creates a cache.
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		order:   list.New(),
		config:  config,
	}
}

// GetOrFetch returns the cached value for key if it is younger than ttl.
// Otherwise it runs fetch, stores the result, and returns it. Callers
// that arrive while a fetch for the same key is running wait for that
// fetch instead of starting their own. A failed fetch is not cached:
// the entry is cleared so the next caller retries.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, ttl time.Duration, fetch FetchFunc[V]) (V, error) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		if e.hasValue && time.Since(e.timestamp) < ttl {
			c.order.MoveToFront(e.elem)
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
		if e.inflight != nil {
			cl := e.inflight
			c.mu.Unlock()
			return waitForCall(ctx, cl)
		}
	} else {
		e = &entry[V]{}
		e.elem = c.order.PushFront(key)
		c.entries[key] = e
		c.evictLocked()
	}

	cl := &call[V]{done: make(chan struct{})}
	e.inflight = cl
	c.mu.Unlock()

	cl.value, cl.err = fetch(ctx)
	close(cl.done)

	c.mu.Lock()
	// The entry may have been evicted or replaced while fetching.
	if cur, ok := c.entries[key]; ok && cur.inflight == cl {
		cur.inflight = nil
		if cl.err != nil {
			if !cur.hasValue {
				c.order.Remove(cur.elem)
				delete(c.entries, key)
			}
		} else {
			cur.value = cl.value
			cur.hasValue = true
			cur.timestamp = time.Now()
			c.order.MoveToFront(cur.elem)
		}
	}
	c.mu.Unlock()

	return cl.value, cl.err
}

// Get returns the cached value for key if present and younger than ttl.
func (c *Cache[K, V]) Get(key K, ttl time.Duration) (V, bool) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasValue || time.Since(e.timestamp) >= ttl {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(e.elem)
	return e.value, true
}

// Set stores a value for key directly.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		e.elem = c.order.PushFront(key)
		c.entries[key] = e
		c.evictLocked()
	} else {
		c.order.MoveToFront(e.elem)
	}
	e.value = value
	e.hasValue = true
	e.timestamp = time.Now()
}

// Delete removes key from the cache. An in-flight fetch for the key
// still completes and its waiters still receive its result.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.order.Remove(e.elem)
		delete(c.entries, key)
	}
}

// Size returns the number of cached keys, including stale ones.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops least recently used entries past MaxEntries,
// skipping entries with an in-flight fetch.
func (c *Cache[K, V]) evictLocked() {
	for len(c.entries) > c.config.MaxEntries {
		elem := c.order.Back()
		for elem != nil {
			key := elem.Value.(K)
			if e := c.entries[key]; e.inflight == nil {
				c.order.Remove(elem)
				delete(c.entries, key)
				break
			}
			elem = elem.Prev()
		}
		if elem == nil {
			return
		}
	}
}

func waitForCall[V any](ctx context.Context, cl *call[V]) (V, error) {
	select {
	case <-cl.done:
		return cl.value, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
