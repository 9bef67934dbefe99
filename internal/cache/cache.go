// Package cache provides the time-bounded memoization wrapping the
// fetch-and-transform pipeline.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches the source system's data cache window.
const DefaultTTL = 600 * time.Second

// Loader produces a fresh value on cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// TTL memoizes a Loader result for a bounded duration. Concurrent misses
// collapse into a single load via singleflight, so at most one fetch is in
// flight per TTL window. A failed load caches nothing: the error propagates
// and stale data is never served past its window.
type TTL[T any] struct {
	ttl  time.Duration
	load Loader[T]
	now  func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	val       T
	ok        bool
	fetchedAt time.Time
}

// New creates a TTL cache around load. ttl <= 0 falls back to DefaultTTL.
func New[T any](ttl time.Duration, load Loader[T]) *TTL[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{ttl: ttl, load: load, now: time.Now}
}

// NewWithClock creates a TTL cache with an injected clock (used by tests).
func NewWithClock[T any](ttl time.Duration, load Loader[T], now func() time.Time) *TTL[T] {
	c := New(ttl, load)
	c.now = now
	return c
}

// Get returns the cached value while it is fresh, otherwise loads a new one
// and replaces the entry wholesale.
func (c *TTL[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	if c.ok && c.now().Sub(c.fetchedAt) < c.ttl {
		v := c.val
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		// Another waiter may have refreshed while we queued.
		c.mu.Lock()
		if c.ok && c.now().Sub(c.fetchedAt) < c.ttl {
			v := c.val
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		fresh, err := c.load(ctx)
		if err != nil {
			return *new(T), err
		}

		c.mu.Lock()
		c.val = fresh
		c.ok = true
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return *new(T), err
	}
	return v.(T), nil
}

// Invalidate drops the cached entry so the next Get loads fresh data.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.ok = false
	c.mu.Unlock()
}

// Age reports how old the cached entry is, and whether one exists.
func (c *TTL[T]) Age() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok {
		return 0, false
	}
	return c.now().Sub(c.fetchedAt), true
}
