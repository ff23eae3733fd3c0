package syslog

import (
	"sync"
	"sync/atomic"
	"time"
)

// TTLCache lazily computes a single value and shares it across goroutines
// until its time-to-live expires. It is used to avoid a DNS lookup on every
// send, and to avoid asking the OS for the local hostname on every encode.
//
// Fresh reads are lock-free. A stale read takes the per-instance lock,
// re-checks freshness (another caller may have refreshed while this one
// waited), and only then invokes the factory. The cached value is never
// mutated in place; a refresh publishes a new entry.
//
// A factory error is returned to the caller of Get, wrapped as a
// KindCacheRefreshFailure *Error, and the previously cached entry, if any,
// stays in place but is not served once stale.
type TTLCache[T any] struct {
	factory func() (T, error)
	ttl     time.Duration
	expires bool

	mu    sync.Mutex
	entry atomic.Pointer[cachedValue[T]]

	// swapped out in tests
	now func() time.Time
}

type cachedValue[T any] struct {
	value      T
	computedAt time.Time
}

// NewTTLCache returns a cache that recomputes its value with factory at most
// once per ttl window. A ttl <= 0 means every Get refreshes.
func NewTTLCache[T any](ttl time.Duration, factory func() (T, error)) *TTLCache[T] {
	return &TTLCache[T]{
		factory: factory,
		ttl:     ttl,
		expires: true,
		now:     time.Now,
	}
}

// NewPermanentCache returns a cache whose value, once computed successfully,
// never expires unless Invalidate is called.
func NewPermanentCache[T any](factory func() (T, error)) *TTLCache[T] {
	c := NewTTLCache(0, factory)
	c.expires = false
	return c
}

// Get returns the cached value if it is fresh, and otherwise refreshes it.
func (c *TTLCache[T]) Get() (T, error) {
	if e := c.entry.Load(); c.fresh(e) {
		return e.value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// re-check; a concurrent caller may have refreshed while we waited
	if e := c.entry.Load(); c.fresh(e) {
		return e.value, nil
	}

	v, err := c.factory()
	if err != nil {
		var zero T
		return zero, &Error{Kind: KindCacheRefreshFailure, Op: "TTLCache.Get", Err: err}
	}
	c.entry.Store(&cachedValue[T]{value: v, computedAt: c.now()})
	return v, nil
}

// Invalidate discards the cached value, so the next Get calls the factory.
func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	c.entry.Store(nil)
	c.mu.Unlock()
}

// TTL returns the configured time-to-live, or 0 for a permanent cache.
func (c *TTLCache[T]) TTL() time.Duration {
	if !c.expires {
		return 0
	}
	return c.ttl
}

func (c *TTLCache[T]) fresh(e *cachedValue[T]) bool {
	if e == nil {
		return false
	}
	if !c.expires {
		return true
	}
	return c.now().Sub(e.computedAt) < c.ttl
}
