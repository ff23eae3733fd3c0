package syslog

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for TTLCache.now.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newCountingCache(ttl time.Duration, clock *fakeClock) (*TTLCache[int], *atomic.Int32) {
	calls := new(atomic.Int32)
	c := NewTTLCache(ttl, func() (int, error) {
		return int(calls.Add(1)), nil
	})
	c.now = clock.now
	return c, calls
}

func TestTTLCache_RefreshesAfterTTL(t *testing.T) {
	clock := &fakeClock{t: testTime}
	c, calls := newCountingCache(10*time.Second, clock)

	v, err := c.Get()
	if err != nil || v != 1 {
		t.Fatalf("first Get: %d, %v", v, err)
	}

	clock.advance(9 * time.Second)
	if v, _ := c.Get(); v != 1 {
		t.Fatalf("expected cached value 1 within TTL, got %d", v)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 factory call, got %d", calls.Load())
	}

	clock.advance(time.Second)
	if v, _ := c.Get(); v != 2 {
		t.Fatalf("expected refreshed value 2 at TTL, got %d", v)
	}
}

func TestTTLCache_ConcurrentGetCallsFactoryOnce(t *testing.T) {
	clock := &fakeClock{t: testTime}
	c, calls := newCountingCache(time.Minute, clock)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Get(); err != nil || v != 1 {
				t.Errorf("Get: %d, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 factory call, got %d", calls.Load())
	}
}

func TestTTLCache_NonPositiveTTLAlwaysRefreshes(t *testing.T) {
	clock := &fakeClock{t: testTime}
	c, calls := newCountingCache(-1, clock)
	for i := 1; i <= 3; i++ {
		if v, _ := c.Get(); v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 factory calls, got %d", calls.Load())
	}
}

func TestTTLCache_FactoryError(t *testing.T) {
	clock := &fakeClock{t: testTime}
	fail := errors.New("lookup failed")
	var failing atomic.Bool

	c := NewTTLCache(time.Second, func() (string, error) {
		if failing.Load() {
			return "", fail
		}
		return "ok", nil
	})
	c.now = clock.now

	if v, err := c.Get(); err != nil || v != "ok" {
		t.Fatalf("first Get: %q, %v", v, err)
	}

	failing.Store(true)
	clock.advance(2 * time.Second)

	_, err := c.Get()
	if !errors.Is(err, ErrCacheRefreshFailure) {
		t.Fatalf("expected ErrCacheRefreshFailure, got %v", err)
	}
	if !errors.Is(err, fail) {
		t.Fatalf("expected the factory error to be wrapped, got %v", err)
	}

	// the failure is not cached
	failing.Store(false)
	if v, err := c.Get(); err != nil || v != "ok" {
		t.Fatalf("Get after recovery: %q, %v", v, err)
	}
}

func TestTTLCache_Invalidate(t *testing.T) {
	clock := &fakeClock{t: testTime}
	c, calls := newCountingCache(time.Hour, clock)

	c.Get()
	c.Invalidate()
	if v, _ := c.Get(); v != 2 {
		t.Fatalf("expected refresh after Invalidate, got %d", v)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 factory calls, got %d", calls.Load())
	}
}

func TestPermanentCache(t *testing.T) {
	clock := &fakeClock{t: testTime}
	calls := 0
	c := NewPermanentCache(func() (int, error) {
		calls++
		return calls, nil
	})
	c.now = clock.now

	c.Get()
	clock.advance(24 * time.Hour)
	if v, _ := c.Get(); v != 1 {
		t.Fatalf("expected permanent value 1, got %d", v)
	}
	if c.TTL() != 0 {
		t.Fatalf("expected TTL 0 for a permanent cache, got %v", c.TTL())
	}
}
