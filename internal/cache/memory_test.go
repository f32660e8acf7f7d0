package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock returns a clock function and an advance helper.
func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(absent) = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute, Now: now})
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	advance(59 * time.Second)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	advance(2 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheCapacityEviction(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, Capacity: 2, Now: now})
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	advance(time.Second)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	advance(time.Second)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	// "a" is the oldest entry and must have been evicted.
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(a) = %v, want ErrCacheMiss", err)
	}
	if _, err := c.Get(ctx, "b"); err != nil {
		t.Errorf("Get(b): %v", err)
	}
	if _, err := c.Get(ctx, "c"); err != nil {
		t.Errorf("Get(c): %v", err)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	_ = c.Set(ctx, "menu:1:admin:in", []byte("a"), 0)
	_ = c.Set(ctx, "menu:1:anonymous:out", []byte("b"), 0)
	_ = c.Set(ctx, "menu:2:anonymous:out", []byte("c"), 0)

	if err := c.DeleteByPrefix(ctx, "menu:1:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, err := c.Get(ctx, "menu:1:admin:in"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("menu:1 entry survived prefix delete")
	}
	if _, err := c.Get(ctx, "menu:2:anonymous:out"); err != nil {
		t.Errorf("menu:2 entry lost: %v", err)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("value"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("Stats entries = %d, want 1", stats.Entries)
	}
	if stats.Bytes != 5 {
		t.Errorf("Stats bytes = %d, want 5", stats.Bytes)
	}
	want := 2.0 / 3.0
	if stats.HitRate < want-0.001 || stats.HitRate > want+0.001 {
		t.Errorf("Stats hit rate = %f, want %f", stats.HitRate, want)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	ctx := context.Background()

	_ = c.Close()
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after close = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after close = %v, want ErrCacheClosed", err)
	}
}
