package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sellerhub/navcore/internal/model"
)

func TestContextKey(t *testing.T) {
	uid := int64(7)
	tests := []struct {
		name   string
		ctx    Context
		menuID int64
		want   string
	}{
		{
			name:   "anonymous",
			ctx:    NewContext(model.Viewer{}),
			menuID: 1,
			want:   "menu:1:anonymous:out",
		},
		{
			name:   "logged in seller",
			ctx:    NewContext(model.Viewer{UserID: &uid, Role: "seller", LoggedIn: true}),
			menuID: 42,
			want:   "menu:42:seller:in",
		},
		{
			name:   "widget context with params",
			ctx:    Context{Role: "admin", LoggedIn: true, Widget: "breadcrumb", Params: "w3:p9:mobile"},
			menuID: 5,
			want:   "menu:5:admin:in:breadcrumb:w3:p9:mobile",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.Key(tt.menuID); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderCacheVersionMismatch(t *testing.T) {
	now, _ := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Minute, 0, now)

	v1 := time.Unix(500, 0)
	v2 := time.Unix(600, 0)
	c.Put("menu:1:anonymous:out", 1, []byte("old"), v1)

	if _, ok := c.Get("menu:1:anonymous:out", v1); !ok {
		t.Fatal("expected hit for matching version")
	}
	// The menu changed; the stale version must read as a miss.
	if _, ok := c.Get("menu:1:anonymous:out", v2); ok {
		t.Error("expected miss for stale version")
	}
}

func TestRenderCacheTTL(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Minute, 0, now)
	v := time.Unix(500, 0)

	c.Put("k", 1, []byte("p"), v)
	advance(61 * time.Second)
	if _, ok := c.Get("k", v); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestRenderCacheEvictionOldestFirst(t *testing.T) {
	now, advance := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Hour, 2, now)
	v := time.Unix(500, 0)

	c.Put("a", 1, []byte("1"), v)
	advance(time.Second)
	c.Put("b", 2, []byte("2"), v)
	advance(time.Second)
	c.Put("c", 3, []byte("3"), v)

	if _, ok := c.Get("a", v); ok {
		t.Error("oldest entry a should have been evicted")
	}
	if _, ok := c.Get("b", v); !ok {
		t.Error("entry b should survive")
	}
	if _, ok := c.Get("c", v); !ok {
		t.Error("entry c should survive")
	}
}

func TestRenderCacheInvalidate(t *testing.T) {
	now, _ := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Hour, 0, now)
	v := time.Unix(500, 0)

	c.Put("menu:1:anonymous:out", 1, []byte("a"), v)
	c.Put("menu:1:seller:in", 1, []byte("b"), v)
	c.Put("menu:2:anonymous:out", 2, []byte("c"), v)

	if removed := c.Invalidate(1); removed != 2 {
		t.Errorf("Invalidate removed %d entries, want 2", removed)
	}
	if _, ok := c.Get("menu:2:anonymous:out", v); !ok {
		t.Error("unrelated menu entry should survive invalidation")
	}
}

func TestRenderCacheGetOrCompute(t *testing.T) {
	now, _ := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Hour, 0, now)
	v := time.Unix(500, 0)

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute("k", 1, v, compute)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if string(got) != "payload" {
			t.Fatalf("GetOrCompute = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("stats hits = %d, want 2", stats.Hits)
	}
	// The cold fill is one lookup and must count exactly one miss, even
	// though the flight group re-checks the key before computing.
	if stats.Misses != 1 {
		t.Errorf("stats misses = %d, want 1", stats.Misses)
	}
	if want := 2.0 / 3.0; stats.HitRate != want {
		t.Errorf("stats hit rate = %v, want %v", stats.HitRate, want)
	}
}

func TestRenderCacheComputeErrorNotCached(t *testing.T) {
	now, _ := fakeClock(time.Unix(1000, 0))
	c := NewRenderCache(time.Hour, 0, now)
	v := time.Unix(500, 0)

	boom := errors.New("boom")
	_, err := c.GetOrCompute("k", 1, v, func() ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute error = %v, want boom", err)
	}

	// The failure must not leave a cached entry behind.
	got, err := c.GetOrCompute("k", 1, v, func() ([]byte, error) { return []byte("ok"), nil })
	if err != nil || string(got) != "ok" {
		t.Fatalf("GetOrCompute after error = %q, %v", got, err)
	}
}

func TestRenderCacheSingleflight(t *testing.T) {
	c := NewRenderCache(time.Hour, 0, nil)
	v := time.Unix(500, 0)

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompute("k", 1, v, func() ([]byte, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				<-release
				return []byte("p"), nil
			})
		}()
	}

	// Give the goroutines time to pile onto the flight group.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("compute ran %d times under concurrency, want 1", calls)
	}
}
