package cache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a cached render result. Version carries the owning menu's
// last-modified timestamp; a version mismatch on lookup is a miss.
type Entry struct {
	MenuID    int64     `json:"menu_id"`
	Key       string    `json:"key"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Version   time.Time `json:"version"`
	Hits      int64     `json:"hits"`
	Size      int64     `json:"size"`
}

// RenderCache stores resolved, filtered and rendered menu payloads keyed
// by viewer context. Entries expire by TTL, are invalidated when the
// owning menu's version changes, and are evicted oldest-creation-time
// first under capacity pressure. State is local to one process.
type RenderCache struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	ttl      time.Duration
	capacity int
	now      func() time.Time

	hits         int64
	misses       int64
	computeTotal time.Duration
	computeCount int64

	group singleflight.Group
}

// RenderStats extends the shared counters with compute latency.
type RenderStats struct {
	Stats
	AvgComputeMs float64 `json:"avg_compute_ms"`
}

// NewRenderCache creates a render cache. A nil clock means time.Now;
// capacity 0 means unlimited.
func NewRenderCache(ttl time.Duration, capacity int, now func() time.Time) *RenderCache {
	if now == nil {
		now = time.Now
	}
	return &RenderCache{
		entries:  make(map[string]*Entry),
		ttl:      ttl,
		capacity: capacity,
		now:      now,
	}
}

// Get returns the payload for key if the entry is present, unexpired and
// version-current. Anything else is a miss.
func (c *RenderCache) Get(key string, version time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.now().Before(entry.ExpiresAt) || !entry.Version.Equal(version) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	entry.Hits++
	c.hits++
	return entry.Payload, true
}

// peek reports a live payload for key without updating the hit and miss
// counters.
func (c *RenderCache) peek(key string, version time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.ExpiresAt) || !entry.Version.Equal(version) {
		return nil, false
	}
	return entry.Payload, true
}

// Put stores a render result stamped with the menu's current version.
func (c *RenderCache) Put(key string, menuID int64, payload []byte, version time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = &Entry{
		MenuID:    menuID,
		Key:       key,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
		Version:   version,
		Size:      int64(len(payload)),
	}
	c.evictLocked()
}

// GetOrCompute returns the cached payload or computes, stores and
// returns it. Concurrent callers for the same cold key share a single
// computation. Compute errors are returned uncached.
func (c *RenderCache) GetOrCompute(key string, menuID int64, version time.Time, compute func() ([]byte, error)) ([]byte, error) {
	if payload, ok := c.Get(key, version); ok {
		return payload, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check: another caller may have populated the key while we
		// waited on the flight group. The outer Get already counted this
		// lookup, so the re-check must not touch the counters again.
		if payload, ok := c.peek(key, version); ok {
			return payload, nil
		}

		start := c.now()
		payload, err := compute()
		if err != nil {
			return nil, err
		}
		c.recordCompute(c.now().Sub(start))
		c.Put(key, menuID, payload, version)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Invalidate removes all entries for a menu and returns the count
// removed. Called by tree mutations and exposed for manual refresh.
func (c *RenderCache) Invalidate(menuID int64) int {
	prefix := MenuPrefix(menuID)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.MenuID == menuID || strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Stats returns a snapshot of the cache counters.
func (c *RenderCache) Stats() RenderStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bytes int64
	for _, entry := range c.entries {
		bytes += entry.Size
	}

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	var avgCompute float64
	if c.computeCount > 0 {
		avgCompute = float64(c.computeTotal.Milliseconds()) / float64(c.computeCount)
	}

	return RenderStats{
		Stats: Stats{
			Hits:    c.hits,
			Misses:  c.misses,
			Entries: len(c.entries),
			Bytes:   bytes,
			HitRate: hitRate,
		},
		AvgComputeMs: avgCompute,
	}
}

func (c *RenderCache) recordCompute(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.computeTotal += d
	c.computeCount++
}

// evictLocked removes entries oldest-createdAt first until within
// capacity. Caller holds the mutex.
func (c *RenderCache) evictLocked() {
	if c.capacity <= 0 {
		return
	}
	for len(c.entries) > c.capacity {
		var oldestKey string
		var oldest *Entry
		for key, entry := range c.entries {
			if oldest == nil || entry.CreatedAt.Before(oldest.CreatedAt) {
				oldestKey = key
				oldest = entry
			}
		}
		delete(c.entries, oldestKey)
	}
}
