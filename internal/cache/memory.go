package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is a thread-safe in-memory Cacher. When a capacity is set,
// inserting past it evicts entries oldest-creation-time first. The clock
// is injectable so TTL and eviction behavior can be tested
// deterministically.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	defaultTTL time.Duration
	capacity   int // 0 = unlimited
	now        func() time.Time
	closed     bool

	hits   int64
	misses int64
	bytes  int64
}

type memoryEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	Capacity   int              // maximum entries (0 = unlimited)
	Now        func() time.Time // clock override for tests (nil = time.Now)
}

// NewMemoryCache creates a memory cache with the given options.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		defaultTTL: opts.DefaultTTL,
		capacity:   opts.Capacity,
		now:        now,
	}
}

// Get retrieves a value, treating expired entries as misses.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, ErrCacheMiss
	}
	if !c.now().Before(entry.expiresAt) {
		c.removeLocked(key, entry)
		c.misses++
		return nil, ErrCacheMiss
	}

	c.hits++
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value, evicting oldest entries if over capacity.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if old, ok := c.entries[key]; ok {
		c.bytes -= int64(len(old.value))
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	now := c.now()
	c.entries[key] = &memoryEntry{
		value:     valueCopy,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.bytes += int64(len(valueCopy))

	c.evictLocked()
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	if entry, ok := c.entries[key]; ok {
		c.removeLocked(key, entry)
	}
	return nil
}

// DeleteByPrefix removes all keys starting with the given prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for key, entry := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key, entry)
		}
	}
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.entries = make(map[string]*memoryEntry)
	c.bytes = 0
	return nil
}

// Close marks the cache closed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
		Bytes:   c.bytes,
		HitRate: hitRate,
	}
}

// ResetStats resets the hit/miss counters.
func (c *MemoryCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
}

// removeLocked deletes an entry and updates the byte counter. Caller
// holds the mutex.
func (c *MemoryCache) removeLocked(key string, entry *memoryEntry) {
	delete(c.entries, key)
	c.bytes -= int64(len(entry.value))
}

// evictLocked removes entries oldest-createdAt first until the cache is
// within capacity. Caller holds the mutex.
func (c *MemoryCache) evictLocked() {
	if c.capacity <= 0 {
		return
	}
	for len(c.entries) > c.capacity {
		var oldestKey string
		var oldest *memoryEntry
		for key, entry := range c.entries {
			if oldest == nil || entry.createdAt.Before(oldest.createdAt) {
				oldestKey = key
				oldest = entry
			}
		}
		c.removeLocked(oldestKey, oldest)
	}
}

// Ensure MemoryCache implements Cacher and StatsProvider.
var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
