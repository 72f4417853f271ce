package recurrence

import (
	"sync"
	"sync/atomic"
	"time"
)

// cacheEntry holds a parsed schedule. Schedules never change once inserted,
// so readers share them without copying.
type cacheEntry struct {
	schedule   *Schedule
	accessedAt atomic.Int64
}

// ScheduleCache memoizes Parse per normalized expression.
type ScheduleCache struct {
	entries    map[string]*cacheEntry
	mutex      sync.RWMutex
	maxEntries int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheConfig holds configuration for the schedule cache.
type CacheConfig struct {
	MaxEntries int // entries kept before the least recently used are evicted
}

// DefaultCacheConfig provides defaults for schedule caching.
var DefaultCacheConfig = CacheConfig{
	MaxEntries: 256,
}

// CacheStats provides information about cache usage.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewScheduleCache creates a cache with the given configuration.
func NewScheduleCache(config CacheConfig) *ScheduleCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	return &ScheduleCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: config.MaxEntries,
	}
}

// Get returns the schedule cached for key.
func (c *ScheduleCache) Get(key string) (*Schedule, bool) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry.accessedAt.Store(time.Now().UnixNano())
	c.hits.Add(1)
	return entry.schedule, true
}

// Set stores a schedule. An existing entry for key is kept, since both were
// parsed from the same text.
func (c *ScheduleCache) Set(key string, s *Schedule) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	entry := &cacheEntry{schedule: s}
	entry.accessedAt.Store(time.Now().UnixNano())
	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.evict()
	}
}

// evict drops least recently accessed entries until the cache fits.
// Callers hold the write lock.
func (c *ScheduleCache) evict() {
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest int64
		for key, entry := range c.entries {
			at := entry.accessedAt.Load()
			if oldestKey == "" || at < oldest {
				oldestKey, oldest = key, at
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Stats returns cache statistics.
func (c *ScheduleCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
