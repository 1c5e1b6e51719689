// Package cache provides a bounded in-memory TTL cache for request-scoped
// snapshots. Entries are immutable value snapshots: concurrent writers for
// the same key race with last-write-wins semantics, which is acceptable
// because every writer stores an equivalent snapshot.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
	storedAt  time.Time
}

// Cache is a bounded TTL cache keyed by string.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// New creates a cache bounded to maxEntries entries. A non-positive bound
// defaults to 128.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value for key, or ok=false when absent or expired.
// Expired entries are removed on read.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. When the cache is full the oldest
// entry is evicted first.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked(now)
	}
	c.entries[key] = entry{
		value:     value,
		expiresAt: now.Add(ttl),
		storedAt:  now,
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked drops expired entries, then the oldest stored entry if
// the cache is still full. Caller must hold the mutex.
func (c *Cache) evictOldestLocked(now time.Time) {
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
