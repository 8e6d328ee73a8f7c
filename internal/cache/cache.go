// Package cache provides a TTL cache for fetched activity records so the
// dashboard and report paths do not hammer the record store on every request.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	records []map[string]any
	expires time.Time
}

// RecordCache caches raw record pages keyed by source app
type RecordCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRecordCache creates an empty cache
func NewRecordCache() *RecordCache {
	return &RecordCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached records for a key if present and not expired
func (c *RecordCache) Get(key string) ([]map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.records, true
}

// Set stores records under a key with the given TTL
func (c *RecordCache) Set(key string, records []map[string]any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		records: records,
		expires: time.Now().Add(ttl),
	}
}

// Invalidate drops a single key
func (c *RecordCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all cached entries
func (c *RecordCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
