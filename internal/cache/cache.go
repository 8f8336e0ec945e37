// Package cache provides the client-side read cache.
// This is NOT a source of truth - it exists so repeated reads within a short
// window (one dashboard render, one lesson page) don't hammer the backend.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cached value is served without a refetch.
const DefaultTTL = 5 * time.Minute

type entry struct {
	data      any
	timestamp time.Time
}

// Cache is a TTL-bounded in-memory map keyed by logical resource name.
// Keys are namespaced by resource family (e.g. "history_<student>",
// "progress_<student>_<range>") so substring invalidation stays targeted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	// now is replaceable in tests to age entries without sleeping.
	now func() time.Time
}

// New creates an empty cache with the default TTL.
func New() *Cache {
	return NewWithTTL(DefaultTTL)
}

// NewWithTTL creates an empty cache with a custom TTL.
func NewWithTTL(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and within TTL.
// It never fetches; deciding what to do on a miss is the caller's job.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.timestamp) >= c.ttl {
		return nil, false
	}
	return e.data, true
}

// Set stores data under key, unconditionally overwriting.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, timestamp: c.now()}
}

// Invalidate deletes every key containing pattern as a substring and
// returns the number of entries removed. Mutations call this so subsequent
// reads of the affected resource family refetch fresh state.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries. Used when the data source changes
// (URL reconfiguration, demo mode toggling).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
