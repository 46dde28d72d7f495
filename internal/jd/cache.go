package jd

import (
	"container/list"
	"sync"
)

// Cache is a bounded in-memory hash → Schema map. Inserts under identical
// keys are idempotent; when the bound is reached the oldest insertion is
// evicted. The cache is an explicit object owned by the orchestrator, not a
// package-level singleton, so tests and tenants do not leak into each other.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	hash   string
	schema Schema
}

// DefaultCacheSize bounds the process-wide JD cache. Volume is low (a few
// postings per day), so a small bound is plenty.
const DefaultCacheSize = 256

// NewCache creates a cache holding at most max entries. A non-positive max
// falls back to DefaultCacheSize.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Put stores a schema under its hash. Re-inserting an existing hash is a
// no-op (identical JD text always maps to an identical schema).
func (c *Cache) Put(schema Schema) {
	hash := schema.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[hash]; ok {
		return
	}
	if c.order.Len() >= c.max {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(cacheEntry).hash)
		}
	}
	c.entries[hash] = c.order.PushBack(cacheEntry{hash: hash, schema: schema})
}

// Get returns the cached schema for a hash, if present.
func (c *Cache) Get(hash string) (Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[hash]
	if !ok {
		return Schema{}, false
	}
	return elem.Value.(cacheEntry).schema, true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
