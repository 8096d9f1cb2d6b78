package leads

import (
	"sync"
	"time"
)

const (
	entryTTL   = 24 * time.Hour
	maxEntries = 1000
)

// Cache is a bounded, time-expiring memo of recently presented leads, keyed
// by lead ID. Action handlers receive only an ID from the callback payload
// and use the cache to recover the lead's display name without a second CRM
// round-trip. The CRM stays authoritative; a miss is always a valid outcome.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	lead     Lead
	storedAt time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Put inserts or refreshes a lead. When at capacity, expired entries are
// pruned first and the oldest entry is evicted if needed.
func (c *Cache) Put(lead Lead) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()

	if _, exists := c.entries[lead.ID]; !exists && len(c.entries) >= maxEntries {
		c.evictOldestLocked()
	}

	c.entries[lead.ID] = cacheEntry{lead: lead, storedAt: c.now()}
}

// Get returns the cached lead for the given ID. Expired entries miss.
func (c *Cache) Get(id string) (Lead, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return Lead{}, false
	}
	if c.now().Sub(e.storedAt) > entryTTL {
		delete(c.entries, id)
		return Lead{}, false
	}
	return e.lead, true
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()
	return len(c.entries)
}

// pruneLocked removes expired entries. Must be called with mu held.
func (c *Cache) pruneLocked() {
	now := c.now()
	for id, e := range c.entries {
		if now.Sub(e.storedAt) > entryTTL {
			delete(c.entries, id)
		}
	}
}

// evictOldestLocked drops the entry with the oldest storedAt. Must be called
// with mu held.
func (c *Cache) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, e := range c.entries {
		if oldestID == "" || e.storedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = e.storedAt
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}
