package httpapi

import (
	"sync"
	"time"
)

// summaryCache holds one dashboard summary per user with a TTL. Writes
// to a user's expenses invalidate that user's entry, so the size is
// bounded by the user population and no LRU eviction is needed.
type summaryCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]summaryEntry
}

type summaryEntry struct {
	payload   summaryPayload
	expiresAt time.Time
}

func newSummaryCache(ttl time.Duration) *summaryCache {
	return &summaryCache{ttl: ttl, items: make(map[string]summaryEntry)}
}

func (c *summaryCache) get(userID string) (summaryPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[userID]
	if !ok {
		return summaryPayload{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.items, userID)
		return summaryPayload{}, false
	}
	return entry.payload, true
}

func (c *summaryCache) set(userID string, payload summaryPayload) {
	c.mu.Lock()
	c.items[userID] = summaryEntry{payload: payload, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *summaryCache) invalidate(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *summaryCache) cleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, id)
			removed++
		}
	}
	return removed
}
