package cache

import (
	"strings"
	"sync"
	"time"
)

// entry is a cached value with expiration
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a simple in-memory cache with TTL. It backs the per-tenant
// dashboard results; entries are invalidated by prefix whenever a tenant's
// data changes.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*entry
}

// New creates a new cache
func New() *Cache {
	return &Cache{items: map[string]*entry{}}
}

// Set stores a value in the cache with a given TTL
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get retrieves a value from the cache if it hasn't expired
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Delete removes a key from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]*entry{}
}

// Invalidate removes all items whose key starts with prefix
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}
