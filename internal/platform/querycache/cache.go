// Package querycache is a bounded, generic TTL key/value cache for
// aggregation results.
//
// Eviction on overflow removes the oldest-inserted key, not the least
// recently used one; the simpler policy is deliberate and part of the
// documented behavior. The cache never invalidates itself on ledger writes:
// callers own invalidation (by client id) and a writer that forgets to
// invalidate can serve stale reports. That responsibility sits with the
// integration layer, not here.
package querycache

import (
	"strings"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a caller-owned TTL cache. The zero value is not usable; construct
// with New. Safe for use from multiple goroutines.
type Cache[V any] struct {
	mu    sync.Mutex
	max   int
	items map[string]item[V]
	order []string
	now   func() time.Time
}

// DefaultMaxEntries bounds a cache when the caller passes a non-positive max.
const DefaultMaxEntries = 256

// New constructs a cache holding at most max entries.
func New[V any](max int) *Cache[V] {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache[V]{
		max:   max,
		items: make(map[string]item[V]),
		now:   time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (c *Cache[V]) WithNow(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Get returns the cached value when present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(it.expiresAt) {
		c.removeLocked(key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores a value with the given TTL. Updating an existing key keeps its
// original insertion position.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists {
		if len(c.items) >= c.max {
			c.removeLocked(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.items[key] = item[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate removes every key containing pattern as a substring; an empty
// pattern clears the cache. Returns the number of keys removed.
func (c *Cache[V]) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pattern == "" {
		n := len(c.items)
		c.items = make(map[string]item[V])
		c.order = c.order[:0]
		return n
	}
	n := 0
	for _, key := range append([]string(nil), c.order...) {
		if strings.Contains(key, pattern) {
			c.removeLocked(key)
			n++
		}
	}
	return n
}

// Len reports the number of cached entries, including any not yet swept
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) removeLocked(key string) {
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
