package fx

import (
	"sync"
	"sync/atomic"
)

// ResourceCache is an unbounded, thread-safe de-duplication cache.
//
// Lookups take a read lock, so a lookup never observes a partially inserted
// entry. Inserts keep the first value stored for a key. Entries are only
// removed by Clear, which hands every evicted entry to the eviction
// callback after the lock has been dropped.
//
// Several caches may share one lock, see newSharedLockCache.
type ResourceCache[K comparable, V any] struct {
	mu      *sync.RWMutex
	entries map[K]V
	onEvict func(K, V)

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheStats is a snapshot of a cache's counters.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewResourceCache creates an empty cache. onEvict is called for every entry
// removed by Clear and may be nil.
func NewResourceCache[K comparable, V any](onEvict func(K, V)) *ResourceCache[K, V] {
	return newSharedLockCache(&sync.RWMutex{}, onEvict)
}

func newSharedLockCache[K comparable, V any](mu *sync.RWMutex, onEvict func(K, V)) *ResourceCache[K, V] {
	return &ResourceCache[K, V]{
		mu:      mu,
		entries: make(map[K]V),
		onEvict: onEvict,
	}
}

// Find returns the value stored for key.
func (c *ResourceCache[K, V]) Find(key K) (V, bool) {
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	return value, ok
}

// FindWith is Find, but calls retain with the value before the read lock is
// dropped. Clear cannot evict the entry before retain took its reference.
func (c *ResourceCache[K, V]) FindWith(key K, retain func(V)) (V, bool) {
	c.mu.RLock()
	value, ok := c.entries[key]
	if ok {
		retain(value)
	}
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	return value, ok
}

// Insert stores value under key unless the key is already present. It
// returns the value that is cached after the call and whether it is the one
// passed in.
func (c *ResourceCache[K, V]) Insert(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		return existing, false
	}

	c.entries[key] = value
	return value, true
}

// Clear removes every entry.
func (c *ResourceCache[K, V]) Clear() {
	c.mu.Lock()
	evicted := c.clearLocked()
	c.mu.Unlock()

	evicted()
}

// clearLocked empties the cache. The caller must hold the write lock and
// call the returned function once the lock is released.
func (c *ResourceCache[K, V]) clearLocked() func() {
	entries := c.entries
	c.entries = make(map[K]V)

	return func() {
		if c.onEvict == nil {
			return
		}

		for key, value := range entries {
			c.onEvict(key, value)
		}
	}
}

// Len returns the number of cached entries.
func (c *ResourceCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the current entry count and hit/miss counters.
func (c *ResourceCache[K, V]) Stats() CacheStats {
	return CacheStats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
