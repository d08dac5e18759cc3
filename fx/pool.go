package fx

import (
	"sync"
	"sync/atomic"
)

// SharedResourcePool keeps at most one value per key alive. Values are
// created on demand and destroyed once the last reference to them is
// released.
type SharedResourcePool[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*poolEntry[V]

	// destroy is called after the last reference to a value is released,
	// outside of the pool lock. May be nil.
	destroy func(K, V)
}

type poolEntry[V any] struct {
	value V
	refs  int
}

// NewSharedResourcePool creates an empty pool.
func NewSharedResourcePool[K comparable, V any](destroy func(K, V)) *SharedResourcePool[K, V] {
	return &SharedResourcePool[K, V]{
		entries: make(map[K]*poolEntry[V]),
		destroy: destroy,
	}
}

// DemandCreate returns a reference to the value for key, calling create if
// no value exists yet. Concurrent calls for the same key create exactly one
// value.
func (p *SharedResourcePool[K, V]) DemandCreate(key K, create func(K) V) *PoolRef[K, V] {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		entry = &poolEntry[V]{value: create(key)}
		p.entries[key] = entry
	}

	entry.refs++

	return &PoolRef[K, V]{pool: p, key: key, value: entry.value}
}

// Len returns the number of live values.
func (p *SharedResourcePool[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Refs returns the number of live references to the value for key.
func (p *SharedResourcePool[K, V]) Refs(key K) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.entries[key]; ok {
		return entry.refs
	}

	return 0
}

func (p *SharedResourcePool[K, V]) release(key K) {
	p.mu.Lock()

	entry, ok := p.entries[key]
	if !ok {
		p.mu.Unlock()
		return
	}

	entry.refs--
	if entry.refs > 0 {
		p.mu.Unlock()
		return
	}

	delete(p.entries, key)
	p.mu.Unlock()

	if p.destroy != nil {
		p.destroy(key, entry.value)
	}
}

// PoolRef is one reference to a pooled value.
type PoolRef[K comparable, V any] struct {
	pool     *SharedResourcePool[K, V]
	key      K
	value    V
	released atomic.Bool
}

// Value returns the pooled value.
func (r *PoolRef[K, V]) Value() V {
	return r.value
}

// Key returns the key the value was created for.
func (r *PoolRef[K, V]) Key() K {
	return r.key
}

// Release drops this reference. Only the first call has an effect.
func (r *PoolRef[K, V]) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.pool.release(r.key)
	}
}
