package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Cache memoizes values by key with least-recently-used eviction. Values are
// produced on first lookup by GetOrCreate and never replaced.
//
// Cache is safe for concurrent use and must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	lru      lru[K, V]
	capacity int
	counters counters
}

// New creates a cache holding up to capacity entries. A capacity of 0 means
// unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{lru: newLRU[K, V](), capacity: capacity}
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs under the cache lock, so it runs once per key.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.getOrCreate(key, c.capacity, create, &c.counters)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	n := c.lru.len()
	c.mu.Unlock()
	return c.counters.stats(n, c.capacity)
}

// lru is an unlocked least-recently-used map. The front of order is the
// most recently used entry.
type lru[K comparable, V any] struct {
	entries map[K]*list.Element
	order   list.List
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any]() lru[K, V] {
	return lru[K, V]{entries: make(map[K]*list.Element)}
}

func (l *lru[K, V]) len() int { return len(l.entries) }

// getOrCreate looks key up, creating and inserting it on a miss. Inserting
// into a full map evicts the least recently used entries first. Capacity 0
// never evicts.
func (l *lru[K, V]) getOrCreate(key K, capacity int, create func() V, ctr *counters) V {
	if el, ok := l.entries[key]; ok {
		l.order.MoveToFront(el)
		ctr.hits.Add(1)
		return el.Value.(*lruEntry[K, V]).value
	}
	ctr.misses.Add(1)

	value := create()
	for capacity > 0 && l.order.Len() >= capacity {
		oldest := l.order.Back()
		l.order.Remove(oldest)
		delete(l.entries, oldest.Value.(*lruEntry[K, V]).key)
		ctr.evictions.Add(1)
	}
	l.entries[key] = l.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	return value
}

type counters struct {
	hits, misses, evictions atomic.Uint64
}

func (c *counters) stats(n, capacity int) Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	st := Stats{
		Len:       n,
		Capacity:  capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
	}
	if total := hits + misses; total > 0 {
		st.HitRate = float64(hits) / float64(total)
	}
	return st
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit, 0 when unlimited.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 before the first lookup.
	HitRate float64
	// Evictions is the number of entries removed to stay within Capacity.
	Evictions uint64
}
