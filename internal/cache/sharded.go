package cache

import (
	"hash/fnv"
	"sync"
)

// ShardCount is the number of shards in a Sharded cache. Must be a power
// of 2 for shard selection by mask.
const ShardCount = 16

const shardMask = ShardCount - 1

// DefaultShardCapacity is the per-shard capacity used when none is given.
const DefaultShardCapacity = 64

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Sharded is a Cache split into ShardCount independently locked shards, for
// keys looked up from many goroutines at once. Each shard evicts its least
// recently used entry when full.
type Sharded[K comparable, V any] struct {
	shards   [ShardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int
	counters counters
}

type shard[K comparable, V any] struct {
	mu  sync.Mutex
	lru lru[K, V]
}

// NewSharded creates a sharded cache holding up to capacity entries per
// shard. If capacity <= 0, DefaultShardCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultShardCapacity
	}
	c := &Sharded[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].lru = newLRU[K, V]()
	}
	return c
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the shard lock, so it runs once per key.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	s := &c.shards[c.hasher(key)&shardMask]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.getOrCreate(key, c.capacity, create, &c.counters)
}

// Len returns the number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += s.lru.len()
		s.mu.Unlock()
	}
	return n
}

// Stats returns cache statistics. Capacity is the total over all shards.
func (c *Sharded[K, V]) Stats() Stats {
	return c.counters.stats(c.Len(), c.capacity*ShardCount)
}
