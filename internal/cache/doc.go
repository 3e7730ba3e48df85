// Package cache memoizes expensive per-key results for the executors.
//
// [Cache] holds compiled shader code keyed by (shader, sample count). The
// key set is tiny, so eviction only bounds growth when a host cycles through
// many sample counts.
//
//	c := cache.New[string, []uint32](32)
//	code := c.GetOrCreate("rectangle", compile)
//
// [Sharded] spreads entries over independently locked shards for hot
// lookups from many goroutines, such as the text runs laid out again every
// frame.
//
// Both evict the least recently used entry once full and report hits,
// misses and evictions through [Stats].
package cache
