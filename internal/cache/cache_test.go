package cache

import (
	"sync"
	"testing"
)

func TestCacheGetOrCreateOnce(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() string {
		calls++
		return "v"
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.GetOrCreate(4, create); got != "v" {
				t.Errorf("GetOrCreate = %q", got)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	st := c.Stats()
	if st.Hits != 15 || st.Misses != 1 || st.Len != 1 {
		t.Errorf("stats = %+v, want 15 hits, 1 miss, 1 entry", st)
	}
	if st.HitRate != 15.0/16 {
		t.Errorf("HitRate = %v", st.HitRate)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2)
	created := map[int]int{}
	get := func(k int) int {
		return c.GetOrCreate(k, func() int {
			created[k]++
			return k * 10
		})
	}

	get(1)
	get(2)
	get(1) // 2 is now least recently used
	get(3)

	if get(1) != 10 || created[1] != 1 {
		t.Errorf("key 1 recreated %d times", created[1])
	}
	get(2)
	if created[2] != 2 {
		t.Errorf("key 2 created %d times, want 2 after eviction", created[2])
	}

	st := c.Stats()
	if st.Len != 2 || st.Capacity != 2 {
		t.Errorf("Len/Capacity = %d/%d, want 2/2", st.Len, st.Capacity)
	}
	if st.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", st.Evictions)
	}
}

func TestCacheUnlimited(t *testing.T) {
	c := New[int, int](0)
	for i := range 1000 {
		c.GetOrCreate(i, func() int { return i })
	}
	st := c.Stats()
	if st.Len != 1000 || st.Evictions != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCacheStatsEmpty(t *testing.T) {
	st := New[string, int](8).Stats()
	if st != (Stats{Capacity: 8}) {
		t.Errorf("stats = %+v", st)
	}
}
