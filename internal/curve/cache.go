package curve

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// keySeparator joins land names inside a cache key. Card names never contain it.
const keySeparator = "\x1f"

// Cache memoizes playability answers for one analysis run.
//
// Entries are keyed by spell signature and the sorted multiset of land names,
// so two copies of a land with the same name are interchangeable. There is
// no eviction; drop the Cache with the run that created it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]bool
	group   singleflight.Group

	lookups atomic.Uint64
	misses  atomic.Uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Lookups uint64 `json:"lookups"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Size    int    `json:"size"`
}

// NewCache creates an empty playability cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]bool)}
}

// GetOrCompute returns the stored answer for (signature, sortedLandNames),
// calling compute on a miss. Concurrent callers missing on the same key share
// a single compute call.
func (c *Cache) GetOrCompute(signature string, sortedLandNames []string, compute func() bool) bool {
	c.lookups.Add(1)
	key := cacheKey(signature, sortedLandNames)

	if v, ok := c.get(key); ok {
		return v
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have stored the key between our read and Do.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v := compute()
		c.misses.Add(1)

		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return v.(bool)
}

func (c *Cache) get(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	lookups := c.lookups.Load()
	misses := c.misses.Load()
	return CacheStats{
		Lookups: lookups,
		Hits:    lookups - misses,
		Misses:  misses,
		Size:    c.Len(),
	}
}

// SortedNames writes the names of lands into dst, sorted, and returns it.
// Pass a reused dst[:0] to avoid allocating per subset.
func SortedNames(dst []string, lands []Land) []string {
	for _, l := range lands {
		dst = append(dst, l.Name)
	}
	sort.Strings(dst)
	return dst
}

func cacheKey(signature string, sortedLandNames []string) string {
	size := len(signature) + 1
	for _, n := range sortedLandNames {
		size += len(n) + 1
	}

	var b strings.Builder
	b.Grow(size)
	b.WriteString(signature)
	b.WriteByte('|')
	for i, n := range sortedLandNames {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		b.WriteString(n)
	}
	return b.String()
}
