package fitness

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes fitness values by genes hash in a fixed-capacity LRU. It is
// safe for concurrent use by the parallel runner; under a racing double miss
// both workers compute and the last write wins, which is benign because
// fitness functions are deterministic.
type Cache struct {
	lru    *lru.Cache[uint64, Value]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache builds a cache with the given capacity. Capacity must be
// positive; the cache is only useful when the genotype has genes hashing
// enabled.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("fitness cache capacity must be positive, got %d", capacity)
	}
	inner, err := lru.New[uint64, Value](capacity)
	if err != nil {
		return nil, fmt.Errorf("building fitness cache: %w", err)
	}
	return &Cache{lru: inner}, nil
}

// Read looks up a fitness value without promoting the entry, and counts the
// hit or miss.
func (c *Cache) Read(genesHash uint64) (Value, bool) {
	v, ok := c.lru.Peek(genesHash)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Write stores a computed fitness value, evicting the least recently used
// entry when full.
func (c *Cache) Write(genesHash uint64, v Value) {
	c.lru.Add(genesHash, v)
}

// Counters returns the cumulative hit and miss counts, for reporter
// diagnostics.
func (c *Cache) Counters() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached scores.
func (c *Cache) Len() int {
	return c.lru.Len()
}
