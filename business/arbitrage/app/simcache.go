package app

import (
	"sync"

	"github.com/fd1az/solarb/business/arbitrage/domain"
)

type simKey struct {
	path   string
	bucket uint64
}

// SimCache memoizes simulation results within a single snapshot generation.
// Observing a newer generation (on read or write) drops everything from
// before it, so stale results are never served; results from an older
// generation than the cache has seen are ignored.
type SimCache struct {
	mu         sync.Mutex
	generation uint64
	entries    map[simKey]domain.SimulationResult
	bucket     uint64
}

// NewSimCache creates a cache. amountBucket groups nearby input amounts into
// one key; zero means exact-amount keys.
func NewSimCache(amountBucket uint64) *SimCache {
	return &SimCache{
		entries: make(map[simKey]domain.SimulationResult),
		bucket:  amountBucket,
	}
}

func (c *SimCache) keyOf(pathKey string, amountIn uint64) simKey {
	if c.bucket == 0 {
		return simKey{path: pathKey, bucket: amountIn}
	}
	return simKey{path: pathKey, bucket: amountIn / c.bucket}
}

// Get returns the cached result for the path and amount at generation.
func (c *SimCache) Get(pathKey string, amountIn, generation uint64) (domain.SimulationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observe(generation)
	if generation < c.generation {
		return domain.SimulationResult{}, false
	}

	res, ok := c.entries[c.keyOf(pathKey, amountIn)]
	return res, ok
}

// Put stores a result under its own generation. Writes from an already
// superseded generation are dropped; among concurrent same-generation writes
// the last one wins.
func (c *SimCache) Put(pathKey string, amountIn uint64, res domain.SimulationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observe(res.Generation)
	if res.Generation < c.generation {
		return
	}
	c.entries[c.keyOf(pathKey, amountIn)] = res
}

// Len returns the number of live entries.
func (c *SimCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// observe advances the cache to generation, discarding older entries. Called
// with mu held.
func (c *SimCache) observe(generation uint64) {
	if generation > c.generation {
		c.generation = generation
		c.entries = make(map[simKey]domain.SimulationResult)
	}
}
