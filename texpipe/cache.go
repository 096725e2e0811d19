package texpipe

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

var defaultCache = NewCache()

// Default returns the process-wide cache shared by pipelines that are not given one.
func Default() *Cache { return defaultCache }

// Cache is a content addressed store of compositing results plus the set of
// computations in flight. The first caller for a key starts the work and every
// concurrent caller for the same key shares its result. Safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	results  map[string]string
	inflight singleflight.Group

	hits         atomic.Uint64
	computations atomic.Uint64
	shared       atomic.Uint64
}

// NewCache returns an empty cache, isolated from [Default].
func NewCache() *Cache {
	return &Cache{results: make(map[string]string)}
}

func (c *Cache) lookup(key string) (string, bool) {
	c.mu.RLock()
	id, ok := c.results[key]
	c.mu.RUnlock()
	return id, ok
}

func (c *Cache) store(key, id string) {
	c.mu.Lock()
	c.results[key] = id
	c.mu.Unlock()
}

// Len returns the amount of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Reset drops all cached results and statistics. In-flight work is not affected.
func (c *Cache) Reset() {
	c.mu.Lock()
	clear(c.results)
	c.mu.Unlock()
	c.hits.Store(0)
	c.computations.Store(0)
	c.shared.Store(0)
}

// Hits returns how many requests were served from cached results.
func (c *Cache) Hits() uint64 { return c.hits.Load() }

// Computations returns how many times pixel compositing was started.
func (c *Cache) Computations() uint64 { return c.computations.Load() }

// Shared returns how many requests received a result computed for a concurrent caller,
// including the caller that started the work.
func (c *Cache) Shared() uint64 { return c.shared.Load() }
