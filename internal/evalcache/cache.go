// Package evalcache caches primary engine evaluations keyed by normalized
// FEN, so transpositions and repeated analysis runs skip engine requests.
package evalcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/gamereview/internal/fen"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/uci"
)

// DefaultCapacity holds roughly a few hundred games of positions.
const DefaultCapacity = 50000

// Cache is an LRU cache of evaluations. Safe for concurrent use.
type Cache struct {
	cache *lru.Cache[string, []uci.Evaluation]
	stats stats.Collector
}

// New creates a cache with the given capacity. A capacity of zero or less
// uses DefaultCapacity.
func New(capacity int, collector stats.Collector) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	c, err := lru.New[string, []uci.Evaluation](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c, stats: collector}, nil
}

// Get returns the cached evaluations for a position, if present.
func (c *Cache) Get(fenStr string) ([]uci.Evaluation, bool) {
	evals, ok := c.cache.Get(key(fenStr))
	if ok {
		c.stats.IncCounter(stats.MetricCacheHits, 1)
	} else {
		c.stats.IncCounter(stats.MetricCacheMisses, 1)
	}
	return evals, ok
}

// Put stores the evaluations for a position.
func (c *Cache) Put(fenStr string, evals []uci.Evaluation) {
	c.cache.Add(key(fenStr), evals)
}

// Len returns the number of cached positions.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// key normalizes a FEN for use as a cache key; positions differing only in
// move counters share an entry. Unparseable FENs are used as-is.
func key(fenStr string) string {
	if normalized, err := fen.Normalize(fenStr); err == nil {
		return normalized
	}
	return fenStr
}
