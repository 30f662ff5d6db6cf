// Package predict blends the bias baseline with a similarity-weighted
// aggregate of neighbor residuals to produce rating predictions.
package predict

import (
	"math"
	"time"

	"github.com/pandharkardeep/rating-graph/internal/bias"
	"github.com/pandharkardeep/rating-graph/internal/neighbors"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

// CacheHooks observe prediction cache events.
type CacheHooks struct {
	OnHit   func()
	OnMiss  func()
	OnEvict func()
}

// Predictor answers (user, item) rating queries. It never fails:
// cold-start users and items simply degrade to the baseline, and a
// totally unknown query yields the global mean.
type Predictor struct {
	store ratings.Store
	snap  *bias.Snapshot
	nbrs  *neighbors.Selector
	cache *lruCache
}

// New builds a Predictor over a finalized neighbor selector. cacheSize
// is the LRU capacity for memoized predictions; 0 disables caching.
func New(store ratings.Store, snap *bias.Snapshot, nbrs *neighbors.Selector, cacheSize int, cacheTTL time.Duration) *Predictor {
	return &Predictor{
		store: store,
		snap:  snap,
		nbrs:  nbrs,
		cache: newLRU(cacheSize, cacheTTL),
	}
}

// SetCacheHooks wires observers for cache hit/miss/evict events.
func (p *Predictor) SetCacheHooks(h CacheHooks) {
	p.cache.onHit = h.OnHit
	p.cache.onMiss = h.OnMiss
	p.cache.onEvict = h.OnEvict
}

// Predict returns the predicted rating for (user, item).
func (p *Predictor) Predict(user, item int64) float64 {
	key := cacheKey{user: user, item: item}
	if v, ok := p.cache.Get(key); ok {
		return v
	}

	baseline := p.snap.Baseline(user, item)

	var weightedSum, weightSum float64
	for _, n := range p.nbrs.NeighborsOf(user) {
		r, ok := p.store.Lookup(n.User, item)
		if !ok {
			continue
		}
		res := r - p.snap.Baseline(n.User, item)
		weightedSum += res * n.Sim
		weightSum += math.Abs(n.Sim)
	}

	out := baseline
	if weightSum > 0 {
		out += weightedSum / weightSum
	}

	p.cache.Set(key, out)
	return out
}
