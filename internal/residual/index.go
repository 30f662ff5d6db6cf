// Package residual builds the inverted item index of bias-corrected
// residuals that similarity computation runs over.
package residual

import (
	"sort"

	"github.com/pandharkardeep/rating-graph/internal/bias"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

// Entry is one user's residual for a given item.
type Entry struct {
	User     int64
	Residual float64
}

// Index maps item id -> residual entries, ordered by ascending user id.
type Index map[int64][]Entry

// Items returns the indexed item ids in ascending order. Iterating the
// index through Items keeps floating-point accumulation order fixed
// across runs.
func (idx Index) Items() []int64 {
	out := make([]int64, 0, len(idx))
	for item := range idx {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build computes residual = rating - baseline for every training
// observation and groups the results by item. Inputs are not mutated.
func Build(store ratings.Store, snap *bias.Snapshot) Index {
	idx := make(Index)
	for _, u := range store.Users() {
		for _, r := range store.ItemsOf(u) {
			res := r.Value - snap.Baseline(u, r.Item)
			idx[r.Item] = append(idx[r.Item], Entry{User: u, Residual: res})
		}
	}
	return idx
}
