// Package bias fits a global-mean baseline with per-user and per-item
// scalar corrections via sequential gradient descent.
package bias

import (
	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

// FallbackMean is the global mean used when the training set is empty.
const FallbackMean = 3.5

// Config controls the fitting procedure. There is no convergence check:
// the pass count is a fixed, configurable budget.
type Config struct {
	Iterations     int
	LearningRate   float64
	Regularization float64
}

// Snapshot holds the fitted baseline model. It is immutable once Fit
// returns and may be shared freely between goroutines.
type Snapshot struct {
	mean float64
	user map[int64]float64
	item map[int64]float64
}

type observation struct {
	user, item int64
	value      float64
}

// Fit trains user and item biases against the store's global mean.
//
// Updates within a pass are applied in place and are visible to the
// observations that follow, so pass order fixes the result. Observations
// are traversed in ascending (user, item) order, which makes repeated
// fits over the same data bit-identical.
func Fit(store ratings.Store, cfg Config) *Snapshot {
	users := store.Users()

	all := make([]observation, 0, store.Len())
	sum := 0.0
	for _, u := range users {
		for _, r := range store.ItemsOf(u) {
			all = append(all, observation{user: u, item: r.Item, value: r.Value})
			sum += r.Value
		}
	}

	mean := FallbackMean
	if len(all) > 0 {
		mean = sum / float64(len(all))
	}

	userBias := make(map[int64]float64, len(users))
	itemBias := make(map[int64]float64)
	for _, u := range users {
		userBias[u] = 0
	}

	for pass := 0; pass < cfg.Iterations; pass++ {
		for _, o := range all {
			bu := userBias[o.user]
			bi := itemBias[o.item]
			err := o.value - (mean + bu + bi)
			userBias[o.user] = bu + cfg.LearningRate*(err-cfg.Regularization*bu)
			itemBias[o.item] = bi + cfg.LearningRate*(err-cfg.Regularization*bi)
		}
	}

	return &Snapshot{mean: mean, user: userBias, item: itemBias}
}

func (s *Snapshot) GlobalMean() float64 { return s.mean }

// UserBias returns the fitted bias for u, or 0 for an unseen user.
func (s *Snapshot) UserBias(u int64) float64 { return s.user[u] }

// ItemBias returns the fitted bias for i, or 0 for an unseen item.
func (s *Snapshot) ItemBias(i int64) float64 { return s.item[i] }

// Baseline is the bias-only rating estimate for a (user, item) pair.
// Unknown ids contribute nothing, so a fully cold query degrades to the
// global mean.
func (s *Snapshot) Baseline(u, i int64) float64 {
	return s.mean + s.user[u] + s.item[i]
}
