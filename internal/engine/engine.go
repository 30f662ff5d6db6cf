// Package engine assembles the full model build: bias fitting, residual
// indexing, pairwise similarity, and top-K neighbor selection.
package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pandharkardeep/rating-graph/internal/bias"
	"github.com/pandharkardeep/rating-graph/internal/config"
	"github.com/pandharkardeep/rating-graph/internal/metrics"
	"github.com/pandharkardeep/rating-graph/internal/neighbors"
	"github.com/pandharkardeep/rating-graph/internal/predict"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
	"github.com/pandharkardeep/rating-graph/internal/residual"
)

// Model is a fully built, read-only prediction model.
type Model struct {
	Store     ratings.Store
	Snapshot  *bias.Snapshot
	Neighbors *neighbors.Selector
	Stats     BuildStats

	predictor *predict.Predictor
}

// BuildStats summarizes one model build.
type BuildStats struct {
	Ratings      int
	Users        int
	Items        int
	Pairs        int
	Edges        int
	PairsSkipped int
	Evictions    int
}

// Build runs the training pipeline over a loaded store. The store must
// not be written to afterwards.
func Build(store ratings.Store, cfg config.Config, log zerolog.Logger) *Model {
	users := store.Users()

	start := time.Now()
	snap := bias.Fit(store, bias.Config{
		Iterations:     cfg.Model.Iterations,
		LearningRate:   cfg.Model.LearningRate,
		Regularization: cfg.Model.Regularization,
	})
	metrics.BuildStageDuration.WithLabelValues("bias_fit").Observe(time.Since(start).Seconds())
	log.Info().
		Int("iterations", cfg.Model.Iterations).
		Float64("global_mean", snap.GlobalMean()).
		Dur("elapsed", time.Since(start)).
		Msg("bias fitting complete")

	start = time.Now()
	idx := residual.Build(store, snap)
	metrics.BuildStageDuration.WithLabelValues("residual_index").Observe(time.Since(start).Seconds())

	start = time.Now()
	edges, st := neighbors.ComputeSimilarities(idx, neighbors.SimilarityConfig{
		Shrink:    cfg.Model.Shrink,
		AmpFactor: cfg.Model.AmpFactor,
	})
	sel := neighbors.NewSelector(cfg.Model.TopK)
	for _, e := range edges {
		sel.InsertEdge(e)
	}
	sel.Finalize()
	metrics.BuildStageDuration.WithLabelValues("similarity").Observe(time.Since(start).Seconds())

	metrics.TrainingRatings.Add(float64(store.Len()))
	metrics.TrainingUsers.Set(float64(len(users)))
	metrics.TrainingItems.Set(float64(len(idx)))
	metrics.SimilarityEdges.Add(float64(st.Edges))
	metrics.SimilarityPairsSkipped.Add(float64(st.Skipped))
	metrics.NeighborEvictions.Add(float64(sel.Evictions()))

	log.Info().
		Int("users", len(users)).
		Int("items", len(idx)).
		Int("pairs", st.Pairs).
		Int("edges", st.Edges).
		Int("skipped", st.Skipped).
		Int("evictions", sel.Evictions()).
		Dur("elapsed", time.Since(start)).
		Msg("neighbor sets built")

	p := predict.New(store, snap, sel, cfg.Cache.Size, cfg.Cache.TTL)
	p.SetCacheHooks(predict.CacheHooks{
		OnHit:   func() { metrics.PredictionCache.WithLabelValues("hit").Inc() },
		OnMiss:  func() { metrics.PredictionCache.WithLabelValues("miss").Inc() },
		OnEvict: func() { metrics.PredictionCache.WithLabelValues("evict").Inc() },
	})

	return &Model{
		Store:     store,
		Snapshot:  snap,
		Neighbors: sel,
		Stats: BuildStats{
			Ratings:      store.Len(),
			Users:        len(users),
			Items:        len(idx),
			Pairs:        st.Pairs,
			Edges:        st.Edges,
			PairsSkipped: st.Skipped,
			Evictions:    sel.Evictions(),
		},
		predictor: p,
	}
}

// Predict returns the predicted rating for (user, item). Cold-start
// queries degrade to the baseline; this never fails.
func (m *Model) Predict(user, item int64) float64 {
	start := time.Now()
	out := m.predictor.Predict(user, item)
	metrics.Predictions.Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	return out
}
