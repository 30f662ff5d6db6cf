// Package neighbors computes shrinkage-weighted, amplified cosine
// similarity between users from their rating residuals and keeps a
// bounded top-K neighbor set per user.
package neighbors

import (
	"math"

	"github.com/pandharkardeep/rating-graph/internal/residual"
)

// SimilarityConfig tunes the similarity computation.
type SimilarityConfig struct {
	// Shrink discounts pairs with few co-rated items:
	// factor = count / (count + Shrink).
	Shrink float64
	// AmpFactor is the case-amplification exponent applied to the raw
	// cosine magnitude. Values > 1 favor strongly similar neighbors.
	AmpFactor float64
}

// Edge is a symmetric similarity between two users, A < B.
type Edge struct {
	A, B int64
	Sim  float64
}

// Stats summarizes one similarity computation.
type Stats struct {
	Pairs   int // co-rating pairs accumulated
	Edges   int // edges emitted
	Skipped int // pairs dropped for non-positive similarity
}

type pairKey struct {
	a, b int64 // a < b
}

// dotData accumulates the residual dot product and co-rating count for
// one unordered user pair.
type dotData struct {
	sum   float64
	count int
}

// ComputeSimilarities runs the pairwise pass over the residual index.
// Cost is O(sum over items of n_item^2); per-item co-rating lists are
// sparse in practice. Every returned edge has Sim > 0.
func ComputeSimilarities(idx residual.Index, cfg SimilarityConfig) ([]Edge, Stats) {
	// Both passes walk items in ascending order so the floating-point
	// sums accumulate identically on every run.
	items := idx.Items()

	// Per-user squared residual magnitudes.
	magnitude := make(map[int64]float64)
	for _, item := range items {
		for _, e := range idx[item] {
			magnitude[e.User] += e.Residual * e.Residual
		}
	}

	// Dot products over every unordered pair sharing an item.
	dots := make(map[pairKey]*dotData)
	for _, item := range items {
		entries := idx[item]
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				ua, ra := entries[i].User, entries[i].Residual
				ub, rb := entries[j].User, entries[j].Residual
				if ua > ub {
					ua, ub = ub, ua
					ra, rb = rb, ra
				}
				key := pairKey{a: ua, b: ub}
				d := dots[key]
				if d == nil {
					d = &dotData{}
					dots[key] = d
				}
				d.sum += ra * rb
				d.count++
			}
		}
	}

	var st Stats
	st.Pairs = len(dots)
	edges := make([]Edge, 0, len(dots))
	for key, d := range dots {
		raw := cosine(d.sum, magnitude[key.a], magnitude[key.b])
		if raw <= 0 {
			st.Skipped++
			continue
		}
		shrink := float64(d.count) / (float64(d.count) + cfg.Shrink)
		amp := math.Pow(math.Abs(raw), cfg.AmpFactor)
		if raw < 0 {
			amp = -amp // sign preserved; negatives were already cut above
		}
		sim := amp * shrink
		if sim <= 0 {
			st.Skipped++
			continue
		}
		edges = append(edges, Edge{A: key.a, B: key.b, Sim: sim})
	}
	st.Edges = len(edges)
	return edges, st
}

func cosine(dot, magA, magB float64) float64 {
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
