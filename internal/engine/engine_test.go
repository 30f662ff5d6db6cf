package engine

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pandharkardeep/rating-graph/internal/config"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Model.Iterations = 0
	return cfg
}

func TestBuildGlobalMeanOnly(t *testing.T) {
	// Training data 1/1/5, 1/2/3, 2/1/4, 2/2/2 with bias fitting
	// disabled and K=0: every prediction is the global mean 3.5.
	s := ratings.NewMemStore()
	s.Add(1, 1, 5)
	s.Add(1, 2, 3)
	s.Add(2, 1, 4)
	s.Add(2, 2, 2)

	cfg := testConfig()
	cfg.Model.TopK = 0
	m := Build(s, cfg, zerolog.Nop())

	if got := m.Predict(1, 1); got != 3.5 {
		t.Errorf("Predict(1, 1) = %v, want 3.5", got)
	}
	if m.Stats.Ratings != 4 || m.Stats.Users != 2 || m.Stats.Items != 2 {
		t.Errorf("Stats = %+v, want 4 ratings / 2 users / 2 items", m.Stats)
	}
}

func TestBuildSymmetricSimilarity(t *testing.T) {
	// Two users with identical ratings over two items: final
	// similarity must be 2/12 on both sides of the edge.
	s := ratings.NewMemStore()
	s.Add(1, 1, 5)
	s.Add(1, 2, 1)
	s.Add(2, 1, 5)
	s.Add(2, 2, 1)

	m := Build(s, testConfig(), zerolog.Nop())

	a := m.Neighbors.NeighborsOf(1)
	b := m.Neighbors.NeighborsOf(2)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("neighbor counts = (%d, %d), want (1, 1)", len(a), len(b))
	}
	if a[0].Sim != b[0].Sim {
		t.Errorf("asymmetric similarity: %v vs %v", a[0].Sim, b[0].Sim)
	}
	want := 2.0 / 12.0
	if math.Abs(a[0].Sim-want) > 1e-12 {
		t.Errorf("similarity = %v, want %v", a[0].Sim, want)
	}
}

func TestBuildNeighborSetsBounded(t *testing.T) {
	s := ratings.NewMemStore()
	// Ten users all rating the same two items with varied values.
	for u := int64(1); u <= 10; u++ {
		s.Add(u, 1, float64(u%5)+1)
		s.Add(u, 2, float64((u+2)%5)+1)
	}

	cfg := testConfig()
	cfg.Model.TopK = 3
	m := Build(s, cfg, zerolog.Nop())

	for u := int64(1); u <= 10; u++ {
		if n := len(m.Neighbors.NeighborsOf(u)); n > 3 {
			t.Errorf("user %d has %d neighbors, want <= 3", u, n)
		}
	}
}

func TestBuildAllSimilaritiesPositive(t *testing.T) {
	s := ratings.NewMemStore()
	s.Add(1, 1, 5)
	s.Add(1, 2, 1)
	s.Add(2, 1, 1)
	s.Add(2, 2, 5)
	s.Add(3, 1, 5)
	s.Add(3, 2, 2)

	m := Build(s, testConfig(), zerolog.Nop())

	for u := int64(1); u <= 3; u++ {
		for _, n := range m.Neighbors.NeighborsOf(u) {
			if n.Sim <= 0 {
				t.Errorf("user %d has neighbor %d with similarity %v", u, n.User, n.Sim)
			}
		}
	}
}

func TestBuildIdempotentReAdd(t *testing.T) {
	build := func(readd bool) *Model {
		s := ratings.NewMemStore()
		s.Add(1, 1, 5)
		s.Add(1, 2, 1)
		s.Add(2, 1, 4)
		s.Add(2, 2, 2)
		if readd {
			s.Add(1, 1, 5) // identical tuple, before any fitting
		}
		cfg := config.Default()
		return Build(s, cfg, zerolog.Nop())
	}

	a, b := build(false), build(true)
	queries := []struct{ u, i int64 }{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {1, 3}, {9, 9}}
	for _, q := range queries {
		pa, pb := a.Predict(q.u, q.i), b.Predict(q.u, q.i)
		if pa != pb {
			t.Errorf("Predict(%d, %d) differs after identical re-add: %v vs %v", q.u, q.i, pa, pb)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	build := func() *Model {
		s := ratings.NewMemStore()
		s.Add(3, 7, 4.5)
		s.Add(1, 2, 2.0)
		s.Add(1, 7, 3.0)
		s.Add(2, 2, 5.0)
		s.Add(2, 7, 1.5)
		s.Add(2, 9, 1.0)
		return Build(s, config.Default(), zerolog.Nop())
	}

	a, b := build(), build()
	for u := int64(1); u <= 3; u++ {
		for i := int64(1); i <= 10; i++ {
			if pa, pb := a.Predict(u, i), b.Predict(u, i); pa != pb {
				t.Errorf("Predict(%d, %d) differs between runs: %v vs %v", u, i, pa, pb)
			}
		}
	}
}
