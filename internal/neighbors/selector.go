package neighbors

import "container/heap"

// Neighbor is one entry of a user's top-K set.
type Neighbor struct {
	User int64
	Sim  float64
}

// Selector maintains a bounded top-K similarity ranking per user. Feed
// it edges with Insert/InsertEdge, then call Finalize exactly once;
// afterwards NeighborsOf is a non-destructive read.
type Selector struct {
	k         int
	heaps     map[int64]*simHeap
	frozen    map[int64][]Neighbor
	evictions int
}

func NewSelector(k int) *Selector {
	return &Selector{k: k, heaps: make(map[int64]*simHeap)}
}

// Insert offers neighbor as a candidate for user's top-K set. The
// lowest-ranked entry is evicted once the set exceeds K. Entries with
// non-positive similarity are never admitted.
func (s *Selector) Insert(user, neighbor int64, sim float64) {
	if s.frozen != nil {
		panic("neighbors: Insert after Finalize")
	}
	if s.k <= 0 || sim <= 0 {
		return
	}
	h := s.heaps[user]
	if h == nil {
		h = &simHeap{}
		s.heaps[user] = h
	}
	heap.Push(h, Neighbor{User: neighbor, Sim: sim})
	if h.Len() > s.k {
		heap.Pop(h)
		s.evictions++
	}
}

// InsertEdge inserts a symmetric similarity edge as a candidate on both
// endpoints.
func (s *Selector) InsertEdge(e Edge) {
	s.Insert(e.A, e.B, e.Sim)
	s.Insert(e.B, e.A, e.Sim)
}

// Finalize drains every heap into a frozen slice sorted by similarity
// descending (equal similarities: lower user id first). Must be called
// before NeighborsOf.
func (s *Selector) Finalize() {
	frozen := make(map[int64][]Neighbor, len(s.heaps))
	for u, h := range s.heaps {
		out := make([]Neighbor, h.Len())
		for i := len(out) - 1; i >= 0; i-- {
			out[i] = heap.Pop(h).(Neighbor)
		}
		frozen[u] = out
	}
	s.frozen = frozen
	s.heaps = nil
}

// NeighborsOf returns user's frozen neighbor set, best first. The
// returned slice is shared: callers must not modify it. Unknown users
// get nil.
func (s *Selector) NeighborsOf(user int64) []Neighbor {
	if s.frozen == nil {
		panic("neighbors: NeighborsOf before Finalize")
	}
	return s.frozen[user]
}

// Evictions reports how many candidates were pushed out of a full set.
func (s *Selector) Evictions() int { return s.evictions }

// simHeap is a min-heap over (similarity, user id). Among equal
// similarities the higher id sorts first so it is evicted first,
// making the kept set deterministic regardless of insertion order.
type simHeap []Neighbor

func (h simHeap) Len() int { return len(h) }
func (h simHeap) Less(i, j int) bool {
	if h[i].Sim != h[j].Sim {
		return h[i].Sim < h[j].Sim
	}
	return h[i].User > h[j].User
}
func (h simHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *simHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *simHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
