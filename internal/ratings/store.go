package ratings

import (
	"sort"
	"sync"
)

// Rating is a single (item, value) observation belonging to some user.
type Rating struct {
	Item  int64
	Value float64
}

// Store holds sparse rating observations keyed by user and item.
type Store interface {
	// Add records an observation. A later duplicate of the same
	// (user, item) pair overwrites the earlier value.
	Add(user, item int64, value float64)
	Lookup(user, item int64) (float64, bool)
	// Users returns all user ids in ascending order.
	Users() []int64
	// ItemsOf returns the user's observations in ascending item order.
	// The slice is owned by the caller.
	ItemsOf(user int64) []Rating
	MaxUserID() int64
	MaxItemID() int64
	// Len is the number of distinct (user, item) pairs stored.
	Len() int
}

// MemStore is the in-memory Store. Writes happen while a dataset is
// loading; afterwards it is safe for any number of concurrent readers.
type MemStore struct {
	mu      sync.RWMutex
	byUser  map[int64]map[int64]float64
	maxUser int64
	maxItem int64
	n       int
}

func NewMemStore() *MemStore {
	return &MemStore{byUser: make(map[int64]map[int64]float64)}
}

func (s *MemStore) Add(user, item int64, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byUser[user]
	if !ok {
		m = make(map[int64]float64)
		s.byUser[user] = m
	}
	if _, exists := m[item]; !exists {
		s.n++
	}
	m[item] = value

	if user > s.maxUser {
		s.maxUser = user
	}
	if item > s.maxItem {
		s.maxItem = item
	}
}

func (s *MemStore) Lookup(user, item int64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byUser[user][item]
	return v, ok
}

func (s *MemStore) Users() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.byUser))
	for u := range s.byUser {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *MemStore) ItemsOf(user int64) []Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.byUser[user]
	out := make([]Rating, 0, len(m))
	for item, v := range m {
		out = append(out, Rating{Item: item, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func (s *MemStore) MaxUserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxUser
}

func (s *MemStore) MaxItemID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxItem
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}
