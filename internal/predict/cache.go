package predict

import (
	"container/list"
	"sync"
	"time"
)

type cacheKey struct {
	user int64
	item int64
}

type cacheEntry struct {
	key       cacheKey
	value     float64
	expiresAt time.Time
}

// lruCache memoizes predictions per (user, item). A capacity of 0
// disables it entirely. Safe for concurrent use: Get mutates recency
// order, so both paths hold the mutex.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	table    map[cacheKey]*list.Element
	onEvict  func()
	onHit    func()
	onMiss   func()
}

func newLRU(capacity int, ttl time.Duration) *lruCache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		table:    make(map[cacheKey]*list.Element),
	}
}

func (c *lruCache) Get(key cacheKey) (float64, bool) {
	if c.capacity == 0 {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.table[key]; ok {
		ent := ele.Value.(*cacheEntry)
		if time.Now().After(ent.expiresAt) {
			c.removeElement(ele)
			if c.onMiss != nil {
				c.onMiss()
			}
			return 0, false
		}
		c.ll.MoveToFront(ele)
		if c.onHit != nil {
			c.onHit()
		}
		return ent.value, true
	}
	if c.onMiss != nil {
		c.onMiss()
	}
	return 0, false
}

func (c *lruCache) Set(key cacheKey, val float64) {
	if c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.table[key]; ok {
		ent := ele.Value.(*cacheEntry)
		ent.value = val
		ent.expiresAt = time.Now().Add(c.ttl)
		c.ll.MoveToFront(ele)
		return
	}
	ent := &cacheEntry{key: key, value: val, expiresAt: time.Now().Add(c.ttl)}
	ele := c.ll.PushFront(ent)
	c.table[key] = ele
	if c.ll.Len() > c.capacity {
		c.removeOldest()
	}
}

func (c *lruCache) removeOldest() {
	ele := c.ll.Back()
	if ele != nil {
		c.removeElement(ele)
		if c.onEvict != nil {
			c.onEvict()
		}
	}
}

func (c *lruCache) removeElement(e *list.Element) {
	ent := e.Value.(*cacheEntry)
	delete(c.table, ent.key)
	c.ll.Remove(e)
}
