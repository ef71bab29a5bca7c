// Package plancache provides an LRU cache of built plan shapes keyed by a
// structural hash of a parsed query, so repeated queries against an
// already-loaded corpus skip the planner's join-order/cost-model algorithm.
// A cache hit still re-instantiates fresh iterators against the current
// graph; only the tree shape and static per-node parameters are cached.
package plancache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

// Cache is a thread-safe LRU cache of plan shapes, identified by Key.
type Cache struct {
	mu sync.RWMutex

	maxSize int
	ttl     time.Duration
	enabled bool

	list  *list.List
	items map[uint64]*list.Element

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key       uint64
	value     any
	expiresAt time.Time
}

// New creates a plan-shape cache holding at most maxSize entries, each
// expiring after ttl (0 disables expiration, relying on LRU eviction alone).
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		enabled: true,
		list:    list.New(),
		items:   make(map[uint64]*list.Element, maxSize),
	}
}

// Key hashes the canonicalized textual form of a parsed query (produced by
// the planner's structural-hash rendering) into a 64-bit cache key. Two
// structurally identical queries against differently shaped graphs share a
// key, since the rendering never includes bound graph state.
func Key(canonical string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(canonical))
	return h.Sum64()
}

// Get retrieves a cached plan shape if present and unexpired, moving it to
// the front of the LRU list on hit.
func (c *Cache) Get(key uint64) (any, bool) {
	if !c.enabled {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	c.list.MoveToFront(elem)

	atomic.AddUint64(&c.hits, 1)
	return entry.value, true
}

// Put inserts or updates the plan shape cached under key, evicting the
// least recently used entry if the cache is at capacity.
func (c *Cache) Put(key uint64, value any) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.list.MoveToFront(elem)
		return
	}

	for c.list.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{key: key, value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	elem := c.list.PushFront(entry)
	c.items[key] = elem
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Len()
}

// Stats reports cumulative hit/miss counters.
type Stats struct {
	Size, MaxSize int
	Hits, Misses  uint64
	HitRate       float64
}

// Stats returns the cache's current size and cumulative hit/miss counts.
func (c *Cache) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	c.mu.RLock()
	size := c.list.Len()
	c.mu.RUnlock()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return Stats{Size: size, MaxSize: c.maxSize, Hits: hits, Misses: misses, HitRate: rate}
}

func (c *Cache) evictOldest() {
	if elem := c.list.Back(); elem != nil {
		c.removeElement(elem)
	}
}

func (c *Cache) removeElement(elem *list.Element) {
	c.list.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
}
