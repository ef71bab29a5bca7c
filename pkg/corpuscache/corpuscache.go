// Package corpuscache holds loaded corpora in memory under a byte budget,
// evicting the least recently used corpus first the way the teacher's
// query cache evicts the least recently used plan — except an entry with a
// live reference count is never chosen for eviction, since a running query
// iterator may still be reading from its graph.
package corpuscache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/corpusql/annisquery/pkg/graph"
)

// ErrNotFound is returned by Get when the named corpus isn't resident.
var ErrNotFound = errors.New("corpuscache: corpus not loaded")

// averageAnnotationBytes estimates the resident size of one annotation
// entry (forward map key/value plus inverse multimap bookkeeping).
const averageAnnotationBytes = 64

// averageInternedStringBytes estimates the resident size of one interned
// string, including the byValue map entry and byID slice slot.
const averageInternedStringBytes = 48

// averageEdgeBytes estimates the resident size of one stored edge across
// whichever Storage implementation backs a component.
const averageEdgeBytes = 32

// Handle is a reference-counted corpus entry. Callers obtained from Get
// must call Release exactly once when done querying it.
type Handle struct {
	Name  string
	Graph *graph.Graph

	cache *Cache
	elem  *list.Element
}

// Release decrements the handle's reference count, making it eligible for
// eviction again once it reaches zero.
func (h *Handle) Release() {
	h.cache.release(h)
}

type entry struct {
	name    string
	g       *graph.Graph
	refs    int
	approxN int64
}

// Cache is a reference-counted LRU over loaded *graph.Graph instances,
// bounded by an approximate total byte budget rather than an entry count.
type Cache struct {
	mu         sync.Mutex
	byteBudget int64
	usedBytes  int64
	list       *list.List
	items      map[string]*list.Element
	loader     func(name string) (*graph.Graph, error)
}

// New returns a Cache bounded to byteBudget approximate resident bytes.
// loader is called on a cache miss to materialize a corpus by name; it may
// be nil if the caller only ever calls Put directly.
func New(byteBudget int64, loader func(name string) (*graph.Graph, error)) *Cache {
	return &Cache{
		byteBudget: byteBudget,
		list:       list.New(),
		items:      make(map[string]*list.Element),
		loader:     loader,
	}
}

// ApproxBytes estimates g's resident memory footprint from its interner
// size, annotation entry count, and per-component edge counts.
func ApproxBytes(g *graph.Graph) int64 {
	var total int64
	total += int64(g.Interner.Len()) * averageInternedStringBytes
	total += g.Annos.EntryCount() * averageAnnotationBytes

	for _, t := range []graph.ComponentType{
		graph.Coverage, graph.Dominance, graph.Pointing,
		graph.Ordering, graph.LeftToken, graph.RightToken,
	} {
		for _, comp := range g.ComponentsOfType(t) {
			stats := g.Component(comp).Statistics()
			total += stats.EdgeCount * averageEdgeBytes
		}
	}
	return total
}

// Get returns a reference-counted Handle for name, loading it via the
// configured loader on a miss. The caller must call Release on the
// returned handle when finished.
func (c *Cache) Get(name string) (*Handle, error) {
	c.mu.Lock()
	if elem, ok := c.items[name]; ok {
		e := elem.Value.(*entry)
		e.refs++
		c.list.MoveToFront(elem)
		c.mu.Unlock()
		return &Handle{Name: name, Graph: e.g, cache: c, elem: elem}, nil
	}
	c.mu.Unlock()

	if c.loader == nil {
		return nil, ErrNotFound
	}
	g, err := c.loader(name)
	if err != nil {
		return nil, err
	}
	return c.Put(name, g)
}

// Put installs g under name, evicting unreferenced entries from the back
// of the LRU list until the byte budget is satisfied or no more evictable
// entries remain. Returns a Handle with a reference already held.
func (c *Cache) Put(name string, g *graph.Graph) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[name]; ok {
		e := elem.Value.(*entry)
		e.g = g
		e.approxN = ApproxBytes(g)
		e.refs++
		c.list.MoveToFront(elem)
		return &Handle{Name: name, Graph: g, cache: c, elem: elem}, nil
	}

	size := ApproxBytes(g)
	c.evictToFit(size)

	e := &entry{name: name, g: g, refs: 1, approxN: size}
	elem := c.list.PushFront(e)
	c.items[name] = elem
	c.usedBytes += size

	return &Handle{Name: name, Graph: g, cache: c, elem: elem}, nil
}

// evictToFit evicts unreferenced entries from the back of the LRU list
// until there is room for an additional incoming size, or until every
// remaining entry is pinned by a live reference.
func (c *Cache) evictToFit(incoming int64) {
	for c.usedBytes+incoming > c.byteBudget {
		victim := c.findEvictable()
		if victim == nil {
			return
		}
		e := victim.Value.(*entry)
		c.list.Remove(victim)
		delete(c.items, e.name)
		c.usedBytes -= e.approxN
	}
}

// findEvictable scans from the back of the LRU list for the first entry
// with zero live references.
func (c *Cache) findEvictable() *list.Element {
	for elem := c.list.Back(); elem != nil; elem = elem.Prev() {
		if elem.Value.(*entry).refs == 0 {
			return elem
		}
	}
	return nil
}

// release decrements h's reference count. A corpus with zero references
// remains resident (subject to later eviction pressure) until another Put
// or Get needs the room.
func (c *Cache) release(h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := h.elem.Value.(*entry); ok && e.refs > 0 {
		e.refs--
	}
}

// Len returns the number of corpora currently resident.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// UsedBytes returns the current approximate total resident size across
// every loaded corpus.
func (c *Cache) UsedBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}

// Evict forcibly removes name regardless of LRU order, provided it has no
// live references. Returns false if name isn't loaded or is still
// referenced.
func (c *Cache) Evict(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[name]
	if !ok {
		return false
	}
	e := elem.Value.(*entry)
	if e.refs > 0 {
		return false
	}
	c.list.Remove(elem)
	delete(c.items, name)
	c.usedBytes -= e.approxN
	return true
}
