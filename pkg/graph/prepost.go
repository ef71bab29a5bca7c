package graph

import (
	"sort"
	"sync"
)

// prePostEntry is one node's DFS numbering within a PrePostStorage.
type prePostEntry struct {
	pre        int
	post       int
	level      int
	subtreeEnd int // max pre value among this node's descendants (incl. self)
}

// PrePostStorage specializes tree-like components, such as DOMINANCE,
// using a pre/post-order DFS numbering per root. Reachability reduces to
// interval containment (pre_src <= pre_tgt && post_tgt <= post_src) and
// distance reduces to a level subtraction, both O(1) once the index is
// built; no traversal is needed at query time.
//
// The index is built lazily: AddEdge only records raw parent/child pairs,
// and RecomputeStatistics (or an implicit rebuild on first read after a
// write) performs the DFS numbering pass.
type PrePostStorage struct {
	children map[NodeID][]NodeID // insertion order preserved
	hasEdge  map[Edge]struct{}
	labels   map[Edge][]Annotation

	entries map[NodeID]prePostEntry
	ordered []NodeID // nodes sorted by pre, valid iff dirty == false

	dirty bool
	stats GraphStatistic

	mu sync.Mutex // serializes the lazy rebuild triggered by concurrent reads
}

// NewPrePostStorage returns an empty PrePostStorage.
func NewPrePostStorage() *PrePostStorage {
	return &PrePostStorage{
		children: make(map[NodeID][]NodeID),
		hasEdge:  make(map[Edge]struct{}),
		labels:   make(map[Edge][]Annotation),
		entries:  make(map[NodeID]prePostEntry),
		dirty:    true,
	}
}

func (s *PrePostStorage) AddEdge(src, tgt NodeID) error {
	if src == tgt {
		return ErrSelfEdge
	}
	e := Edge{Source: src, Target: tgt}
	if _, exists := s.hasEdge[e]; exists {
		return ErrDuplicateEdge
	}
	s.hasEdge[e] = struct{}{}
	s.children[src] = append(s.children[src], tgt)
	s.dirty = true
	s.stats.Valid = false
	return nil
}

func (s *PrePostStorage) SetEdgeLabel(src, tgt NodeID, anno Annotation) error {
	e := Edge{Source: src, Target: tgt}
	labels := s.labels[e]
	for i, a := range labels {
		if a.Name == anno.Name && a.Ns == anno.Ns {
			labels[i] = anno
			s.labels[e] = labels
			return nil
		}
	}
	s.labels[e] = append(labels, anno)
	return nil
}

func (s *PrePostStorage) EdgeLabels(src, tgt NodeID) []Annotation {
	return s.labels[Edge{Source: src, Target: tgt}]
}

func (s *PrePostStorage) OutgoingEdges(src NodeID) []NodeID {
	return s.children[src]
}

// AllEdges returns every (src, tgt) pair recorded, in sorted source order.
// Satisfies EdgeEnumerator.
func (s *PrePostStorage) AllEdges() []Edge {
	srcs := make([]NodeID, 0, len(s.children))
	for src := range s.children {
		srcs = append(srcs, src)
	}
	sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })

	var out []Edge
	for _, src := range srcs {
		for _, tgt := range s.children[src] {
			out = append(out, Edge{Source: src, Target: tgt})
		}
	}
	return out
}

// rebuild performs the DFS numbering pass over every root (a node with no
// incoming edge). Nodes unreachable from any root but present as a target
// of some edge are still numbered by iterating leftover nodes as roots, so
// no node is silently dropped from the index.
func (s *PrePostStorage) rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.entries = make(map[NodeID]prePostEntry, len(s.entries))

	hasParent := make(map[NodeID]bool)
	allNodes := make(map[NodeID]struct{})
	for p, kids := range s.children {
		allNodes[p] = struct{}{}
		for _, k := range kids {
			allNodes[k] = struct{}{}
			hasParent[k] = true
		}
	}

	var roots []NodeID
	for n := range allNodes {
		if !hasParent[n] {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	counter := 0
	visited := make(map[NodeID]bool)

	var visit func(n NodeID, level int)
	visit = func(n NodeID, level int) {
		if visited[n] {
			return
		}
		visited[n] = true
		pre := counter
		counter++
		for _, c := range s.children[n] {
			visit(c, level+1)
		}
		post := counter
		counter++
		s.entries[n] = prePostEntry{pre: pre, post: post, level: level, subtreeEnd: pre}
	}
	for _, r := range roots {
		visit(r, 0)
	}
	// Handle cyclic leftovers (should not occur for a true tree, but keeps
	// the index total over every node that appeared in an edge).
	for n := range allNodes {
		if !visited[n] {
			visit(n, 0)
		}
	}

	// subtreeEnd = max pre among this node and all descendants. Since DFS
	// numbering assigns contiguous pre values to a subtree, this is the
	// max pre of any node whose post lies within [pre, post] of n...
	// computed directly by a second pass using the recursion's natural
	// nesting: a child's subtreeEnd is always >= its own pre, and a
	// parent's subtreeEnd is the max over its children's subtreeEnd (or its
	// own pre if a leaf).
	var computeEnd func(n NodeID) int
	computed := make(map[NodeID]bool)
	computeEnd = func(n NodeID) int {
		e := s.entries[n]
		if computed[n] {
			return e.subtreeEnd
		}
		maxEnd := e.pre
		for _, c := range s.children[n] {
			if _, ok := s.entries[c]; ok {
				if end := computeEnd(c); end > maxEnd {
					maxEnd = end
				}
			}
		}
		e.subtreeEnd = maxEnd
		s.entries[n] = e
		computed[n] = true
		return maxEnd
	}
	for n := range s.entries {
		computeEnd(n)
	}

	ordered := make([]NodeID, 0, len(s.entries))
	for n := range s.entries {
		ordered = append(ordered, n)
	}
	sort.Slice(ordered, func(i, j int) bool { return s.entries[ordered[i]].pre < s.entries[ordered[j]].pre })
	s.ordered = ordered
	s.dirty = false
}

func (s *PrePostStorage) IsConnected(src, tgt NodeID, minDist, maxDist int) bool {
	if src == tgt {
		return minDist <= 0
	}
	d := s.Distance(src, tgt)
	if d < 0 {
		return false
	}
	return d >= minDist && (isUnbounded(maxDist) || d <= maxDist)
}

func (s *PrePostStorage) Distance(src, tgt NodeID) int {
	if src == tgt {
		return 0
	}
	s.rebuild()
	a, ok := s.entries[src]
	if !ok {
		return -1
	}
	b, ok := s.entries[tgt]
	if !ok {
		return -1
	}
	if a.pre <= b.pre && b.pre <= a.subtreeEnd {
		return b.level - a.level
	}
	return -1
}

func (s *PrePostStorage) FindConnected(src NodeID, minDist, maxDist int) []NodeID {
	s.rebuild()
	a, ok := s.entries[src]
	if !ok {
		return nil
	}

	var out []NodeID
	if minDist <= 0 {
		out = append(out, src)
	}

	lo := sort.Search(len(s.ordered), func(i int) bool { return s.entries[s.ordered[i]].pre > a.pre })
	for i := lo; i < len(s.ordered); i++ {
		n := s.ordered[i]
		e := s.entries[n]
		if e.pre > a.subtreeEnd {
			break
		}
		depth := e.level - a.level
		if depth < minDist {
			continue
		}
		if !isUnbounded(maxDist) && depth > maxDist {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *PrePostStorage) Statistics() GraphStatistic { return s.stats }

func (s *PrePostStorage) RecomputeStatistics() {
	s.rebuild()
	var edgeCount int64
	var maxFanOut int64
	var maxDepth int64
	for _, kids := range s.children {
		edgeCount += int64(len(kids))
		if int64(len(kids)) > maxFanOut {
			maxFanOut = int64(len(kids))
		}
	}
	for _, e := range s.entries {
		if int64(e.level) > maxDepth {
			maxDepth = int64(e.level)
		}
	}
	avg := 0.0
	if len(s.children) > 0 {
		avg = float64(edgeCount) / float64(len(s.children))
	}
	s.stats = GraphStatistic{
		Valid:      true,
		NodeCount:  int64(len(s.entries)),
		EdgeCount:  edgeCount,
		AvgFanOut:  avg,
		MaxFanOut:  maxFanOut,
		MaxDepth:   maxDepth,
		Cyclic:     false,
		RootedTree: true,
	}
}
