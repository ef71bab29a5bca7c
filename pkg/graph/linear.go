package graph

import "sort"

// linearEntry is a node's position within one chain of a LinearStorage.
type linearEntry struct {
	root NodeID // the chain's first node
	pos  int    // 0-based position within the chain
}

// LinearStorage specializes components that are disjoint chains, such as
// ORDERING over a document's tokens. Reachability, distance, and
// find-connected all reduce to arithmetic on (root, position) pairs within
// the same chain, avoiding a traversal entirely.
type LinearStorage struct {
	pos    map[NodeID]linearEntry
	chains map[NodeID][]NodeID // root -> ordered members (index == pos)
	stats  GraphStatistic
}

// NewLinearStorage returns an empty LinearStorage.
func NewLinearStorage() *LinearStorage {
	return &LinearStorage{
		pos:    make(map[NodeID]linearEntry),
		chains: make(map[NodeID][]NodeID),
	}
}

// AddEdge appends tgt immediately after src on src's chain. src must
// already be the last element of its chain (or a fresh singleton chain);
// building an ORDERING storage out of order is a caller error surfaced as
// ErrDuplicateEdge.
func (s *LinearStorage) AddEdge(src, tgt NodeID) error {
	if src == tgt {
		return ErrSelfEdge
	}
	if _, exists := s.pos[tgt]; exists {
		return ErrDuplicateEdge
	}

	entry, ok := s.pos[src]
	if !ok {
		// src starts a brand new chain rooted at itself.
		s.chains[src] = []NodeID{src}
		entry = linearEntry{root: src, pos: 0}
		s.pos[src] = entry
	}

	chain := s.chains[entry.root]
	if entry.pos != len(chain)-1 {
		return ErrDuplicateEdge
	}
	chain = append(chain, tgt)
	s.chains[entry.root] = chain
	s.pos[tgt] = linearEntry{root: entry.root, pos: len(chain) - 1}
	s.stats.Valid = false
	return nil
}

func (s *LinearStorage) SetEdgeLabel(src, tgt NodeID, anno Annotation) error {
	// ORDERING edges carry no labels in this model; accepted as a no-op so
	// callers can treat every Storage uniformly.
	return nil
}

func (s *LinearStorage) EdgeLabels(src, tgt NodeID) []Annotation { return nil }

// AllEdges returns every consecutive (src, tgt) pair across every chain,
// ordered by chain root then position. Satisfies EdgeEnumerator.
func (s *LinearStorage) AllEdges() []Edge {
	roots := make([]NodeID, 0, len(s.chains))
	for root := range s.chains {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var out []Edge
	for _, root := range roots {
		chain := s.chains[root]
		for i := 0; i+1 < len(chain); i++ {
			out = append(out, Edge{Source: chain[i], Target: chain[i+1]})
		}
	}
	return out
}

func (s *LinearStorage) OutgoingEdges(src NodeID) []NodeID {
	e, ok := s.pos[src]
	if !ok {
		return nil
	}
	chain := s.chains[e.root]
	if e.pos+1 >= len(chain) {
		return nil
	}
	return []NodeID{chain[e.pos+1]}
}

func (s *LinearStorage) IsConnected(src, tgt NodeID, minDist, maxDist int) bool {
	if src == tgt {
		return minDist <= 0
	}
	d := s.Distance(src, tgt)
	if d < 0 {
		return false
	}
	return d >= minDist && (isUnbounded(maxDist) || d <= maxDist)
}

func (s *LinearStorage) Distance(src, tgt NodeID) int {
	if src == tgt {
		return 0
	}
	a, ok := s.pos[src]
	if !ok {
		return -1
	}
	b, ok := s.pos[tgt]
	if !ok || a.root != b.root || b.pos <= a.pos {
		return -1
	}
	return b.pos - a.pos
}

func (s *LinearStorage) FindConnected(src NodeID, minDist, maxDist int) []NodeID {
	e, ok := s.pos[src]
	if !ok {
		return nil
	}
	chain := s.chains[e.root]
	var out []NodeID
	if minDist <= 0 {
		out = append(out, src)
	}
	lo := e.pos + 1
	if minDist > 1 {
		lo = e.pos + minDist
	}
	hi := len(chain) - 1
	if !isUnbounded(maxDist) {
		if cap := e.pos + maxDist; cap < hi {
			hi = cap
		}
	}
	for i := lo; i >= 0 && i <= hi && i < len(chain); i++ {
		out = append(out, chain[i])
	}
	return out
}

func (s *LinearStorage) Statistics() GraphStatistic { return s.stats }

func (s *LinearStorage) RecomputeStatistics() {
	var edgeCount int64
	var maxLen int64
	roots := make([]NodeID, 0, len(s.chains))
	for r, chain := range s.chains {
		roots = append(roots, r)
		if len(chain) > 0 {
			edgeCount += int64(len(chain) - 1)
		}
		if int64(len(chain)) > maxLen {
			maxLen = int64(len(chain))
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	avg := 0.0
	if len(s.chains) > 0 {
		avg = float64(edgeCount) / float64(len(s.chains))
	}
	s.stats = GraphStatistic{
		Valid:      true,
		NodeCount:  int64(len(s.pos)),
		EdgeCount:  edgeCount,
		AvgFanOut:  avg,
		MaxFanOut:  1,
		MaxDepth:   maxLen - 1,
		Cyclic:     false,
		RootedTree: true,
	}
}
