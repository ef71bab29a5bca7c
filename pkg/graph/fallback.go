package graph

import "sort"

// FallbackStorage is the general-purpose Storage implementation: a sorted
// adjacency list plus a cycle-safe, layer-by-layer breadth-first
// traversal for reachability queries. It is the default for components
// with no better specialized structure (COVERAGE and any component the
// registry does not otherwise special-case), which means it is the only
// storage that must handle more than one path between the same pair of
// nodes.
type FallbackStorage struct {
	// out maps a node to its sorted, de-duplicated set of direct
	// successors. Kept sorted so OutgoingEdges and edge iteration are
	// deterministic.
	out map[NodeID][]NodeID

	labels map[Edge][]Annotation

	stats GraphStatistic
}

// NewFallbackStorage returns an empty FallbackStorage.
func NewFallbackStorage() *FallbackStorage {
	return &FallbackStorage{
		out:    make(map[NodeID][]NodeID),
		labels: make(map[Edge][]Annotation),
	}
}

func (s *FallbackStorage) AddEdge(src, tgt NodeID) error {
	if src == tgt {
		return ErrSelfEdge
	}
	succ := s.out[src]
	i := sort.Search(len(succ), func(i int) bool { return succ[i] >= tgt })
	if i < len(succ) && succ[i] == tgt {
		return ErrDuplicateEdge
	}
	succ = append(succ, 0)
	copy(succ[i+1:], succ[i:])
	succ[i] = tgt
	s.out[src] = succ
	s.stats.Valid = false
	return nil
}

func (s *FallbackStorage) SetEdgeLabel(src, tgt NodeID, anno Annotation) error {
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

func (s *FallbackStorage) EdgeLabels(src, tgt NodeID) []Annotation {
	return s.labels[Edge{Source: src, Target: tgt}]
}

func (s *FallbackStorage) OutgoingEdges(src NodeID) []NodeID {
	return s.out[src]
}

// AllEdges returns every (src, tgt) pair stored, in sorted source order,
// for callers snapshotting the component's full edge set (e.g. a
// checkpoint writer). Satisfies EdgeEnumerator.
func (s *FallbackStorage) AllEdges() []Edge {
	srcs := make([]NodeID, 0, len(s.out))
	for src := range s.out {
		srcs = append(srcs, src)
	}
	sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })

	var out []Edge
	for _, src := range srcs {
		for _, tgt := range s.out[src] {
			out = append(out, Edge{Source: src, Target: tgt})
		}
	}
	return out
}

// nodeCount returns the number of distinct nodes appearing in the
// component, either as an edge source or target.
func (s *FallbackStorage) nodeCount() int {
	seen := make(map[NodeID]struct{})
	for src, succ := range s.out {
		seen[src] = struct{}{}
		for _, t := range succ {
			seen[t] = struct{}{}
		}
	}
	return len(seen)
}

// reachableLayers returns, for each depth d from 0 up to the effective
// bound, the set of nodes reachable from src via some walk of exactly d
// edges. Layer d+1 is derived from every node in layer d, so a node
// reachable via more than one path (true for any non-tree component,
// e.g. POINTING or COVERAGE with converging edges) appears in every
// layer a walk to it can land on, not just its shortest one. That is
// what lets IsConnected/FindConnected see a longer, in-range path to a
// node even when a shorter, out-of-range path reaches the same node
// first.
//
// maxDist bounds the walk length directly when it is not unbounded. When
// it is unbounded (the "*" distance), the walk is instead capped at the
// component's total node count: in a graph of n nodes the set of nodes
// reachable at depth d is eventually periodic within n steps, so a node
// absent from every layer up to n is unreachable at any depth.
func (s *FallbackStorage) reachableLayers(src NodeID, maxDist int) []map[NodeID]bool {
	bound := maxDist
	if isUnbounded(maxDist) {
		bound = s.nodeCount()
	}

	layers := []map[NodeID]bool{{src: true}}
	for d := 0; d < bound; d++ {
		next := make(map[NodeID]bool)
		for n := range layers[d] {
			for _, succ := range s.out[n] {
				next[succ] = true
			}
		}
		if len(next) == 0 {
			break
		}
		layers = append(layers, next)
	}
	return layers
}

// bfsDistances returns the shortest-path distance, in edges, from src to
// every node reachable from it. Breadth-first order guarantees that the
// first time a node is reached is via its shortest path, even when the
// component offers longer alternate routes.
func (s *FallbackStorage) bfsDistances(src NodeID) map[NodeID]int {
	dist := map[NodeID]int{src: 0}
	queue := []NodeID{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, succ := range s.out[n] {
			if _, ok := dist[succ]; ok {
				continue
			}
			dist[succ] = dist[n] + 1
			queue = append(queue, succ)
		}
	}
	return dist
}

func (s *FallbackStorage) IsConnected(src, tgt NodeID, minDist, maxDist int) bool {
	if src == tgt {
		return minDist <= 0
	}
	for d, layer := range s.reachableLayers(src, maxDist) {
		if d < minDist {
			continue
		}
		if !isUnbounded(maxDist) && d > maxDist {
			break
		}
		if layer[tgt] {
			return true
		}
	}
	return false
}

func (s *FallbackStorage) Distance(src, tgt NodeID) int {
	if src == tgt {
		return 0
	}
	if d, ok := s.bfsDistances(src)[tgt]; ok {
		return d
	}
	return -1
}

func (s *FallbackStorage) FindConnected(src NodeID, minDist, maxDist int) []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	for d, layer := range s.reachableLayers(src, maxDist) {
		if d < minDist {
			continue
		}
		if !isUnbounded(maxDist) && d > maxDist {
			break
		}
		for n := range layer {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *FallbackStorage) Statistics() GraphStatistic { return s.stats }

func (s *FallbackStorage) RecomputeStatistics() {
	var nodeSet = make(map[NodeID]struct{})
	var edgeCount int64
	var maxFanOut int64
	for src, succ := range s.out {
		nodeSet[src] = struct{}{}
		for _, t := range succ {
			nodeSet[t] = struct{}{}
		}
		edgeCount += int64(len(succ))
		if int64(len(succ)) > maxFanOut {
			maxFanOut = int64(len(succ))
		}
	}
	avg := 0.0
	if len(s.out) > 0 {
		avg = float64(edgeCount) / float64(len(s.out))
	}
	s.stats = GraphStatistic{
		Valid:     true,
		NodeCount: int64(len(nodeSet)),
		EdgeCount: edgeCount,
		AvgFanOut: avg,
		MaxFanOut: maxFanOut,
		MaxDepth:  s.computeMaxDepth(),
		Cyclic:    s.hasCycle(),
	}
}

// computeMaxDepth runs a shortest-path BFS from every node with no
// incoming edge (or, if none, every node) and returns the longest
// shortest-path distance seen. Used only for statistics, not on any
// query-serving path.
func (s *FallbackStorage) computeMaxDepth() int64 {
	indeg := make(map[NodeID]int)
	for src, succ := range s.out {
		if _, ok := indeg[src]; !ok {
			indeg[src] = 0
		}
		for _, t := range succ {
			indeg[t]++
		}
	}
	var roots []NodeID
	for n, d := range indeg {
		if d == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 {
		for n := range indeg {
			roots = append(roots, n)
		}
	}
	var maxDepth int64
	for _, r := range roots {
		for _, depth := range s.bfsDistances(r) {
			if int64(depth) > maxDepth {
				maxDepth = int64(depth)
			}
		}
	}
	return maxDepth
}

// hasCycle reports whether the storage's edge set contains a directed
// cycle, using the standard three-color DFS.
func (s *FallbackStorage) hasCycle() bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeID]int)

	var visit func(n NodeID) bool
	visit = func(n NodeID) bool {
		color[n] = gray
		for _, next := range s.out[n] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}

	for n := range s.out {
		if color[n] == white {
			if visit(n) {
				return true
			}
		}
	}
	return false
}
