package graph

// Storage is the uniform contract every per-component edge container must
// honor, regardless of its internal representation. The planner and the
// operators in package operator only ever see this interface; which
// concrete implementation backs a given Component is an internal registry
// decision (see registry.go).
//
// All Storage implementations must be safe for concurrent reads; a single
// writer is assumed during mutation (callers serialize writes through the
// owning Graph).
type Storage interface {
	// AddEdge inserts (src, tgt) into the storage. Returns ErrSelfEdge if
	// src == tgt, ErrDuplicateEdge if the edge already exists. Invalidates
	// cached statistics until RecomputeStatistics is called.
	AddEdge(src, tgt NodeID) error

	// SetEdgeLabel attaches anno to the edge (src, tgt), overwriting any
	// prior value sharing anno's (name, ns).
	SetEdgeLabel(src, tgt NodeID, anno Annotation) error

	// EdgeLabels returns every annotation attached to the edge (src, tgt).
	EdgeLabels(src, tgt NodeID) []Annotation

	// IsConnected reports whether tgt is reachable from src via a directed
	// path of length in [minDist, maxDist] edges, inclusive.
	IsConnected(src, tgt NodeID, minDist, maxDist int) bool

	// Distance returns the minimum number of edges on any directed path
	// from src to tgt, or -1 if tgt is unreachable from src.
	Distance(src, tgt NodeID) int

	// FindConnected returns every node reachable from src via a directed
	// path of length in [minDist, maxDist] edges, each exactly once. A
	// maxDist of -1 means unbounded.
	FindConnected(src NodeID, minDist, maxDist int) []NodeID

	// OutgoingEdges returns the direct (distance-1) successors of src.
	OutgoingEdges(src NodeID) []NodeID

	// Statistics returns the storage's cached GraphStatistic. Valid is
	// false until RecomputeStatistics has run at least once since the last
	// write.
	Statistics() GraphStatistic

	// RecomputeStatistics rebuilds the cached GraphStatistic from the
	// current edge set.
	RecomputeStatistics()
}

// EdgeEnumerator is implemented by Storage backends that can list their
// entire edge set, used by checkpoint writers to snapshot a component
// without needing a bespoke export path per implementation.
type EdgeEnumerator interface {
	AllEdges() []Edge
}

// isUnbounded reports whether maxDist (-1, or any negative value) means
// "no upper bound on distance".
func isUnbounded(maxDist int) bool { return maxDist < 0 }
