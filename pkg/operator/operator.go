// Package operator implements the binary structural operators that relate
// two node searches in a query: precedence, dominance, pointing, inclusion,
// overlap, identical-coverage, and the left/right/is-token helper.
// Precedence, dominance, and pointing are thin parameterizations of
// AbstractEdgeOperator over the graph's component storages; inclusion,
// overlap, and identical-coverage are SpanOperator relations computed from
// token spans through the token helper, since token alignment is a
// coverage-derived relation rather than a directly stored edge.
package operator

import "github.com/corpusql/annisquery/pkg/graph"

// Operator is the uniform contract the planner and join iterators in
// package join consume. Every binary structural predicate in a query
// compiles to one Operator instance bound to a specific *graph.Graph.
type Operator interface {
	// RetrieveMatches returns every node reachable from lhs under this
	// operator's relation, deduplicated.
	RetrieveMatches(lhs graph.NodeID) []graph.NodeID

	// Filter reports whether (lhs, rhs) satisfies this operator's relation.
	Filter(lhs, rhs graph.NodeID) bool

	// IsReflexive reports whether every node is considered related to
	// itself under this operator (e.g. inclusion and overlap are
	// reflexive; direct dominance is not).
	IsReflexive() bool

	// IsCommutative reports whether Filter(a, b) == Filter(b, a) always
	// holds, letting the planner freely swap operand order.
	IsCommutative() bool

	// IsSeedable reports whether RetrieveMatches returns a real candidate
	// set the planner can drive a seed or index join from. Operators with
	// no efficient forward lookup (e.g. the derived token-span relations)
	// return false here, so the planner falls back to a nested-loop join
	// instead of seeding from a RetrieveMatches call that always comes
	// back empty.
	IsSeedable() bool

	// Selectivity estimates the fraction of (lhs, rhs) pairs drawn from the
	// node universe that satisfy this operator, in [0, 1]. Used by the
	// planner's cost model to choose join strategy and operand order.
	Selectivity() float64

	// Description renders a short human-readable summary for plan
	// debugging.
	Description() string
}
