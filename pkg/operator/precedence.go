package operator

import "github.com/corpusql/annisquery/pkg/graph"

// NewPrecedence builds the "." / ".N,M" operator: lhs precedes rhs by
// between minDist and maxDist ordering edges. Operands are looked up in the
// ordering chains directly; a non-token operand is not mapped to its
// rightmost or leftmost token, so it matches nothing. Layer narrows which ordering component participates (empty means
// any layer, i.e. the default token ordering).
func NewPrecedence(g *graph.Graph, layer string, minDist, maxDist int) *AbstractEdgeOperator {
	return NewAbstractEdgeOperator(g, graph.Ordering, layer, "", minDist, maxDist, nil)
}

// NewDominance builds the ">" / ">N,M" operator over a dominance component,
// optionally narrowed to a specific layer and/or edge-labeled name.
// edgeLabel, when non-nil, additionally constrains matched edges to carry
// that annotation (e.g. a labeled dominance edge such as edge type "head").
func NewDominance(g *graph.Graph, layer, name string, minDist, maxDist int, edgeLabel *graph.Annotation) *AbstractEdgeOperator {
	return NewAbstractEdgeOperator(g, graph.Dominance, layer, name, minDist, maxDist, edgeLabel)
}

// NewPointing builds the "->name" pointing-relation operator, narrowed to
// components carrying the given layer/name, with an optional distance range
// and edge-label constraint.
func NewPointing(g *graph.Graph, layer, name string, minDist, maxDist int, edgeLabel *graph.Annotation) *AbstractEdgeOperator {
	return NewAbstractEdgeOperator(g, graph.Pointing, layer, name, minDist, maxDist, edgeLabel)
}
