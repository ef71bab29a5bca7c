package operator

import "github.com/corpusql/annisquery/pkg/graph"

// SpanOperator implements the three token-span relations — Inclusion,
// Overlap, and IdenticalCoverage — by comparing each node's covered token
// span [left, right], derived via TokenHelper and ordered by the default
// ORDERING component. Unlike AbstractEdgeOperator these relations are not
// backed by a single stored component: a node's span is a derived property
// of its COVERAGE subtree's leftmost/rightmost token.
type SpanOperator struct {
	g      *graph.Graph
	tokens *TokenHelper
	kind   spanKind
}

type spanKind int

const (
	spanInclusion spanKind = iota
	spanOverlap
	spanIdenticalCoverage
)

// NewInclusion builds the "_i_" operator: lhs's span contains rhs's span.
func NewInclusion(g *graph.Graph) *SpanOperator {
	return &SpanOperator{g: g, tokens: NewTokenHelper(g), kind: spanInclusion}
}

// NewOverlap builds the "_o_" operator: lhs's and rhs's spans intersect.
func NewOverlap(g *graph.Graph) *SpanOperator {
	return &SpanOperator{g: g, tokens: NewTokenHelper(g), kind: spanOverlap}
}

// NewIdenticalCoverage builds the "_=_" operator: lhs and rhs cover exactly
// the same token span.
func NewIdenticalCoverage(g *graph.Graph) *SpanOperator {
	return &SpanOperator{g: g, tokens: NewTokenHelper(g), kind: spanIdenticalCoverage}
}

// span holds a node's covered [left, right] token range as ordering
// positions relative to left; width is -1 when left/right could not be
// related via ORDERING (disconnected chains).
type span struct {
	left, right graph.NodeID
	width       int // right's ordering distance from left; -1 if unknown
}

func (o *SpanOperator) spanOf(n graph.NodeID) span {
	l := o.tokens.LeftToken(n)
	r := o.tokens.RightToken(n)
	width := 0
	if l != r {
		if d, ok := orderingDistance(o.g, l, r); ok {
			width = d
		} else {
			width = -1
		}
	}
	return span{left: l, right: r, width: width}
}

// Filter evaluates the span relation directly between lhs and rhs.
func (o *SpanOperator) Filter(lhs, rhs graph.NodeID) bool {
	a, b := o.spanOf(lhs), o.spanOf(rhs)
	switch o.kind {
	case spanInclusion:
		return o.spanContains(a, b)
	case spanOverlap:
		return o.spanContains(a, b) || o.spanContains(b, a) || o.spansIntersect(a, b)
	case spanIdenticalCoverage:
		return a.left == b.left && a.right == b.right
	default:
		return false
	}
}

// spanContains reports whether b's span lies entirely within a's, using
// ordering distance from a.left as the comparable coordinate.
func (o *SpanOperator) spanContains(a, b span) bool {
	bStart, bOK := orderingDistance(o.g, a.left, b.left)
	bEnd, beOK := orderingDistance(o.g, a.left, b.right)
	if !bOK || !beOK || a.width < 0 {
		return false
	}
	return bStart >= 0 && bEnd <= a.width
}

// spansIntersect reports whether a's and b's ranges share any position,
// given both are anchored to a common origin reachable via ORDERING.
func (o *SpanOperator) spansIntersect(a, b span) bool {
	off, ok := orderingDistance(o.g, a.left, b.left)
	if !ok {
		return false
	}
	bEnd := off + b.width
	return off <= a.width && bEnd >= 0
}

// RetrieveMatches is unsupported for span operators: there is no indexed
// forward lookup for a derived token-span relation the way FindConnected
// walks a stored component. IsSeedable reports false so the planner never
// calls this; it always returns nil rather than silently scanning the
// whole node universe.
func (o *SpanOperator) RetrieveMatches(lhs graph.NodeID) []graph.NodeID {
	return nil
}

func (o *SpanOperator) IsReflexive() bool { return true }

func (o *SpanOperator) IsCommutative() bool { return o.kind != spanInclusion }

// IsSeedable is false: RetrieveMatches has no real candidate set to offer,
// so the planner must fall back to a nested-loop join instead of seeding.
func (o *SpanOperator) IsSeedable() bool { return false }

// Selectivity has no cheap aggregate estimator for derived span relations;
// returning a conservative, non-zero default lets the cost model still
// order joins without classifying the operator as empty.
func (o *SpanOperator) Selectivity() float64 { return 0.1 }

func (o *SpanOperator) Description() string {
	switch o.kind {
	case spanInclusion:
		return "Inclusion(_i_)"
	case spanOverlap:
		return "Overlap(_o_)"
	case spanIdenticalCoverage:
		return "IdenticalCoverage(_=_)"
	default:
		return "SpanOperator(?)"
	}
}
