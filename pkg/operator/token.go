package operator

import "github.com/corpusql/annisquery/pkg/graph"

// TokenHelper resolves the leftmost/rightmost token covered by a node via
// the synthetic LEFT_TOKEN and RIGHT_TOKEN components. Tokens are
// self-aligned by convention: a node carrying the reserved (annis, tok)
// label has no outgoing LEFT_TOKEN/RIGHT_TOKEN edge, so LeftToken/RightToken
// fall back to returning the node itself.
type TokenHelper struct {
	g        *graph.Graph
	tokAnno  graph.Annotation
	tokKnown bool
}

// NewTokenHelper resolves the reserved (annis, tok) key against g's
// interner, if present.
func NewTokenHelper(g *graph.Graph) *TokenHelper {
	h := &TokenHelper{g: g}
	ns, ok1 := g.Interner.FindID("annis")
	name, ok2 := g.Interner.FindID("tok")
	if ok1 && ok2 {
		h.tokAnno = graph.Annotation{Ns: ns, Name: name}
		h.tokKnown = true
	}
	return h
}

// IsToken reports whether node carries the reserved (annis, tok) label.
func (h *TokenHelper) IsToken(node graph.NodeID) bool {
	if !h.tokKnown {
		return false
	}
	_, ok := h.g.Annos.Get(node, h.tokAnno.Ns, h.tokAnno.Name)
	return ok
}

// LeftToken returns the leftmost token covered by node, or node itself when
// node is already a token or carries no LEFT_TOKEN edge.
func (h *TokenHelper) LeftToken(node graph.NodeID) graph.NodeID {
	return h.followSingle(graph.LeftToken, node)
}

// RightToken returns the rightmost token covered by node, or node itself
// under the same fallback rule as LeftToken.
func (h *TokenHelper) RightToken(node graph.NodeID) graph.NodeID {
	return h.followSingle(graph.RightToken, node)
}

func (h *TokenHelper) followSingle(t graph.ComponentType, node graph.NodeID) graph.NodeID {
	if h.IsToken(node) {
		return node
	}
	for _, comp := range h.g.ComponentsOfType(t) {
		out := h.g.Component(comp).OutgoingEdges(node)
		if len(out) > 0 {
			return out[0]
		}
	}
	return node
}

// orderingDistance returns the signed precedence distance from a to b along
// the default ordering component (positive when b follows a), or false if
// a and b are not connected in either direction.
func orderingDistance(g *graph.Graph, a, b graph.NodeID) (int, bool) {
	for _, comp := range g.ComponentsOfType(graph.Ordering) {
		storage := g.Component(comp)
		if d := storage.Distance(a, b); d >= 0 {
			return d, true
		}
		if d := storage.Distance(b, a); d >= 0 {
			return -d, true
		}
	}
	return 0, false
}
