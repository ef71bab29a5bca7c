package search

import (
	"fmt"

	"github.com/corpusql/annisquery/pkg/graph"
)

// ConstAnnotation wraps another Search, replacing every emitted
// Annotation with a caller-supplied constant and de-duplicating by node
// id. Used when a query treats the matched annotation as a node-identity
// proxy rather than caring about which specific label matched (e.g. an
// operator operand that only needs "some node satisfying this predicate").
type ConstAnnotation struct {
	inner Search
	anno  graph.Annotation

	seen map[graph.NodeID]struct{}
}

// NewConstAnnotation wraps inner, replacing every Match's Annotation with
// anno.
func NewConstAnnotation(inner Search, anno graph.Annotation) *ConstAnnotation {
	return &ConstAnnotation{inner: inner, anno: anno, seen: make(map[graph.NodeID]struct{})}
}

func (s *ConstAnnotation) Next() (graph.Match, bool) {
	for {
		m, ok := s.inner.Next()
		if !ok {
			return graph.Match{}, false
		}
		if _, dup := s.seen[m.Node]; dup {
			continue
		}
		s.seen[m.Node] = struct{}{}
		return graph.Match{Node: m.Node, Anno: s.anno}, true
	}
}

func (s *ConstAnnotation) Reset() {
	s.inner.Reset()
	s.seen = make(map[graph.NodeID]struct{})
}

func (s *ConstAnnotation) GuessMaxCount() int64 { return s.inner.GuessMaxCount() }

func (s *ConstAnnotation) Description() string {
	return fmt.Sprintf("ConstAnnotation(%s)", s.inner.Description())
}
