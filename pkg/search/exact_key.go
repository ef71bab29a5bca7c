package search

import (
	"fmt"

	"github.com/corpusql/annisquery/pkg/graph"
)

// ExactAnnoKey iterates every node having any value for a matching key:
// (optional namespace, name). Unlike ExactAnnoValue it never constrains
// value, so it is the cheap path for "does this node carry this label at
// all" predicates.
type ExactAnnoKey struct {
	g      *graph.Graph
	nsRaw  string
	name   string
	nameID graph.StringID
	nsID   graph.StringID

	keys []graph.AnnotationKey
	node []graph.NodeID
	anno []graph.Annotation
	pos  int

	resolvable bool
}

// NewExactAnnoKey resolves name (and ns, if non-empty) against g's
// interner. An unresolvable name yields a permanently empty search.
func NewExactAnnoKey(g *graph.Graph, ns, name string) *ExactAnnoKey {
	s := &ExactAnnoKey{g: g, nsRaw: ns, name: name}
	s.resolve()
	return s
}

func (s *ExactAnnoKey) resolve() {
	nameID, ok := s.g.Interner.FindID(s.name)
	if !ok {
		return
	}
	nsID := graph.AnyString
	if s.nsRaw != "" {
		id, ok := s.g.Interner.FindID(s.nsRaw)
		if !ok {
			return
		}
		nsID = id
	}
	s.nameID, s.nsID = nameID, nsID
	s.keys = s.g.Annos.MatchingKeys(nameID, nsID)
	s.resolvable = true
	s.buildResults()
}

func (s *ExactAnnoKey) buildResults() {
	s.node = s.node[:0]
	s.anno = s.anno[:0]
	for _, key := range s.keys {
		for _, n := range s.g.Annos.AllValues(key) {
			if a, ok := s.g.Annos.Get(n, key.Ns, key.Name); ok {
				s.node = append(s.node, n)
				s.anno = append(s.anno, a)
			}
		}
	}
	s.pos = 0
}

func (s *ExactAnnoKey) Next() (graph.Match, bool) {
	if !s.resolvable || s.pos >= len(s.node) {
		return graph.Match{}, false
	}
	m := graph.Match{Node: s.node[s.pos], Anno: s.anno[s.pos]}
	s.pos++
	return m, true
}

func (s *ExactAnnoKey) Reset() { s.pos = 0 }

func (s *ExactAnnoKey) GuessMaxCount() int64 {
	if !s.resolvable {
		return 0
	}
	if !s.g.Annos.HasStatistics() {
		return defaultGuess
	}
	var total int64
	for _, key := range s.keys {
		total += s.g.Annos.KeyCount(key)
	}
	return total
}

func (s *ExactAnnoKey) Description() string {
	return fmt.Sprintf("ExactAnnoKey(ns=%q, name=%q)", s.nsRaw, s.name)
}

// ValidKeySet implements search.ValidKeys.
func (s *ExactAnnoKey) ValidKeySet() []graph.AnnotationKey {
	out := make([]graph.AnnotationKey, len(s.keys))
	copy(out, s.keys)
	return out
}
