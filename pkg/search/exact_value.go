package search

import (
	"fmt"

	"github.com/corpusql/annisquery/pkg/graph"
)

// ExactAnnoValue finds every node carrying an annotation with the given
// (optional namespace, name, value). When ns is empty, it unions over
// every key sharing name that has an annotation equal to value.
type ExactAnnoValue struct {
	g          *graph.Graph
	nsRaw      string
	name       string
	value      string
	nameID     graph.StringID
	nsID       graph.StringID
	valueID    graph.StringID
	resolvable bool

	keys []graph.AnnotationKey
	node    []graph.NodeID        // flattened results across all matching keys
	nodeKey []graph.AnnotationKey // nodeKey[i] is the key node[i] matched under
	pos     int
}

// NewExactAnnoValue resolves ns/name/value against g's interner eagerly:
// if any component does not exist, the search is permanently empty (per
// the design's "search short-circuits to empty" error policy).
func NewExactAnnoValue(g *graph.Graph, ns, name, value string) *ExactAnnoValue {
	s := &ExactAnnoValue{g: g, nsRaw: ns, name: name, value: value}
	s.resolve()
	return s
}

func (s *ExactAnnoValue) resolve() {
	nameID, ok := s.g.Interner.FindID(s.name)
	if !ok {
		return
	}
	valueID, ok := s.g.Interner.FindID(s.value)
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
	s.nameID, s.valueID, s.nsID = nameID, valueID, nsID
	s.keys = s.g.Annos.MatchingKeys(nameID, nsID)
	s.resolvable = true
	s.buildResults()
}

func (s *ExactAnnoValue) buildResults() {
	s.node = s.node[:0]
	s.nodeKey = s.nodeKey[:0]
	for _, key := range s.keys {
		for _, n := range s.g.Annos.ExactValue(key, s.valueID) {
			s.node = append(s.node, n)
			s.nodeKey = append(s.nodeKey, key)
		}
	}
	s.pos = 0
}

func (s *ExactAnnoValue) Next() (graph.Match, bool) {
	if !s.resolvable || s.pos >= len(s.node) {
		return graph.Match{}, false
	}
	node, key := s.node[s.pos], s.nodeKey[s.pos]
	s.pos++
	return graph.Match{Node: node, Anno: graph.Annotation{Name: key.Name, Ns: key.Ns, Value: s.valueID}}, true
}

func (s *ExactAnnoValue) Reset() { s.pos = 0 }

// GuessMaxCount sums histogram-based estimates over every matching key,
// with 1 as the special case for the unique node-name key.
func (s *ExactAnnoValue) GuessMaxCount() int64 {
	if !s.resolvable {
		return 0
	}
	if s.isNodeNameKey() {
		return 1
	}
	if !s.g.Annos.HasStatistics() {
		return defaultGuess
	}
	valStr, err := s.g.Interner.Lookup(s.valueID)
	if err != nil {
		return defaultGuess
	}
	return s.g.Annos.EstimateCardinality(s.nsID, s.nameID, valStr, valStr)
}

func (s *ExactAnnoValue) isNodeNameKey() bool {
	annisNs, ok := s.g.Interner.FindID("annis")
	if !ok {
		return false
	}
	nodeNameKey, ok := s.g.Interner.FindID("node_name")
	if !ok {
		return false
	}
	return s.nameID == nodeNameKey && (s.nsID == graph.AnyString || s.nsID == annisNs)
}

func (s *ExactAnnoValue) Description() string {
	return fmt.Sprintf("ExactAnnoValue(ns=%q, name=%q, value=%q)", s.nsRaw, s.name, s.value)
}

// ValidAnnotationSet implements search.ValidAnnotations: this search
// matches exactly one Annotation value per resolved key, so the valid set
// is small and cheap to materialize.
func (s *ExactAnnoValue) ValidAnnotationSet() map[graph.Annotation]struct{} {
	out := make(map[graph.Annotation]struct{}, len(s.keys))
	for _, key := range s.keys {
		out[graph.Annotation{Name: key.Name, Ns: key.Ns, Value: s.valueID}] = struct{}{}
	}
	return out
}
