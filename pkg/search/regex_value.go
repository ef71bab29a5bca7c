package search

import (
	"fmt"
	"regexp"

	"github.com/corpusql/annisquery/pkg/graph"
)

// RegexAnnoValue finds every node whose (optional namespace, name)
// annotation value fully matches pattern. It scans every value of each
// matching annotation key and tests it against the compiled pattern; unlike
// Interner.FindRegex, no prefix range bounds the scan.
type RegexAnnoValue struct {
	g       *graph.Graph
	nsRaw   string
	name    string
	pattern string

	re     *regexp.Regexp
	nameID graph.StringID
	nsID   graph.StringID

	matched []graph.Match
	pos     int

	resolvable bool
}

// NewRegexAnnoValue compiles pattern and resolves name/ns against g's
// interner. A compile failure or unresolvable name yields a permanently
// empty search, per the InvalidRegex error policy (recovered locally).
func NewRegexAnnoValue(g *graph.Graph, ns, name, pattern string) *RegexAnnoValue {
	s := &RegexAnnoValue{g: g, nsRaw: ns, name: name, pattern: pattern}
	s.resolve()
	return s
}

func (s *RegexAnnoValue) resolve() {
	re, err := regexp.Compile("^(?:" + s.pattern + ")$")
	if err != nil {
		return
	}
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
	s.re, s.nameID, s.nsID = re, nameID, nsID
	s.resolvable = true
	s.buildResults()
}

func (s *RegexAnnoValue) buildResults() {
	s.matched = s.matched[:0]
	for _, key := range s.g.Annos.MatchingKeys(s.nameID, s.nsID) {
		for _, n := range s.g.Annos.AllValues(key) {
			a, ok := s.g.Annos.Get(n, key.Ns, key.Name)
			if !ok {
				continue
			}
			val, err := s.g.Interner.Lookup(a.Value)
			if err != nil || !s.re.MatchString(val) {
				continue
			}
			s.matched = append(s.matched, graph.Match{Node: n, Anno: a})
		}
	}
	s.pos = 0
}

func (s *RegexAnnoValue) Next() (graph.Match, bool) {
	if !s.resolvable || s.pos >= len(s.matched) {
		return graph.Match{}, false
	}
	m := s.matched[s.pos]
	s.pos++
	return m, true
}

func (s *RegexAnnoValue) Reset() { s.pos = 0 }

func (s *RegexAnnoValue) GuessMaxCount() int64 {
	// The matched set is already materialized during resolution, so the
	// exact count is known rather than estimated.
	return int64(len(s.matched))
}

func (s *RegexAnnoValue) Description() string {
	return fmt.Sprintf("RegexAnnoValue(ns=%q, name=%q, pattern=%q)", s.nsRaw, s.name, s.pattern)
}

// ValidAnnotationSet implements search.ValidAnnotations using the
// materialized match set built during resolution.
func (s *RegexAnnoValue) ValidAnnotationSet() map[graph.Annotation]struct{} {
	out := make(map[graph.Annotation]struct{}, len(s.matched))
	for _, m := range s.matched {
		out[m.Anno] = struct{}{}
	}
	return out
}
