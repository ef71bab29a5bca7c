// Package join implements the tuple-producing join iterators that combine a
// base search or prior join result with an operator-constrained operand:
// nested-loop, seed, index, task-index (parallel), and same-component
// filter. Every iterator consumes tuples from an Iterator and, except
// Filter, extends each by the other operand's columns: one column for a
// seed/index join, every column of the rhs tuple for a nested-loop join.
package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/pool"
	"github.com/corpusql/annisquery/pkg/search"
)

// Iterator produces graph.Tuple values one at a time. Unlike search.Search,
// an Iterator's tuples may have more than one column, one per query node
// resolved so far. Iterators are not safe for concurrent use.
type Iterator interface {
	// Next returns the next tuple, or ok=false once exhausted.
	Next() (graph.Tuple, bool)

	// Reset rewinds the iterator so it can be drained again.
	Reset()
}

// BaseIterator adapts a search.Search into a single-column Iterator, the
// leaf of every plan tree.
type BaseIterator struct {
	s search.Search
}

// NewBaseIterator wraps s.
func NewBaseIterator(s search.Search) *BaseIterator {
	return &BaseIterator{s: s}
}

func (b *BaseIterator) Next() (graph.Tuple, bool) {
	m, ok := b.s.Next()
	if !ok {
		return nil, false
	}
	t := pool.GetTuple()
	t = append(t, m)
	return t, true
}

func (b *BaseIterator) Reset() { b.s.Reset() }

// sameAnnotationKey reports whether two matches share a (name, ns) key,
// used by the reflexivity-skip rule: a non-reflexive operator must discard
// an (outer, inner) pair that names the same node under the same key.
func sameAnnotationKey(a, b graph.Match) bool {
	return a.Node == b.Node && a.Anno.Name == b.Anno.Name && a.Anno.Ns == b.Anno.Ns
}

// extend returns a new tuple (len(lhs)+1) built from lhs plus rhs,
// allocated from the tuple pool.
func extend(lhs graph.Tuple, rhs graph.Match) graph.Tuple {
	t := pool.GetTuple()
	t = append(t, lhs...)
	t = append(t, rhs)
	return t
}
