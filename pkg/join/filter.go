package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/operator"
)

// Filter keeps tuples from src where op.Filter holds between the two
// columns lhsIdx and rhsIdx, which already coexist in the same tuple
// because their plan nodes were previously merged into one connected
// component. Unlike the other join kinds, Filter never extends the tuple.
type Filter struct {
	op             operator.Operator
	src            Iterator
	lhsIdx, rhsIdx int
}

// NewFilter builds a Filter over src, testing op.Filter(tuple[lhsIdx],
// tuple[rhsIdx]) per tuple.
func NewFilter(op operator.Operator, src Iterator, lhsIdx, rhsIdx int) *Filter {
	return &Filter{op: op, src: src, lhsIdx: lhsIdx, rhsIdx: rhsIdx}
}

func (f *Filter) Next() (graph.Tuple, bool) {
	for {
		t, ok := f.src.Next()
		if !ok {
			return nil, false
		}
		lhs, rhs := t[f.lhsIdx], t[f.rhsIdx]
		if !f.op.IsReflexive() && sameAnnotationKey(lhs, rhs) {
			continue
		}
		if f.op.Filter(lhs.Node, rhs.Node) {
			return t, true
		}
	}
}

func (f *Filter) Reset() { f.src.Reset() }
