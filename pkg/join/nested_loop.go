package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/operator"
)

// NestedLoopJoin is the fallback join strategy: every outer tuple is paired
// against every inner tuple, kept when op.Filter holds between the operand
// columns. The inner iterator is reset and fully redrained per outer tuple.
// leftIsOuter records which side the planner chose as outer (by cardinality)
// and decides which operand drives the outer loop; the output tuple is always
// the lhs tuple followed by the rhs tuple, whichever side is outer.
type NestedLoopJoin struct {
	op operator.Operator

	outer    Iterator
	outerIdx int
	inner    Iterator
	innerIdx int

	leftIsOuter bool

	curOuter graph.Tuple
	haveCur  bool
	done     bool
}

// NewNestedLoopJoin builds a nested-loop join of lhs and rhs under op,
// joining lhs[lhsIdx] against rhs[rhsIdx]. leftIsOuter records the planner's
// outer-operand choice: when true, lhs drives the outer loop and rhs the
// inner; when false, the roles are swapped (rhs decides output order).
func NewNestedLoopJoin(op operator.Operator, lhs Iterator, rhs Iterator, lhsIdx, rhsIdx int, leftIsOuter bool) *NestedLoopJoin {
	j := &NestedLoopJoin{op: op, leftIsOuter: leftIsOuter}
	if leftIsOuter {
		j.outer, j.outerIdx = lhs, lhsIdx
		j.inner, j.innerIdx = rhs, rhsIdx
	} else {
		j.outer, j.outerIdx = rhs, rhsIdx
		j.inner, j.innerIdx = lhs, lhsIdx
	}
	return j
}

func (j *NestedLoopJoin) Next() (graph.Tuple, bool) {
	for {
		if !j.haveCur {
			t, ok := j.outer.Next()
			if !ok {
				j.done = true
			}
			j.curOuter = t
			j.haveCur = ok
			if j.haveCur {
				j.inner.Reset()
			}
		}
		if j.done {
			return nil, false
		}

		innerTuple, ok := j.inner.Next()
		if !ok {
			j.haveCur = false
			continue
		}

		outerMatch := j.curOuter[j.outerIdx]
		innerMatch := innerTuple[j.innerIdx]
		if !j.op.IsReflexive() && sameAnnotationKey(outerMatch, innerMatch) {
			continue
		}
		var lhsMatch, rhsMatch graph.Match
		if j.leftIsOuter {
			lhsMatch, rhsMatch = outerMatch, innerMatch
		} else {
			lhsMatch, rhsMatch = innerMatch, outerMatch
		}
		if !j.op.Filter(lhsMatch.Node, rhsMatch.Node) {
			continue
		}

		lhsTuple, rhsTuple := j.curOuter, innerTuple
		if !j.leftIsOuter {
			lhsTuple, rhsTuple = innerTuple, j.curOuter
		}
		t := extend(lhsTuple, rhsTuple[0])
		return append(t, rhsTuple[1:]...), true
	}
}

func (j *NestedLoopJoin) Reset() {
	j.outer.Reset()
	j.haveCur = false
	j.done = false
}
