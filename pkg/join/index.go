package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/operator"
)

// MatchGenerator derives the rhs constraint for a candidate node, returning
// the annotations that would make that node a valid rhs match. It is
// typically built from the rhs leaf search's ValidAnnotations/ValidKeys set,
// the same inputs SeedJoin's verifier uses, expressed instead as a
// node-indexed function so IndexJoin can be driven by an arbitrary rhs
// predicate rather than only full re-verification against a static set.
type MatchGenerator func(graph.NodeID) []graph.Annotation

// IndexJoin is a SeedJoin variant parameterized directly by a
// MatchGenerator instead of a static valid set, letting callers express
// rhs constraints that depend on more than annotation equality.
type IndexJoin struct {
	op     operator.Operator
	lhs    Iterator
	lhsIdx int
	gen    MatchGenerator

	curLHS     graph.Tuple
	candidates []graph.NodeID
	pos        int
	pending    []graph.Annotation
	pendingPos int
	haveLHS    bool
	done       bool
}

// NewIndexJoin builds an IndexJoin driving from lhs, joining on
// lhs[lhsIdx], generating rhs annotations for each structural candidate via
// gen.
func NewIndexJoin(op operator.Operator, lhs Iterator, lhsIdx int, gen MatchGenerator) *IndexJoin {
	return &IndexJoin{op: op, lhs: lhs, lhsIdx: lhsIdx, gen: gen}
}

func (j *IndexJoin) Next() (graph.Tuple, bool) {
	for {
		if j.pendingPos < len(j.pending) {
			anno := j.pending[j.pendingPos]
			j.pendingPos++
			rhsMatch := graph.Match{Node: j.candidates[j.pos-1], Anno: anno}
			lhsMatch := j.curLHS[j.lhsIdx]
			if !j.op.IsReflexive() && sameAnnotationKey(lhsMatch, rhsMatch) {
				continue
			}
			return extend(j.curLHS, rhsMatch), true
		}

		if !j.haveLHS {
			t, ok := j.lhs.Next()
			if !ok {
				j.done = true
				return nil, false
			}
			j.curLHS = t
			j.candidates = j.op.RetrieveMatches(t[j.lhsIdx].Node)
			j.pos = 0
			j.haveLHS = true
		}

		if j.pos >= len(j.candidates) {
			j.haveLHS = false
			continue
		}
		j.pos++
		j.pending = j.gen(j.candidates[j.pos-1])
		j.pendingPos = 0
	}
}

func (j *IndexJoin) Reset() {
	j.lhs.Reset()
	j.haveLHS = false
	j.done = false
	j.candidates = nil
	j.pending = nil
	j.pos, j.pendingPos = 0, 0
}
