package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/operator"
)

// candidateVerifier checks whether a candidate node produced by
// op.RetrieveMatches satisfies the rhs operand's own annotation predicate,
// since RetrieveMatches only expresses the structural relation. It returns
// the Annotation to attach to the candidate's tuple column when satisfied.
type candidateVerifier func(graph.NodeID) (graph.Annotation, bool)

// SeedJoin drives from lhs: for every lhs tuple, it calls
// op.RetrieveMatches(lhs[lhsIdx]) and keeps candidates the verifier
// confirms, applying the reflexivity-skip rule.
type SeedJoin struct {
	op     operator.Operator
	lhs    Iterator
	lhsIdx int
	verify candidateVerifier

	curLHS     graph.Tuple
	candidates []graph.NodeID
	pos        int
	haveLHS    bool
	done       bool
}

// NewSeedJoin builds a SeedJoin with a caller-supplied verifier. The
// materialized and key-only variants below are convenience constructors
// over this one.
func NewSeedJoin(op operator.Operator, lhs Iterator, lhsIdx int, verify candidateVerifier) *SeedJoin {
	return &SeedJoin{op: op, lhs: lhs, lhsIdx: lhsIdx, verify: verify}
}

// NewSeedJoinFromAnnotations builds a SeedJoin whose candidates are verified
// against a materialized set of valid (name, ns, value) annotations, as
// exposed by search.ValidAnnotations on the rhs leaf search. g resolves a
// candidate node's annotation for each key appearing in valid.
func NewSeedJoinFromAnnotations(g *graph.AnnotationIndex, op operator.Operator, lhs Iterator, lhsIdx int, valid map[graph.Annotation]struct{}) *SeedJoin {
	keys := make(map[graph.AnnotationKey]struct{}, len(valid))
	for a := range valid {
		keys[graph.AnnotationKey{Name: a.Name, Ns: a.Ns}] = struct{}{}
	}
	verify := func(n graph.NodeID) (graph.Annotation, bool) {
		for key := range keys {
			if a, ok := g.Get(n, key.Ns, key.Name); ok {
				if _, isValid := valid[a]; isValid {
					return a, true
				}
			}
		}
		return graph.Annotation{}, false
	}
	return NewSeedJoin(op, lhs, lhsIdx, verify)
}

// NewSeedJoinFromKeys builds a SeedJoin whose candidates are verified only
// against a set of valid annotation keys (value-agnostic), as exposed by
// search.ValidKeys on the rhs leaf search.
func NewSeedJoinFromKeys(g *graph.AnnotationIndex, op operator.Operator, lhs Iterator, lhsIdx int, validKeys []graph.AnnotationKey) *SeedJoin {
	verify := func(n graph.NodeID) (graph.Annotation, bool) {
		for _, key := range validKeys {
			if a, ok := g.Get(n, key.Ns, key.Name); ok {
				return a, true
			}
		}
		return graph.Annotation{}, false
	}
	return NewSeedJoin(op, lhs, lhsIdx, verify)
}

func (j *SeedJoin) Next() (graph.Tuple, bool) {
	for {
		if !j.haveLHS {
			t, ok := j.lhs.Next()
			if !ok {
				j.done = true
			}
			if ok {
				j.curLHS = t
				j.candidates = j.op.RetrieveMatches(t[j.lhsIdx].Node)
				j.pos = 0
				j.haveLHS = true
			}
		}
		if j.done {
			return nil, false
		}

		if j.pos >= len(j.candidates) {
			j.haveLHS = false
			continue
		}
		cand := j.candidates[j.pos]
		j.pos++

		anno, ok := j.verify(cand)
		if !ok {
			continue
		}
		rhsMatch := graph.Match{Node: cand, Anno: anno}
		lhsMatch := j.curLHS[j.lhsIdx]
		if !j.op.IsReflexive() && sameAnnotationKey(lhsMatch, rhsMatch) {
			continue
		}
		return extend(j.curLHS, rhsMatch), true
	}
}

func (j *SeedJoin) Reset() {
	j.lhs.Reset()
	j.haveLHS = false
	j.done = false
	j.candidates = nil
	j.pos = 0
}
