package join

import (
	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/operator"
	"github.com/corpusql/annisquery/pkg/taskpool"
)

// taskResult is what a submitted per-lhs-row computation returns: the
// candidates and generated rhs annotations a plain IndexJoin would have
// computed synchronously, paired back up with their lhs tuple.
type taskResult struct {
	lhsTuple   graph.Tuple
	candidates []graph.NodeID
	pending    [][]graph.Annotation // pending[i] corresponds to candidates[i]
}

// TaskIndexJoin has the identical contract to IndexJoin but submits each
// lhs row's RetrieveMatches+MatchGenerator fan-out to a bounded taskpool.Pool,
// draining results in submission order so output stays grouped and ordered
// per lhs row exactly as the non-parallel IndexJoin would produce it. With a
// nil pool it degrades to synchronous per-row evaluation on the consuming
// goroutine.
type TaskIndexJoin struct {
	op     operator.Operator
	lhs    Iterator
	lhsIdx int
	gen    MatchGenerator
	pool   *taskpool.Pool
	maxInF int

	inFlight []<-chan any
	lhsQueue []graph.Tuple
	lhsDone  bool

	curResult  *taskResult
	curPos     int
	curPending int
}

// NewTaskIndexJoin builds a TaskIndexJoin. maxInFlight bounds how many lhs
// rows may have outstanding submitted work simultaneously; p may be nil to
// force synchronous evaluation.
func NewTaskIndexJoin(op operator.Operator, lhs Iterator, lhsIdx int, gen MatchGenerator, p *taskpool.Pool, maxInFlight int) *TaskIndexJoin {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &TaskIndexJoin{op: op, lhs: lhs, lhsIdx: lhsIdx, gen: gen, pool: p, maxInF: maxInFlight}
}

func (j *TaskIndexJoin) submitNext() bool {
	t, ok := j.lhs.Next()
	if !ok {
		j.lhsDone = true
		return false
	}
	lhsCopy := append(graph.Tuple(nil), t...)

	compute := func() any {
		cands := j.op.RetrieveMatches(lhsCopy[j.lhsIdx].Node)
		pending := make([][]graph.Annotation, len(cands))
		for i, c := range cands {
			pending[i] = j.gen(c)
		}
		return taskResult{lhsTuple: lhsCopy, candidates: cands, pending: pending}
	}

	if j.pool == nil {
		ch := make(chan any, 1)
		ch <- compute()
		j.inFlight = append(j.inFlight, ch)
	} else {
		j.inFlight = append(j.inFlight, j.pool.Submit(compute))
	}
	return true
}

func (j *TaskIndexJoin) fillPipeline() {
	for !j.lhsDone && len(j.inFlight) < j.maxInF {
		if !j.submitNext() {
			break
		}
	}
}

func (j *TaskIndexJoin) Next() (graph.Tuple, bool) {
	for {
		if j.curResult != nil {
			for j.curPos < len(j.curResult.candidates) {
				pending := j.curResult.pending[j.curPos]
				if j.curPending < len(pending) {
					anno := pending[j.curPending]
					j.curPending++
					rhsMatch := graph.Match{Node: j.curResult.candidates[j.curPos], Anno: anno}
					lhsMatch := j.curResult.lhsTuple[j.lhsIdx]
					if !j.op.IsReflexive() && sameAnnotationKey(lhsMatch, rhsMatch) {
						continue
					}
					return extend(j.curResult.lhsTuple, rhsMatch), true
				}
				j.curPos++
				j.curPending = 0
			}
			j.curResult = nil
		}

		j.fillPipeline()
		if len(j.inFlight) == 0 {
			return nil, false
		}

		res := (<-j.inFlight[0]).(taskResult)
		j.inFlight = j.inFlight[1:]
		j.curResult = &res
		j.curPos, j.curPending = 0, 0
	}
}

func (j *TaskIndexJoin) Reset() {
	j.lhs.Reset()
	j.inFlight = nil
	j.lhsDone = false
	j.curResult = nil
	j.curPos, j.curPending = 0, 0
}
