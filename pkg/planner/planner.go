// Package planner builds a Node plan tree from a ParsedQuery against a
// bound graph, choosing join kinds and operand order by the cost model
// (base guesses, join/filter output and step-cost formulas) and caching
// built shapes in an injected plancache.Cache.
package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/logx"
	"github.com/corpusql/annisquery/pkg/operator"
	"github.com/corpusql/annisquery/pkg/plancache"
)

// ErrDisconnectedQuery is returned by Plan when the operator entries leave
// two or more node searches unconnected to each other.
var ErrDisconnectedQuery = errors.New("planner: query is not fully connected")

// ErrEmptyQuery is returned by Plan when the query has no node searches.
var ErrEmptyQuery = errors.New("planner: query has no node searches")

// Planner builds plan trees. log and cache are both optional: a nil cache
// disables shape caching, and log defaults to a no-op via logx.OrNoOp.
type Planner struct {
	log   logx.Logger
	cache *plancache.Cache
}

// New builds a Planner. cache may be nil to disable plan-shape caching.
func New(log logx.Logger, cache *plancache.Cache) *Planner {
	return &Planner{log: logx.OrNoOp(log), cache: cache}
}

// Plan builds a plan tree for query against g under cfg, consulting the
// plan-shape cache first when configured.
func (p *Planner) Plan(query ParsedQuery, g *graph.Graph, cfg QueryConfig) (*Node, error) {
	if len(query.Nodes) == 0 {
		return nil, ErrEmptyQuery
	}

	var cacheKey uint64
	if p.cache != nil {
		cacheKey = plancache.Key(canonicalQueryString(query))
		if cached, ok := p.cache.Get(cacheKey); ok {
			p.log.Debug("plan cache hit", "key", cacheKey)
			return cached.(*Node), nil
		}
	}

	root, err := p.build(query, g, cfg)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Put(cacheKey, root)
	}
	return root, nil
}

// build runs the four-step algorithm: initialize base nodes, run the
// optimizer's commutative-swap pre-pass, fold operator entries into
// filter/seed/nested-loop steps, and verify full connectivity.
func (p *Planner) build(query ParsedQuery, g *graph.Graph, cfg QueryConfig) (*Node, error) {
	bases := make([]*Node, len(query.Nodes))
	resolved := make([]*Node, len(query.Nodes))
	for i, spec := range query.Nodes {
		n, err := p.buildBaseNode(g, spec, i)
		if err != nil {
			return nil, err
		}
		bases[i] = n
		resolved[i] = n
	}

	ops := make([]operator.Operator, len(query.Operators))
	specs := append([]OperatorSpec(nil), query.Operators...)
	for i, spec := range specs {
		op, err := buildOperator(g, spec)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}

	if !cfg.DisableOptimizer && g.Annos.HasStatistics() {
		for i := range specs {
			spec := &specs[i]
			if !ops[i].IsCommutative() {
				continue
			}
			lhs, rhs := bases[spec.LHSIdx], bases[spec.RHSIdx]
			if lhs.Output > rhs.Output {
				spec.LHSIdx, spec.RHSIdx = spec.RHSIdx, spec.LHSIdx
			}
		}
	}

	for i, spec := range specs {
		op := ops[i]
		lhsNode := resolved[spec.LHSIdx]
		rhsNode := resolved[spec.RHSIdx]
		lhsCol := lhsNode.nodePos[spec.LHSIdx]
		rhsCol := rhsNode.nodePos[spec.RHSIdx]

		if lhsNode == rhsNode {
			merged := &Node{
				Kind:        KindFilter,
				OpSpec:      spec,
				LHSIdx:      lhsCol,
				RHSIdx:      rhsCol,
				LHS:         lhsNode,
				nodePos:     lhsNode.nodePos,
				componentID: lhsNode.componentID,
			}
			merged.selectivity = op.Selectivity()
			merged.Output = filterOutput(lhsNode.Output, merged.selectivity)
			merged.IntermediateSum = intermediateSum(lhsNode.IntermediateSum, 0, filterStepCost(lhsNode.Output))
			merged.description = fmt.Sprintf("Filter(%s) on cols %d,%d", op.Description(), lhsCol, rhsCol)
			p.reassign(resolved, merged)
			continue
		}

		merged := p.joinNodes(op, spec, lhsNode, rhsNode, lhsCol, rhsCol, cfg)
		p.reassign(resolved, merged)
	}

	root := resolved[0]
	for i := 1; i < len(resolved); i++ {
		if resolved[i] != root {
			return nil, fmt.Errorf("%w: node %d unreachable from node 0", ErrDisconnectedQuery, i)
		}
	}
	return root, nil
}

// buildBaseNode constructs a KindBase Node for query-node index idx, using a
// transient search instance only to read its cost-model inputs
// (GuessMaxCount, Description); the instance itself is discarded, since
// Instantiate rebuilds a fresh one against whatever graph actually executes
// the plan.
func (p *Planner) buildBaseNode(g *graph.Graph, spec NodeSearchSpec, idx int) (*Node, error) {
	s, err := buildSearch(g, spec)
	if err != nil {
		return nil, err
	}
	return &Node{
		Kind:        KindBase,
		SearchSpec:  spec,
		nodePos:     map[int]int{idx: 0},
		componentID: idx,
		Output:      guessOrDefault(s.GuessMaxCount()),
		description: s.Description(),
	}, nil
}

func guessOrDefault(guess int64) int64 {
	if guess <= 0 {
		return defaultGuess
	}
	return guess
}

// joinNodes picks seed, swapped-seed, or nested-loop for one operator entry
// whose operands are not yet in the same component, per step 2 of the
// algorithm.
func (p *Planner) joinNodes(op operator.Operator, spec OperatorSpec, lhsNode, rhsNode *Node, lhsCol, rhsCol int, cfg QueryConfig) *Node {
	switch {
	case op.IsSeedable() && rhsNode.Kind == KindBase && !spec.ForceNestedLoop:
		return p.seedNode(op, spec, lhsNode, rhsNode, lhsCol, rhsCol, false)

	case op.IsSeedable() && !cfg.DisableOptimizer && op.IsCommutative() && !spec.ForceNestedLoop && lhsNode.Kind == KindBase:
		return p.seedNode(op, spec, rhsNode, lhsNode, rhsCol, lhsCol, true)

	default:
		return p.nestedLoopNode(op, spec, lhsNode, rhsNode, lhsCol, rhsCol)
	}
}

// seedNode builds a KindSeed Node driving from drv (the non-base or
// chosen-driving operand) against base (always a KindBase operand). swapped
// records whether the physical LHS/RHS differ from the query's original
// operand order, purely for Description rendering.
func (p *Planner) seedNode(op operator.Operator, spec OperatorSpec, drv, base *Node, drvCol, baseCol int, swapped bool) *Node {
	merged := &Node{
		Kind:        KindSeed,
		OpSpec:      spec,
		LHSIdx:      drvCol,
		RHSIdx:      baseCol,
		LHS:         drv,
		RHS:         base,
		nodePos:     mergeNodePos(drv, base),
		componentID: drv.componentID,
	}
	sel := op.Selectivity()
	merged.selectivity = sel
	merged.Output = joinOutput(drv.Output, base.Output, sel)
	merged.IntermediateSum = intermediateSum(drv.IntermediateSum, base.IntermediateSum, seedStepCost(drv.Output, base.Output, sel))
	dir := ""
	if swapped {
		dir = " (swapped)"
	}
	merged.description = fmt.Sprintf("Seed(%s)%s", op.Description(), dir)
	return merged
}

// nestedLoopNode builds a KindNestedLoop Node, choosing the smaller operand
// as outer per the cost model (outer.output + outer.output*inner.output is
// minimized by the smaller side driving the outer loop).
func (p *Planner) nestedLoopNode(op operator.Operator, spec OperatorSpec, lhsNode, rhsNode *Node, lhsCol, rhsCol int) *Node {
	leftIsOuter := lhsNode.Output <= rhsNode.Output
	var outerOutput, innerOutput int64
	if leftIsOuter {
		outerOutput, innerOutput = lhsNode.Output, rhsNode.Output
	} else {
		outerOutput, innerOutput = rhsNode.Output, lhsNode.Output
	}

	merged := &Node{
		Kind:        KindNestedLoop,
		OpSpec:      spec,
		LHSIdx:      lhsCol,
		RHSIdx:      rhsCol,
		LeftIsOuter: leftIsOuter,
		LHS:         lhsNode,
		RHS:         rhsNode,
		nodePos:     mergeNodePos(lhsNode, rhsNode),
		componentID: lhsNode.componentID,
	}
	sel := op.Selectivity()
	merged.selectivity = sel
	merged.Output = joinOutput(lhsNode.Output, rhsNode.Output, sel)
	merged.IntermediateSum = intermediateSum(lhsNode.IntermediateSum, rhsNode.IntermediateSum, nestedLoopStepCost(outerOutput, innerOutput))
	merged.description = fmt.Sprintf("NestedLoop(%s, outer=%s)", op.Description(), outerLabel(leftIsOuter))
	return merged
}

func outerLabel(leftIsOuter bool) string {
	if leftIsOuter {
		return "lhs"
	}
	return "rhs"
}

// mergeNodePos combines lhs's column map unchanged with rhs's, whose
// columns are shifted past lhs's, per step 3 of the algorithm.
func mergeNodePos(lhs, rhs *Node) map[int]int {
	out := make(map[int]int, len(lhs.nodePos)+len(rhs.nodePos))
	for k, v := range lhs.nodePos {
		out[k] = v
	}
	shift := len(lhs.nodePos)
	for k, v := range rhs.nodePos {
		out[k] = v + shift
	}
	return out
}

// reassign points every query-node index covered by merged at merged itself,
// so subsequent operator entries referencing any of those indices see the
// merged subtree as their current component.
func (p *Planner) reassign(resolved []*Node, merged *Node) {
	for idx := range merged.nodePos {
		resolved[idx] = merged
	}
}

// canonicalQueryString renders query into a deterministic string containing
// only structural information (no bound graph state), suitable for hashing
// into a plancache.Key.
func canonicalQueryString(query ParsedQuery) string {
	var b strings.Builder
	for _, n := range query.Nodes {
		b.WriteString("N|")
		b.WriteString(strconv.Itoa(int(n.Kind)))
		b.WriteByte('|')
		b.WriteString(n.Ns)
		b.WriteByte('|')
		b.WriteString(n.Name)
		b.WriteByte('|')
		b.WriteString(n.Value)
		b.WriteByte(';')
	}
	for _, o := range query.Operators {
		b.WriteString("O|")
		b.WriteString(strconv.Itoa(int(o.Kind)))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(o.LHSIdx))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(o.RHSIdx))
		b.WriteByte('|')
		b.WriteString(o.Layer)
		b.WriteByte('|')
		b.WriteString(o.Name)
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(o.MinDist))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(o.MaxDist))
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(o.ForceNestedLoop))
		b.WriteByte(';')
	}
	return b.String()
}
