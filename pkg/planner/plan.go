package planner

import (
	"fmt"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/join"
	"github.com/corpusql/annisquery/pkg/operator"
	"github.com/corpusql/annisquery/pkg/pool"
	"github.com/corpusql/annisquery/pkg/search"
	"github.com/corpusql/annisquery/pkg/taskpool"
)

// Kind identifies a plan node's shape: a leaf search, a same-component
// filter, a nested-loop join, or a seed join.
type Kind int

const (
	KindBase Kind = iota
	KindFilter
	KindNestedLoop
	KindSeed
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindFilter:
		return "filter"
	case KindNestedLoop:
		return "nested_loop"
	case KindSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// Node is one element of a built plan tree: its static shape and
// parameters (cacheable, independent of any bound graph) plus the cost
// estimates computed against the graph that produced it. LHS/RHS are nil
// for a base node; RHS is nil for filter (both operands already live in
// LHS's tuple).
type Node struct {
	Kind Kind

	// Base-only.
	SearchSpec NodeSearchSpec

	// Filter/join-only.
	OpSpec      OperatorSpec
	LHSIdx      int // column index within the relevant side's tuple
	RHSIdx      int
	LeftIsOuter bool // nested_loop only

	LHS, RHS *Node

	// nodePos maps original query-node index -> this node's output column.
	nodePos map[int]int
	// componentID groups query nodes already joined through this subtree.
	componentID int

	Output          int64
	IntermediateSum int64
	selectivity     float64
	description     string
}

// Instantiate binds a plan shape to a concrete graph, building the
// search/operator/iterator tree that actually produces tuples. p, when
// non-nil, is used by seed steps under cfg.UseTaskPool.
func (n *Node) Instantiate(g *graph.Graph, cfg QueryConfig, p *taskpool.Pool) (join.Iterator, error) {
	switch n.Kind {
	case KindBase:
		s, err := buildSearch(g, n.SearchSpec)
		if err != nil {
			return nil, err
		}
		return join.NewBaseIterator(s), nil

	case KindFilter:
		lhsIter, err := n.LHS.Instantiate(g, cfg, p)
		if err != nil {
			return nil, err
		}
		op, err := buildOperator(g, n.OpSpec)
		if err != nil {
			return nil, err
		}
		return join.NewFilter(op, lhsIter, n.LHSIdx, n.RHSIdx), nil

	case KindNestedLoop:
		lhsIter, err := n.LHS.Instantiate(g, cfg, p)
		if err != nil {
			return nil, err
		}
		rhsIter, err := n.RHS.Instantiate(g, cfg, p)
		if err != nil {
			return nil, err
		}
		op, err := buildOperator(g, n.OpSpec)
		if err != nil {
			return nil, err
		}
		return join.NewNestedLoopJoin(op, lhsIter, rhsIter, n.LHSIdx, n.RHSIdx, n.LeftIsOuter), nil

	case KindSeed:
		lhsIter, err := n.LHS.Instantiate(g, cfg, p)
		if err != nil {
			return nil, err
		}
		op, err := buildOperator(g, n.OpSpec)
		if err != nil {
			return nil, err
		}
		rhsSearch, err := buildSearch(g, n.RHS.SearchSpec)
		if err != nil {
			return nil, err
		}
		return instantiateSeed(g, op, lhsIter, n.LHSIdx, rhsSearch, cfg, p)
	}
	return nil, fmt.Errorf("planner: unknown plan node kind %v", n.Kind)
}

// instantiateSeed chooses among SeedJoin, IndexJoin, and TaskIndexJoin per
// QueryConfig: a task pool wins when configured, else an explicit
// IndexJoin preference, else the plain annotation/key-verified SeedJoin.
func instantiateSeed(g *graph.Graph, op operator.Operator, lhsIter join.Iterator, lhsIdx int, rhsSearch search.Search, cfg QueryConfig, p *taskpool.Pool) (join.Iterator, error) {
	gen := matchGeneratorFor(g, rhsSearch)

	if cfg.UseTaskPool && p != nil {
		return join.NewTaskIndexJoin(op, lhsIter, lhsIdx, gen, p, max(1, cfg.TaskPoolSize*2)), nil
	}
	if cfg.PreferIndexJoin {
		return join.NewIndexJoin(op, lhsIter, lhsIdx, gen), nil
	}
	if va, ok := rhsSearch.(search.ValidAnnotations); ok {
		return join.NewSeedJoinFromAnnotations(g.Annos, op, lhsIter, lhsIdx, va.ValidAnnotationSet()), nil
	}
	if vk, ok := rhsSearch.(search.ValidKeys); ok {
		return join.NewSeedJoinFromKeys(g.Annos, op, lhsIter, lhsIdx, vk.ValidKeySet()), nil
	}
	return join.NewIndexJoin(op, lhsIter, lhsIdx, gen), nil
}

// matchGeneratorFor derives a join.MatchGenerator from an rhs leaf search's
// materialized valid set, falling back to a direct annotation-index lookup
// when the search exposes neither ValidAnnotations nor ValidKeys.
func matchGeneratorFor(g *graph.Graph, s search.Search) join.MatchGenerator {
	if va, ok := s.(search.ValidAnnotations); ok {
		valid := va.ValidAnnotationSet()
		keys := make(map[graph.AnnotationKey]struct{})
		for a := range valid {
			keys[graph.AnnotationKey{Name: a.Name, Ns: a.Ns}] = struct{}{}
		}
		return func(n graph.NodeID) []graph.Annotation {
			var out []graph.Annotation
			for key := range keys {
				if a, ok := g.Annos.Get(n, key.Ns, key.Name); ok {
					if _, isValid := valid[a]; isValid {
						out = append(out, a)
					}
				}
			}
			return out
		}
	}
	if vk, ok := s.(search.ValidKeys); ok {
		keys := vk.ValidKeySet()
		return func(n graph.NodeID) []graph.Annotation {
			var out []graph.Annotation
			for _, key := range keys {
				if a, ok := g.Annos.Get(n, key.Ns, key.Name); ok {
					out = append(out, a)
				}
			}
			return out
		}
	}
	return func(n graph.NodeID) []graph.Annotation { return nil }
}

func buildSearch(g *graph.Graph, spec NodeSearchSpec) (search.Search, error) {
	switch spec.Kind {
	case SearchExactValue:
		return search.NewExactAnnoValue(g, spec.Ns, spec.Name, spec.Value), nil
	case SearchExactKey:
		return search.NewExactAnnoKey(g, spec.Ns, spec.Name), nil
	case SearchRegexValue:
		return search.NewRegexAnnoValue(g, spec.Ns, spec.Name, spec.Value), nil
	default:
		return nil, fmt.Errorf("planner: unknown node search kind %v", spec.Kind)
	}
}

func buildOperator(g *graph.Graph, spec OperatorSpec) (operator.Operator, error) {
	switch spec.Kind {
	case OpPrecedence:
		return operator.NewPrecedence(g, spec.Layer, spec.MinDist, spec.MaxDist), nil
	case OpDominance:
		return operator.NewDominance(g, spec.Layer, spec.Name, spec.MinDist, spec.MaxDist, nil), nil
	case OpPointing:
		return operator.NewPointing(g, spec.Layer, spec.Name, spec.MinDist, spec.MaxDist, nil), nil
	case OpInclusion:
		return operator.NewInclusion(g), nil
	case OpOverlap:
		return operator.NewOverlap(g), nil
	case OpIdenticalCoverage:
		return operator.NewIdenticalCoverage(g), nil
	default:
		return nil, fmt.Errorf("planner: unknown operator kind %v", spec.Kind)
	}
}

// DebugString renders the plan tree with per-node kind, description, and
// cost estimates, for the execution driver's introspection output.
func (n *Node) DebugString() string {
	b := pool.GetStringBuilder()
	defer pool.PutStringBuilder(b)
	n.writeDebug(b, 0)
	return b.String()
}

func (n *Node) writeDebug(b *pool.PooledStringBuilder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteString("  ")
	}
	b.WriteString(fmt.Sprintf("%s output=%d cost=%d sel=%.4f %s\n", n.Kind, n.Output, n.IntermediateSum, n.selectivity, n.description))
	if n.LHS != nil {
		n.LHS.writeDebug(b, indent+1)
	}
	if n.RHS != nil {
		n.RHS.writeDebug(b, indent+1)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
