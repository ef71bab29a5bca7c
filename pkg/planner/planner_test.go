package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/plancache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *plancache.Cache {
	t.Helper()
	return plancache.New(10, time.Minute)
}

func buildChainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph("pcc2")
	words := []string{"That", "is", "a", "Category", "3", "storm", "."}
	var prev graph.NodeID
	for i, w := range words {
		id := graph.NodeID(i + 1)
		g.AddNode(id, w)
		g.AddLabel(id, "annis", "tok", w)
		if i > 0 {
			require.NoError(t, g.AddEdge(graph.Component{Type: graph.Ordering}, prev, id))
		}
		prev = id
	}
	g.RecomputeStatistics()
	return g
}

func tokenQuery(minDist, maxDist int) ParsedQuery {
	return ParsedQuery{
		Nodes: []NodeSearchSpec{
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "That"},
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "storm"},
		},
		Operators: []OperatorSpec{
			{Kind: OpPrecedence, LHSIdx: 0, RHSIdx: 1, MinDist: minDist, MaxDist: maxDist},
		},
	}
}

func TestPlanTwoNodeQueryProducesSeedJoin(t *testing.T) {
	g := buildChainGraph(t)
	p := New(nil, nil)

	root, err := p.Plan(tokenQuery(1, 10), g, DefaultQueryConfig())
	require.NoError(t, err)
	assert.Equal(t, KindSeed, root.Kind)
	assert.Equal(t, 0, root.nodePos[0])
	assert.Equal(t, 1, root.nodePos[1])
	assert.GreaterOrEqual(t, root.Output, int64(1))
}

func TestPlanForceNestedLoop(t *testing.T) {
	g := buildChainGraph(t)
	p := New(nil, nil)

	query := tokenQuery(1, 10)
	query.Operators[0].ForceNestedLoop = true

	root, err := p.Plan(query, g, DefaultQueryConfig())
	require.NoError(t, err)
	assert.Equal(t, KindNestedLoop, root.Kind)
}

func TestPlanDisconnectedQueryErrors(t *testing.T) {
	g := buildChainGraph(t)
	p := New(nil, nil)

	query := ParsedQuery{
		Nodes: []NodeSearchSpec{
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "That"},
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "storm"},
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "a"},
		},
		Operators: []OperatorSpec{
			{Kind: OpPrecedence, LHSIdx: 0, RHSIdx: 1, MinDist: 1, MaxDist: 10},
		},
	}

	_, err := p.Plan(query, g, DefaultQueryConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDisconnectedQuery))
}

func TestPlanEmptyQueryErrors(t *testing.T) {
	p := New(nil, nil)
	_, err := p.Plan(ParsedQuery{}, buildChainGraph(t), DefaultQueryConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestPlanSameComponentOperatorProducesFilter(t *testing.T) {
	g := buildChainGraph(t)
	p := New(nil, nil)

	query := ParsedQuery{
		Nodes: []NodeSearchSpec{
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "That"},
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "storm"},
		},
		Operators: []OperatorSpec{
			{Kind: OpPrecedence, LHSIdx: 0, RHSIdx: 1, MinDist: 1, MaxDist: 10},
			{Kind: OpPrecedence, LHSIdx: 0, RHSIdx: 1, MinDist: 5, MaxDist: 5},
		},
	}

	root, err := p.Plan(query, g, DefaultQueryConfig())
	require.NoError(t, err)
	assert.Equal(t, KindFilter, root.Kind)
	assert.Equal(t, KindSeed, root.LHS.Kind)
}

func TestPlanCacheHitReturnsSameShape(t *testing.T) {
	g := buildChainGraph(t)
	cache := newTestCache(t)
	p := New(nil, cache)

	query := tokenQuery(1, 10)
	first, err := p.Plan(query, g, DefaultQueryConfig())
	require.NoError(t, err)

	second, err := p.Plan(query, g, DefaultQueryConfig())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func buildCoverageGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph("span")
	const tok1, tok2, np, s graph.NodeID = 1, 2, 3, 4
	g.AddNode(tok1, "cat")
	g.AddLabel(tok1, "annis", "tok", "cat")
	g.AddNode(tok2, "sat")
	g.AddLabel(tok2, "annis", "tok", "sat")
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.Ordering}, tok1, tok2))

	g.AddNode(np, "NP")
	g.AddLabel(np, "annis", "cat", "NP")
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.LeftToken}, np, tok1))
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.RightToken}, np, tok1))

	g.AddNode(s, "S")
	g.AddLabel(s, "annis", "cat", "S")
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.LeftToken}, s, tok1))
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.RightToken}, s, tok2))

	g.RecomputeStatistics()
	return g
}

// TestPlanInclusionQueryProducesNestedLoopAndMatches guards against a plan
// that silently drops every span-operator match: without a seedability
// check, joinNodes would pick KindSeed whenever the RHS is a base node
// search, and SpanOperator.RetrieveMatches always returns nil, so the
// query would instantiate but never yield a tuple.
func TestPlanInclusionQueryProducesNestedLoopAndMatches(t *testing.T) {
	g := buildCoverageGraph(t)
	p := New(nil, nil)

	query := ParsedQuery{
		Nodes: []NodeSearchSpec{
			{Kind: SearchExactValue, Ns: "annis", Name: "cat", Value: "S"},
			{Kind: SearchExactValue, Ns: "annis", Name: "tok", Value: "cat"},
		},
		Operators: []OperatorSpec{
			{Kind: OpInclusion, LHSIdx: 0, RHSIdx: 1},
		},
	}

	root, err := p.Plan(query, g, DefaultQueryConfig())
	require.NoError(t, err)
	assert.Equal(t, KindNestedLoop, root.Kind)

	it, err := root.Instantiate(g, DefaultQueryConfig(), nil)
	require.NoError(t, err)

	tup, ok := it.Next()
	require.True(t, ok, "inclusion query must yield at least one tuple")
	require.Len(t, tup, 2)
}

func TestPlanInstantiateProducesMatchingTuple(t *testing.T) {
	g := buildChainGraph(t)
	p := New(nil, nil)

	root, err := p.Plan(tokenQuery(1, 10), g, DefaultQueryConfig())
	require.NoError(t, err)

	it, err := root.Instantiate(g, DefaultQueryConfig(), nil)
	require.NoError(t, err)

	tup, ok := it.Next()
	require.True(t, ok)
	require.Len(t, tup, 2)
}
