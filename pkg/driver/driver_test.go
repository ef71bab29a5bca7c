package driver

import (
	"context"
	"testing"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func chainQuery() planner.ParsedQuery {
	return planner.ParsedQuery{
		Nodes: []planner.NodeSearchSpec{
			{Kind: planner.SearchExactValue, Ns: "annis", Name: "tok", Value: "That"},
			{Kind: planner.SearchExactValue, Ns: "annis", Name: "tok", Value: "storm"},
		},
		Operators: []planner.OperatorSpec{
			{Kind: planner.OpPrecedence, LHSIdx: 0, RHSIdx: 1, MinDist: 1, MaxDist: 10},
		},
	}
}

func TestDriverDrainsExactlyOneTuple(t *testing.T) {
	g := buildChainGraph(t)
	p := planner.New(nil, nil)
	root, err := p.Plan(chainQuery(), g, planner.DefaultQueryConfig())
	require.NoError(t, err)

	d, err := New(root, g, planner.DefaultQueryConfig(), nil, nil)
	require.NoError(t, err)

	tup, ok, err := d.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, tup, 2)
	d.Release(tup)

	_, ok, err = d.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDriverHonorsCancellation(t *testing.T) {
	g := buildChainGraph(t)
	p := planner.New(nil, nil)
	root, err := p.Plan(chainQuery(), g, planner.DefaultQueryConfig())
	require.NoError(t, err)

	d, err := New(root, g, planner.DefaultQueryConfig(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := d.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestDriverResetAllowsRedrain(t *testing.T) {
	g := buildChainGraph(t)
	p := planner.New(nil, nil)
	root, err := p.Plan(chainQuery(), g, planner.DefaultQueryConfig())
	require.NoError(t, err)

	d, err := New(root, g, planner.DefaultQueryConfig(), nil, nil)
	require.NoError(t, err)

	_, ok, _ := d.Next(context.Background())
	require.True(t, ok)
	_, ok, _ = d.Next(context.Background())
	require.False(t, ok)

	d.Reset()
	_, ok, _ = d.Next(context.Background())
	assert.True(t, ok)
}

func TestDriverDebugStringMentionsKind(t *testing.T) {
	g := buildChainGraph(t)
	p := planner.New(nil, nil)
	root, err := p.Plan(chainQuery(), g, planner.DefaultQueryConfig())
	require.NoError(t, err)

	d, err := New(root, g, planner.DefaultQueryConfig(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, d.DebugString(), "seed")
}
