package operator

import (
	"testing"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSentence creates a 7-token chain "That is a Category 3 storm ." under
// ORDERING, plus a single sentence node covering the whole span and a noun
// phrase node covering "Category 3 storm" under COVERAGE, mirroring the
// precedence/inclusion scenarios.
func buildSentence(t *testing.T) (g *graph.Graph, tokens []graph.NodeID, sentence, np graph.NodeID) {
	t.Helper()
	g = graph.NewGraph("pcc2")
	words := []string{"That", "is", "a", "Category", "3", "storm", "."}
	var prev graph.NodeID
	for i, w := range words {
		id := graph.NodeID(i + 1)
		g.AddNode(id, w)
		g.AddLabel(id, "annis", "tok", w)
		tokens = append(tokens, id)
		if i > 0 {
			require.NoError(t, g.AddEdge(graph.Component{Type: graph.Ordering}, prev, id))
		}
		prev = id
	}

	sentence = graph.NodeID(100)
	g.AddNode(sentence, "S")
	g.AddLabel(sentence, "", "cat", "S")
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.LeftToken}, sentence, tokens[0]))
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.RightToken}, sentence, tokens[6]))

	np = graph.NodeID(101)
	g.AddNode(np, "NP")
	g.AddLabel(np, "", "cat", "NP")
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.LeftToken}, np, tokens[3]))
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.RightToken}, np, tokens[5]))

	g.RecomputeStatistics()
	return g, tokens, sentence, np
}

func TestPrecedenceDistanceMatchesChain(t *testing.T) {
	g, tokens, _, _ := buildSentence(t)
	op := NewPrecedence(g, "", 2, 10)
	matches := op.RetrieveMatches(tokens[0])
	assert.Len(t, matches, 5) // distances 2..6 reach tokens[2..6]
}

func TestInclusionSentenceContainsNounPhrase(t *testing.T) {
	g, _, sentence, np := buildSentence(t)
	op := NewInclusion(g)
	assert.True(t, op.Filter(sentence, np))
	assert.False(t, op.Filter(np, sentence))
}

func TestOverlapIsCommutative(t *testing.T) {
	g, _, sentence, np := buildSentence(t)
	op := NewOverlap(g)
	assert.Equal(t, op.Filter(sentence, np), op.Filter(np, sentence))
	assert.True(t, op.Filter(sentence, np))
}

func TestIdenticalCoverageSelfMatch(t *testing.T) {
	g, _, sentence, _ := buildSentence(t)
	op := NewIdenticalCoverage(g)
	assert.True(t, op.Filter(sentence, sentence))
}

func TestTokenHelperSelfAlignedForTokens(t *testing.T) {
	g, tokens, _, _ := buildSentence(t)
	h := NewTokenHelper(g)
	assert.Equal(t, tokens[2], h.LeftToken(tokens[2]))
	assert.Equal(t, tokens[2], h.RightToken(tokens[2]))
	assert.True(t, h.IsToken(tokens[2]))
}

func TestTokenHelperResolvesSpanNode(t *testing.T) {
	g, tokens, sentence, _ := buildSentence(t)
	h := NewTokenHelper(g)
	assert.Equal(t, tokens[0], h.LeftToken(sentence))
	assert.Equal(t, tokens[6], h.RightToken(sentence))
	assert.False(t, h.IsToken(sentence))
}

func TestDominanceSelectivityEmptyWhenNoComponent(t *testing.T) {
	g, _, _, _ := buildSentence(t)
	op := NewDominance(g, "", "", 1, 1, nil)
	assert.Equal(t, 0.0, op.Selectivity())
}
