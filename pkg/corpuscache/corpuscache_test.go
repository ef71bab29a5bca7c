package corpuscache

import (
	"testing"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallGraph(name string) *graph.Graph {
	g := graph.NewGraph(name)
	g.AddNode(1, "tok")
	g.AddLabel(1, "annis", "tok", "hello")
	g.RecomputeStatistics()
	return g
}

func TestGetMissWithoutLoaderReturnsErrNotFound(t *testing.T) {
	c := New(1<<20, nil)
	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutThenGetReturnsSameGraph(t *testing.T) {
	c := New(1<<20, nil)
	g := smallGraph("corpusA")

	h1, err := c.Put("corpusA", g)
	require.NoError(t, err)
	assert.Same(t, g, h1.Graph)
	h1.Release()

	h2, err := c.Get("corpusA")
	require.NoError(t, err)
	assert.Same(t, g, h2.Graph)
	h2.Release()
}

func TestEvictionSparesReferencedEntries(t *testing.T) {
	gA := smallGraph("a")
	gB := smallGraph("b")
	budget := ApproxBytes(gA) + ApproxBytes(gB) - 1

	c := New(budget, nil)
	hA, err := c.Put("a", gA)
	require.NoError(t, err)
	// hA stays referenced; putting b should not be able to evict it, and
	// should not evict b itself since nothing else is evictable.
	_, err = c.Put("b", gB)
	require.NoError(t, err)

	_, err = c.Get("a")
	require.NoError(t, err)
	hA.Release()
}

func TestEvictForciblyRemovesUnreferencedEntry(t *testing.T) {
	c := New(1<<20, nil)
	g := smallGraph("c")
	h, err := c.Put("c", g)
	require.NoError(t, err)
	h.Release()

	assert.True(t, c.Evict("c"))
	_, err = c.Get("c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvictRefusesReferencedEntry(t *testing.T) {
	c := New(1<<20, nil)
	g := smallGraph("d")
	h, err := c.Put("d", g)
	require.NoError(t, err)

	assert.False(t, c.Evict("d"))
	h.Release()
	assert.True(t, c.Evict("d"))
}

func TestLoaderInvokedOnMiss(t *testing.T) {
	calls := 0
	c := New(1<<20, func(name string) (*graph.Graph, error) {
		calls++
		return smallGraph(name), nil
	})

	h, err := c.Get("lazy")
	require.NoError(t, err)
	assert.Equal(t, "lazy", h.Graph.Name)
	h.Release()

	_, err = c.Get("lazy")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUsedBytesTracksResidentGraphs(t *testing.T) {
	c := New(1<<20, nil)
	assert.Equal(t, int64(0), c.UsedBytes())

	g := smallGraph("e")
	h, err := c.Put("e", g)
	require.NoError(t, err)
	assert.True(t, c.UsedBytes() > 0)
	h.Release()
}
