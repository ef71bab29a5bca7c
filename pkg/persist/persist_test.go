package persist

import (
	"testing"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph("pcc2")
	words := []string{"That", "is", "a", "storm"}
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
	require.NoError(t, g.AddEdge(graph.Component{Type: graph.Dominance, Layer: "syntax", Name: "const"}, 1, 2))
	g.RecomputeStatistics()
	return g
}

func TestSaveThenLoadRoundTripsGraph(t *testing.T) {
	g := buildSampleGraph(t)

	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(g))

	loaded, err := store.Load("pcc2")
	require.NoError(t, err)

	assert.Equal(t, "pcc2", loaded.Name)
	assert.Equal(t, g.Interner.Len(), loaded.Interner.Len())
	assert.Equal(t, g.Annos.EntryCount(), loaded.Annos.EntryCount())

	annisNs := loaded.Interner.Add("annis")
	tokKey := loaded.Interner.Add("tok")
	anno, ok := loaded.Annos.Get(1, annisNs, tokKey)
	require.True(t, ok)
	assert.Equal(t, "That", loaded.Interner.MustLookup(anno.Value))

	ordering := loaded.Component(graph.Component{Type: graph.Ordering})
	assert.True(t, ordering.IsConnected(1, 4, 1, 3))

	dominance := loaded.Component(graph.Component{Type: graph.Dominance, Layer: "syntax", Name: "const"})
	assert.True(t, dominance.IsConnected(1, 2, 1, 1))
}

func TestSaveThenLoadWithEncryption(t *testing.T) {
	g := buildSampleGraph(t)
	enc := NewEncryptor("correct horse battery staple")

	store, err := Open(t.TempDir(), enc)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(g))

	loaded, err := store.Load("pcc2")
	require.NoError(t, err)

	annisNs := loaded.Interner.Add("annis")
	tokKey := loaded.Interner.Add("tok")
	anno, ok := loaded.Annos.Get(1, annisNs, tokKey)
	require.True(t, ok)
	assert.Equal(t, "That", loaded.Interner.MustLookup(anno.Value))
}

func TestEncryptorRoundTrip(t *testing.T) {
	enc := NewEncryptor("a password")
	ciphertext, err := enc.Encrypt([]byte("hello corpus"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("hello corpus"), ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hello corpus", string(plaintext))
}

func TestDecryptWrongPasswordFails(t *testing.T) {
	enc := NewEncryptor("right password")
	ciphertext, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)

	wrong := NewEncryptor("wrong password")
	_, err = wrong.Decrypt(ciphertext)
	assert.Error(t, err)
}
