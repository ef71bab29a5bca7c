// Package persist checkpoints a loaded corpus graph to disk and restores
// it, using BadgerDB as the on-disk key-value store the way the teacher's
// storage package does for its node/edge records. Checkpointing is
// whole-graph: a Save writes every interned string, every annotation
// entry, and every component's edge set; a Load rebuilds a fresh
// *graph.Graph from those records in the same order, so StringIDs line up
// identically without any remapping step.
package persist

import (
	"encoding/binary"
	"fmt"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/dgraph-io/badger/v4"
)

// Key prefixes, one byte each, mirroring the teacher's single-byte-prefix
// key layout for BadgerDB.
const (
	prefixString    = byte(0x01) // stringID (4 bytes BE) -> string bytes
	prefixAnno      = byte(0x02) // node(8) + ns(4) + name(4) -> value(4)
	prefixComponent = byte(0x03) // componentType(1) + layer + 0x00 + name -> empty
	prefixEdge      = byte(0x04) // componentType(1)+layer+0x00+name+src(8)+tgt(8) -> empty
)

// Store wraps an open BadgerDB handle. One Store holds exactly one
// corpus's checkpoint.
type Store struct {
	db  *badger.DB
	enc *Encryptor
}

// Open opens (creating if absent) a BadgerDB checkpoint directory. enc may
// be nil to disable at-rest encryption of interned string values.
func Open(dataDir string, enc *Encryptor) (*Store, error) {
	opts := badger.DefaultOptions(dataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", dataDir, err)
	}
	return &Store{db: db, enc: enc}, nil
}

// Close releases the underlying BadgerDB handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes every interned string, annotation entry, and component edge
// set in g to the checkpoint, replacing any prior contents under the same
// keys.
func (s *Store) Save(g *graph.Graph) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := saveStrings(txn, g, s.enc); err != nil {
			return err
		}
		if err := saveAnnotations(txn, g); err != nil {
			return err
		}
		return saveComponents(txn, g)
	})
}

func saveStrings(txn *badger.Txn, g *graph.Graph, enc *Encryptor) error {
	for i, str := range g.Interner.All() {
		id := uint32(i + 1) // Interner reserves id 0; All() starts at id 1
		key := stringKey(graph.StringID(id))

		val := []byte(str)
		if enc != nil {
			encrypted, err := enc.Encrypt(val)
			if err != nil {
				return fmt.Errorf("persist: encrypt string %d: %w", id, err)
			}
			val = encrypted
		}
		if err := txn.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

func saveAnnotations(txn *badger.Txn, g *graph.Graph) error {
	for _, na := range g.Annos.AllEntries() {
		key := annoKey(na.Node, na.Anno.Ns, na.Anno.Name)
		val := make([]byte, 4)
		binary.BigEndian.PutUint32(val, uint32(na.Anno.Value))
		if err := txn.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

func saveComponents(txn *badger.Txn, g *graph.Graph) error {
	for _, t := range []graph.ComponentType{
		graph.Coverage, graph.Dominance, graph.Pointing,
		graph.Ordering, graph.LeftToken, graph.RightToken,
	} {
		for _, comp := range g.ComponentsOfType(t) {
			if err := txn.Set(componentKey(comp), nil); err != nil {
				return err
			}

			enumerator, ok := g.Component(comp).(graph.EdgeEnumerator)
			if !ok {
				// Storage backends that can't enumerate their edges (a
				// caller-supplied registry override, for instance) are
				// skipped; their component marker is still recorded,
				// but Load reads only edge records, so such components
				// are neither restored nor reported.
				continue
			}
			for _, e := range enumerator.AllEdges() {
				if err := txn.Set(edgeKey(comp, e.Source, e.Target), nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Load rebuilds a *graph.Graph named corpusName from the checkpoint,
// replaying strings, annotations, and edges in key order.
func (s *Store) Load(corpusName string) (*graph.Graph, error) {
	g := graph.NewGraph(corpusName)

	err := s.db.View(func(txn *badger.Txn) error {
		if err := loadStrings(txn, g, s.enc); err != nil {
			return err
		}
		if err := loadAnnotations(txn, g); err != nil {
			return err
		}
		return loadEdges(txn, g)
	})
	if err != nil {
		return nil, err
	}

	g.RecomputeStatistics()
	return g, nil
}

func loadStrings(txn *badger.Txn, g *graph.Graph, enc *Encryptor) error {
	prefix := []byte{prefixString}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if enc != nil {
			decrypted, err := enc.Decrypt(val)
			if err != nil {
				return fmt.Errorf("persist: decrypt string: %w", err)
			}
			val = decrypted
		}
		// Re-adding in key (ID) order reproduces identical StringID
		// assignment, since Interner.Add assigns IDs by insertion order.
		g.Interner.Add(string(val))
	}
	return nil
}

func loadAnnotations(txn *badger.Txn, g *graph.Graph) error {
	prefix := []byte{prefixAnno}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		node, ns, name, err := decodeAnnoKey(item.Key())
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value := graph.StringID(binary.BigEndian.Uint32(val))
		g.Annos.Add(node, graph.Annotation{Name: name, Ns: ns, Value: value})
	}
	return nil
}

func loadEdges(txn *badger.Txn, g *graph.Graph) error {
	prefix := []byte{prefixEdge}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		comp, src, tgt, err := decodeEdgeKey(it.Item().Key())
		if err != nil {
			return err
		}
		if err := g.AddEdge(comp, src, tgt); err != nil {
			return fmt.Errorf("persist: restore edge %s: %w", comp, err)
		}
	}
	return nil
}

func stringKey(id graph.StringID) []byte {
	k := make([]byte, 5)
	k[0] = prefixString
	binary.BigEndian.PutUint32(k[1:], uint32(id))
	return k
}

func annoKey(node graph.NodeID, ns, name graph.StringID) []byte {
	k := make([]byte, 17)
	k[0] = prefixAnno
	binary.BigEndian.PutUint64(k[1:9], uint64(node))
	binary.BigEndian.PutUint32(k[9:13], uint32(ns))
	binary.BigEndian.PutUint32(k[13:17], uint32(name))
	return k
}

func decodeAnnoKey(k []byte) (node graph.NodeID, ns, name graph.StringID, err error) {
	if len(k) != 17 {
		return 0, 0, 0, fmt.Errorf("persist: malformed annotation key (len %d)", len(k))
	}
	node = graph.NodeID(binary.BigEndian.Uint64(k[1:9]))
	ns = graph.StringID(binary.BigEndian.Uint32(k[9:13]))
	name = graph.StringID(binary.BigEndian.Uint32(k[13:17]))
	return node, ns, name, nil
}

func componentKey(comp graph.Component) []byte {
	k := []byte{prefixComponent, byte(comp.Type)}
	k = append(k, comp.Layer...)
	k = append(k, 0x00)
	k = append(k, comp.Name...)
	return k
}

func edgeKey(comp graph.Component, src, tgt graph.NodeID) []byte {
	k := []byte{prefixEdge, byte(comp.Type)}
	k = append(k, comp.Layer...)
	k = append(k, 0x00)
	k = append(k, comp.Name...)
	tail := make([]byte, 16)
	binary.BigEndian.PutUint64(tail[0:8], uint64(src))
	binary.BigEndian.PutUint64(tail[8:16], uint64(tgt))
	return append(k, tail...)
}

func decodeEdgeKey(k []byte) (comp graph.Component, src, tgt graph.NodeID, err error) {
	if len(k) < 1+1+16 {
		return graph.Component{}, 0, 0, fmt.Errorf("persist: malformed edge key (len %d)", len(k))
	}
	compType := graph.ComponentType(k[1])
	body := k[2 : len(k)-16]
	sep := -1
	for i, b := range body {
		if b == 0x00 {
			sep = i
			break
		}
	}
	if sep < 0 {
		return graph.Component{}, 0, 0, fmt.Errorf("persist: malformed edge key: missing layer separator")
	}
	layer := string(body[:sep])
	name := string(body[sep+1:])
	tail := k[len(k)-16:]
	src = graph.NodeID(binary.BigEndian.Uint64(tail[0:8]))
	tgt = graph.NodeID(binary.BigEndian.Uint64(tail[8:16]))
	return graph.Component{Type: compType, Layer: layer, Name: name}, src, tgt, nil
}
