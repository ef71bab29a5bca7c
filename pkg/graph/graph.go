package graph

import "sort"

// Graph is the loaded-corpus aggregate: a string interner, an annotation
// index, and the set of per-component edge storages the registry has
// chosen. Queries borrow a *Graph for their lifetime; they never own or
// mutate its storages directly except through the helper methods here.
type Graph struct {
	Name     string
	Interner *Interner
	Annos    *AnnotationIndex

	registry   *Registry
	components map[Component]Storage
}

// NewGraph returns an empty, named Graph ready for node/edge insertion.
func NewGraph(name string) *Graph {
	in := NewInterner()
	return &Graph{
		Name:       name,
		Interner:   in,
		Annos:      NewAnnotationIndex(in),
		registry:   NewRegistry(),
		components: make(map[Component]Storage),
	}
}

// Registry exposes the Graph's storage registry so callers may install
// overrides before any component storage is lazily created.
func (g *Graph) Registry() *Registry { return g.registry }

// Component returns the Storage backing comp, creating it via the
// registry on first use.
func (g *Graph) Component(comp Component) Storage {
	if s, ok := g.components[comp]; ok {
		return s
	}
	s := g.registry.New(comp)
	g.components[comp] = s
	return s
}

// ComponentsOfType returns every Component of the given type currently
// present in the graph, in Component order.
func (g *Graph) ComponentsOfType(t ComponentType) []Component {
	var out []Component
	for c := range g.components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// HasComponent reports whether comp has ever been created on this graph
// (as opposed to Component, which lazily creates it).
func (g *Graph) HasComponent(comp Component) bool {
	_, ok := g.components[comp]
	return ok
}

// AddNode registers node as existing by attaching the node-name marker
// annotation (annis::node_name, name), per the data model's convention
// that this annotation is the node-existence marker.
func (g *Graph) AddNode(node NodeID, name string) {
	ns := g.Interner.Add("annis")
	key := g.Interner.Add("node_name")
	g.Annos.Add(node, Annotation{Name: key, Ns: ns, Value: g.Interner.Add(name)})
}

// AddLabel attaches an (ns, name, value) annotation to node.
func (g *Graph) AddLabel(node NodeID, ns, name, value string) {
	g.Annos.Add(node, Annotation{
		Name:  g.Interner.Add(name),
		Ns:    g.Interner.Add(ns),
		Value: g.Interner.Add(value),
	})
}

// AddEdge inserts a directed edge into comp's storage, creating the
// storage via the registry on first use.
func (g *Graph) AddEdge(comp Component, src, tgt NodeID) error {
	return g.Component(comp).AddEdge(src, tgt)
}

// AddEdgeLabel attaches an (ns, name, value) annotation to the edge (src,
// tgt) within comp.
func (g *Graph) AddEdgeLabel(comp Component, src, tgt NodeID, ns, name, value string) error {
	return g.Component(comp).SetEdgeLabel(src, tgt, Annotation{
		Name:  g.Interner.Add(name),
		Ns:    g.Interner.Add(ns),
		Value: g.Interner.Add(value),
	})
}

// RecomputeStatistics rebuilds cached statistics for the annotation index
// and every component storage. Should be called once after bulk loading,
// before planning queries.
func (g *Graph) RecomputeStatistics() {
	g.Annos.RecomputeStatistics()
	for _, s := range g.components {
		s.RecomputeStatistics()
	}
}

// NodeName renders node for external consumers as
// salt:/<corpus>/<document>/#<node_name>, with an optional <ns>::<name>::
// prefix when anno is not the node-name label itself. document defaults to
// the empty path segment when unknown to the caller.
func (g *Graph) NodeName(node NodeID, document string, anno Annotation) string {
	annisNs := g.Interner.Add("annis")
	nodeNameKey := g.Interner.Add("node_name")

	rawName := ""
	if v, ok := g.Annos.Get(node, annisNs, nodeNameKey); ok {
		rawName = g.Interner.MustLookup(v.Value)
	}

	base := "salt:/" + g.Name + "/" + document + "/#" + rawName
	if anno.Name == nodeNameKey && anno.Ns == annisNs {
		return base
	}
	ns := g.Interner.MustLookup(anno.Ns)
	name := g.Interner.MustLookup(anno.Name)
	prefix := ""
	if ns != "" {
		prefix = ns + "::"
	}
	return prefix + name + "::" + base
}
