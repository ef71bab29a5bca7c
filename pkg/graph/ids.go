// Package graph implements the in-memory data model for string-interned
// annotation graphs: the string interner, the annotation index, the family
// of per-component edge storages, and the Graph aggregate that wires them
// together.
//
// An annotation graph has nodes carrying zero or more typed labels
// (Annotations) and edges partitioned into named Components (coverage,
// dominance, pointing, ordering, and the synthetic left/right-token
// components). This package owns that model; query planning and execution
// live in sibling packages (search, operator, join, planner, driver) that
// only ever borrow a *Graph for the lifetime of a query.
package graph

import "fmt"

// StringID is a 32-bit interned string identifier. Zero is reserved and
// never assigned to a real string; it means "any" wherever it appears in an
// Annotation or AnnotationKey.
type StringID uint32

// AnyString is the reserved StringID meaning "matches any string".
const AnyString StringID = 0

// NodeID uniquely identifies a node within a Graph. IDs are allocated
// monotonically by the annotation index and are never reused.
type NodeID uint32

// Annotation is a (name, namespace, value) triple attached to a node or
// edge. A zero Name matches any name; equality is field-wise otherwise.
type Annotation struct {
	Name  StringID
	Ns    StringID
	Value StringID
}

// Matches reports whether a matches the given key fields, treating a zero
// Name as a wildcard. Namespace is only compared when ns is non-zero.
func (a Annotation) Matches(name, ns StringID) bool {
	if name != AnyString && a.Name != name {
		return false
	}
	if ns != AnyString && a.Ns != ns {
		return false
	}
	return true
}

// AnnotationKey is the (name, namespace) pair identifying a family of
// annotations, independent of value.
type AnnotationKey struct {
	Name StringID
	Ns   StringID
}

func (k AnnotationKey) String() string {
	return fmt.Sprintf("%d::%d", k.Ns, k.Name)
}

// Match is a single result produced by a leaf search or join iterator: the
// node that was found, and the annotation that satisfied the search.
type Match struct {
	Node NodeID
	Anno Annotation
}

// Tuple is an ordered vector of Matches, one per query node, produced by a
// join step or the execution driver.
type Tuple []Match
