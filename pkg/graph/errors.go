package graph

import "errors"

// Sentinel errors surfaced across the graph package, matching the closed
// set of error kinds in the design: a missing interned string, a regex
// pattern that fails to compile, a component with no backing storage, and a failure
// to load a corpus directory.
var (
	// ErrUnknownString is returned when looking up a StringID that was
	// never added to the interner.
	ErrUnknownString = errors.New("graph: unknown string id")

	// ErrInvalidRegex is returned when a regex search pattern fails to
	// compile. Callers should treat this as an empty result, not a fatal
	// error.
	ErrInvalidRegex = errors.New("graph: invalid regex pattern")

	// ErrMissingComponent is returned when an operator references a
	// Component with no registered graph storage.
	ErrMissingComponent = errors.New("graph: component has no storage")

	// ErrCorpusLoadFailure signals that a corpus directory could not be
	// loaded into a Graph. Fatal for the caller.
	ErrCorpusLoadFailure = errors.New("graph: corpus load failure")

	// ErrSelfEdge is returned by AddEdge when source and target are equal;
	// self-edges are disallowed by the data model.
	ErrSelfEdge = errors.New("graph: self edges are not allowed")

	// ErrDuplicateEdge is returned by AddEdge when an edge already exists
	// between the same (component, source, target).
	ErrDuplicateEdge = errors.New("graph: edge already exists")
)
