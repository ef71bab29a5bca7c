// Package search implements the leaf node/annotation iterators that seed a
// query plan: exact value, exact key (any value), and regex on value. Each
// producer/consumer pair is owned exclusively by one caller at a time and
// is not safe for concurrent use; callers needing to drive several copies
// of the same search concurrently should construct one instance per
// goroutine.
package search

import "github.com/corpusql/annisquery/pkg/graph"

// Search is a leaf iterator producing Matches for a single node predicate.
// It is the planner's unit of base-plan-node construction (see package
// planner).
type Search interface {
	// Next advances to and returns the next Match, or reports ok=false
	// once exhausted.
	Next() (graph.Match, bool)

	// Reset rewinds the search to its initial state so it can be drained
	// again from the beginning.
	Reset()

	// GuessMaxCount estimates the number of Matches this search will
	// produce, using the bound Graph's annotation-index statistics when
	// available. Histogram-based estimates can fall below the true count,
	// even on a graph with fresh statistics.
	GuessMaxCount() int64

	// Description renders a short human-readable summary for plan
	// debugging.
	Description() string
}

// ValidAnnotations is implemented by searches that can expose the complete
// materialized set of annotations they match, letting a SeedJoin verify
// join candidates without re-running the search (see package join).
type ValidAnnotations interface {
	ValidAnnotationSet() map[graph.Annotation]struct{}
}

// ValidKeys is implemented by searches that only constrain the annotation
// key (not the value), letting a SeedJoin verify candidates against a
// cheaper key-only set.
type ValidKeys interface {
	ValidKeySet() []graph.AnnotationKey
}

// defaultGuess is the planner's fallback estimate for a base search with no
// usable statistics, per the cost model in the design.
const defaultGuess = 100000
