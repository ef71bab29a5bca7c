package graph

// Registry picks the Storage implementation backing each Component,
// following the heuristics in the design: ORDERING gets a LinearStorage,
// DOMINANCE gets a PrePostStorage, and everything else (notably COVERAGE
// and POINTING, whose shape varies too much per-corpus to special-case)
// falls back to FallbackStorage. Callers may register an explicit override
// per Component, which always wins.
type Registry struct {
	overrides map[Component]func() Storage
}

// NewRegistry returns a Registry with the default heuristics and no
// overrides.
func NewRegistry() *Registry {
	return &Registry{overrides: make(map[Component]func() Storage)}
}

// Override forces comp to use the Storage constructed by newStorage,
// bypassing the default heuristic.
func (r *Registry) Override(comp Component, newStorage func() Storage) {
	r.overrides[comp] = newStorage
}

// New constructs the Storage for comp, consulting any override first.
func (r *Registry) New(comp Component) Storage {
	if newStorage, ok := r.overrides[comp]; ok {
		return newStorage()
	}
	switch comp.Type {
	case Dominance:
		return NewPrePostStorage()
	case Ordering:
		return NewLinearStorage()
	default:
		return NewFallbackStorage()
	}
}
