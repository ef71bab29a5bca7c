package planner

// QueryConfig carries the per-query knobs threaded through Planner.Plan:
// whether a task pool is available (and how large), which non-parallel join
// variant to prefer when no pool is configured, and whether the optimizer's
// commutative-operand-swap pass runs at all.
type QueryConfig struct {
	// UseTaskPool enables TaskIndexJoin for every seed-join step when a
	// pool is passed to Instantiate; false forces the synchronous
	// IndexJoin/SeedJoin path.
	UseTaskPool bool

	// TaskPoolSize is the worker count for the shared task pool when
	// UseTaskPool is true. Ignored otherwise.
	TaskPoolSize int

	// PreferIndexJoin selects IndexJoin over a plain SeedJoin when both are
	// applicable (i.e. the RHS operand exposes a usable ValidAnnotations or
	// ValidKeys set and UseTaskPool is false).
	PreferIndexJoin bool

	// DisableOptimizer skips the operand-swap optimization pass entirely,
	// preserving the input's linear node/operator order regardless of
	// available statistics.
	DisableOptimizer bool
}

// DefaultQueryConfig returns the conservative default: no task pool, plain
// seed joins, optimizer enabled.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		UseTaskPool:      false,
		TaskPoolSize:     0,
		PreferIndexJoin:  false,
		DisableOptimizer: false,
	}
}
