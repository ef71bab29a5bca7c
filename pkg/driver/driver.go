// Package driver walks a built plan tree to completion: Next pulls one
// tuple at a time from the root iterator, checking ctx.Done() at the
// cooperative interruption point documented in the concurrency model; Reset
// rewinds the whole tree; DebugString renders the plan with its cost
// estimates for introspection.
package driver

import (
	"context"
	"errors"

	"github.com/corpusql/annisquery/pkg/graph"
	"github.com/corpusql/annisquery/pkg/join"
	"github.com/corpusql/annisquery/pkg/logx"
	"github.com/corpusql/annisquery/pkg/planner"
	"github.com/corpusql/annisquery/pkg/pool"
	"github.com/corpusql/annisquery/pkg/taskpool"
)

// ErrCancelled is returned by Next when ctx is done before a tuple could be
// produced.
var ErrCancelled = errors.New("driver: query cancelled")

// Driver binds one plan tree to one instantiated iterator chain against a
// specific graph. It is not safe for concurrent use; one query execution
// owns one Driver.
type Driver struct {
	root *planner.Node
	it   join.Iterator
	log  logx.Logger
}

// New instantiates root against g under cfg, optionally using p for
// task-pool-backed seed steps (nil forces synchronous evaluation
// regardless of cfg.UseTaskPool).
func New(root *planner.Node, g *graph.Graph, cfg planner.QueryConfig, p *taskpool.Pool, log logx.Logger) (*Driver, error) {
	it, err := root.Instantiate(g, cfg, p)
	if err != nil {
		return nil, err
	}
	return &Driver{root: root, it: it, log: logx.OrNoOp(log)}, nil
}

// Next checks ctx.Done() at entry, then pulls the next tuple from the plan
// tree. A false ok with a nil error means the result set is exhausted.
func (d *Driver) Next(ctx context.Context) (graph.Tuple, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ErrCancelled
	default:
	}
	t, ok := d.it.Next()
	if !ok {
		d.log.Debug("driver exhausted")
	}
	return t, ok, nil
}

// Release returns t to the tuple pool once the caller is done with it.
func (d *Driver) Release(t graph.Tuple) {
	pool.PutTuple(t)
}

// Reset rewinds the entire iterator tree so Next can be driven again from
// the beginning.
func (d *Driver) Reset() {
	d.it.Reset()
}

// DebugString renders the bound plan tree with per-node kind, description,
// and cost estimates.
func (d *Driver) DebugString() string {
	return d.root.DebugString()
}
