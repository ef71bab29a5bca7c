package operator

import (
	"strconv"

	"github.com/corpusql/annisquery/pkg/graph"
)

// unboundedMax is the sentinel passed to graph.Storage.FindConnected /
// IsConnected meaning "no upper bound on distance".
const unboundedMax = -1

// AbstractEdgeOperator is the shared implementation backing Precedence,
// Dominance, and Pointing: a component type, an optional (layer,
// name) filter narrowing which components of that type participate (an
// empty layer/name means "any component of this type"), a distance range,
// and an optional required edge label.
//
// RetrieveMatches unions FindConnected across every selected component
// storage and deduplicates; Filter checks IsConnected in any selected
// storage, honoring the edge-label constraint when set; Selectivity takes
// the worst (largest) reachable fraction across storages, since a query
// planner must not underestimate a join's output size.
type AbstractEdgeOperator struct {
	g         *graph.Graph
	compType  graph.ComponentType
	layer     string
	name      string
	minDist   int
	maxDist   int
	edgeLabel *graph.Annotation // nil means no label constraint

	components []graph.Component
}

// NewAbstractEdgeOperator resolves the set of components of compType
// matching the optional (layer, name) filter. An empty layer or name
// matches any component's corresponding field.
func NewAbstractEdgeOperator(g *graph.Graph, compType graph.ComponentType, layer, name string, minDist, maxDist int, edgeLabel *graph.Annotation) *AbstractEdgeOperator {
	o := &AbstractEdgeOperator{
		g: g, compType: compType, layer: layer, name: name,
		minDist: minDist, maxDist: maxDist, edgeLabel: edgeLabel,
	}
	o.resolveComponents()
	return o
}

func (o *AbstractEdgeOperator) resolveComponents() {
	for _, c := range o.g.ComponentsOfType(o.compType) {
		if o.layer != "" && c.Layer != o.layer {
			continue
		}
		if o.name != "" && c.Name != o.name {
			continue
		}
		o.components = append(o.components, c)
	}
}

// RetrieveMatches unions reachable nodes from lhs across every selected
// component, filtered by edge label when constrained, deduplicated.
func (o *AbstractEdgeOperator) RetrieveMatches(lhs graph.NodeID) []graph.NodeID {
	seen := make(map[graph.NodeID]struct{})
	var out []graph.NodeID
	for _, comp := range o.components {
		storage := o.g.Component(comp)
		for _, tgt := range storage.FindConnected(lhs, o.minDist, o.maxDist) {
			if !o.labelSatisfiedByAnyPath(storage, lhs, tgt) {
				continue
			}
			if _, dup := seen[tgt]; dup {
				continue
			}
			seen[tgt] = struct{}{}
			out = append(out, tgt)
		}
	}
	return out
}

// labelSatisfiedByAnyPath reports whether the edge-label constraint (when
// set) is satisfiable between src and tgt. Direct-edge label lookup is used
// since storages only attach labels to single edges, not whole paths; a
// constrained operator is therefore most meaningful at distance 1.
func (o *AbstractEdgeOperator) labelSatisfiedByAnyPath(storage graph.Storage, src, tgt graph.NodeID) bool {
	if o.edgeLabel == nil {
		return true
	}
	for _, lbl := range storage.EdgeLabels(src, tgt) {
		if lbl.Matches(o.edgeLabel.Name, o.edgeLabel.Ns) && (o.edgeLabel.Value == graph.AnyString || lbl.Value == o.edgeLabel.Value) {
			return true
		}
	}
	return false
}

// Filter reports whether rhs is connected from lhs in any selected
// component within the configured distance range, honoring the edge-label
// constraint.
func (o *AbstractEdgeOperator) Filter(lhs, rhs graph.NodeID) bool {
	for _, comp := range o.components {
		storage := o.g.Component(comp)
		if !storage.IsConnected(lhs, rhs, o.minDist, o.maxDist) {
			continue
		}
		if o.labelSatisfiedByAnyPath(storage, lhs, rhs) {
			return true
		}
	}
	return false
}

// IsReflexive reports whether min distance zero is allowed, which is the
// only way an AbstractEdgeOperator relation can include (n, n).
func (o *AbstractEdgeOperator) IsReflexive() bool { return o.minDist == 0 }

// IsCommutative is false for every directed structural relation this
// operator models: dominance, pointing, and precedence all distinguish
// source from target.
func (o *AbstractEdgeOperator) IsCommutative() bool { return false }

// IsSeedable is true: RetrieveMatches walks the component storage's own
// index and returns a real candidate set.
func (o *AbstractEdgeOperator) IsSeedable() bool { return true }

// Selectivity estimates the worst-case reachable fraction across selected
// components, combining each component's fan-out statistic with the
// requested distance range. A cyclic component is treated as fully
// connected (selectivity 1.0); no selected components means selectivity
// 0.0.
func (o *AbstractEdgeOperator) Selectivity() float64 {
	if len(o.components) == 0 {
		return 0.0
	}
	var worst float64
	for _, comp := range o.components {
		stats := o.g.Component(comp).Statistics()
		if !stats.Valid || stats.NodeCount == 0 {
			continue
		}
		if stats.Cyclic {
			worst = 1.0
			continue
		}
		s := reachableFraction(stats, o.minDist, o.maxDist)
		if s > worst {
			worst = s
		}
	}
	return worst
}

// reachableFraction estimates, from aggregate fan-out statistics alone, the
// fraction of nodes reachable from an arbitrary source within
// [minDist, maxDist] hops: avg fan-out compounded across the distance
// range, capped at 1.0 and at the maximum depth actually observed.
func reachableFraction(stats graph.GraphStatistic, minDist, maxDist int) float64 {
	hi := maxDist
	if isUnbounded(maxDist) || int64(hi) > stats.MaxDepth {
		hi = int(stats.MaxDepth)
	}
	if hi < minDist {
		return 0.0
	}
	var reachable float64
	fanOut := stats.AvgFanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	acc := 1.0
	for d := 1; d <= hi; d++ {
		acc *= fanOut
		if d >= minDist {
			reachable += acc
		}
	}
	if stats.NodeCount == 0 {
		return 0.0
	}
	frac := reachable / float64(stats.NodeCount)
	if frac > 1.0 {
		frac = 1.0
	}
	return frac
}

func isUnbounded(maxDist int) bool { return maxDist < 0 }

func (o *AbstractEdgeOperator) Description() string {
	hi := "*"
	if !isUnbounded(o.maxDist) {
		hi = strconv.Itoa(o.maxDist)
	}
	return o.compType.String() + "(" + o.layer + "," + o.name + ")[" + strconv.Itoa(o.minDist) + ".." + hi + "]"
}
