package planner

import "math"

// defaultGuess is the planner's output estimate for a base search lacking
// usable statistics. Mirrors package search's own fallback so a plan built
// before a corpus has been through RecomputeStatistics still orders joins
// sensibly instead of collapsing every estimate to zero.
const defaultGuess = 100000

// joinOutput estimates a join step's output cardinality: the cross size of
// both operands scaled by the operator's selectivity, floored at 1 so a
// chain of joins never estimates to zero and silently loses cost-model
// ordering information.
func joinOutput(lhsOutput, rhsOutput int64, selectivity float64) int64 {
	est := int64(math.Round(float64(lhsOutput) * float64(rhsOutput) * selectivity))
	if est < 1 {
		est = 1
	}
	return est
}

// filterOutput estimates a same-component filter step's output: the
// surviving fraction of its single child's tuples.
func filterOutput(childOutput int64, selectivity float64) int64 {
	est := int64(math.Round(float64(childOutput) * selectivity))
	if est < 1 {
		est = 1
	}
	return est
}

// nestedLoopStepCost is the incremental work of a nested-loop step: reading
// the outer operand once, plus probing the inner operand once per outer
// tuple.
func nestedLoopStepCost(outerOutput, innerOutput int64) int64 {
	return outerOutput + outerOutput*innerOutput
}

// seedStepCost is the incremental work of a seed-style step (SeedJoin,
// IndexJoin, TaskIndexJoin): reading the lhs operand once, plus the
// expected rhs fan-out per lhs tuple scaled by the operator's selectivity.
func seedStepCost(lhsOutput, rhsOutput int64, selectivity float64) int64 {
	return lhsOutput + int64(math.Round(selectivity*float64(rhsOutput)*float64(lhsOutput)))
}

// filterStepCost is the incremental work of a filter step: one pass over
// its child's output.
func filterStepCost(childOutput int64) int64 {
	return childOutput
}

// intermediateSum totals a join/filter step's own cost on top of whatever
// its children already accumulated, so the planner can compare whole-plan
// cost rather than only the next step's.
func intermediateSum(lhsSum, rhsSum, stepCost int64) int64 {
	return lhsSum + rhsSum + stepCost
}
