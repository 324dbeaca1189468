// Package objectives builds the weighted objective spec.md §4.5 describes:
// tax, drift, transaction cost, factor tracking error, and cash
// deployment, composed per the strategy's OptimizationType. Grounded on
// original_source/oracle/src/service/objectives/*.py and
// helpers/piecewise_linear.py.
package objectives

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// Breakpoints and Values are the piecewise-linear convex penalty knots
// shared by the drift and factor objective terms: x is a deviation
// magnitude, y is its penalty, approximating a super-linear (~x^1.5)
// curve. Copied verbatim from
// helpers/piecewise_linear.py's get_piecewise_breakpoints.
var (
	Breakpoints = []float64{0.0, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.10}
	Values      = []float64{0.0, 0.0001 / 1000, 0.001 / 100, 0.005 / 25, 0.01 / 10, 0.05 / 2.5, 0.10}
)

// PiecewiseVar is the MILP encoding of one piecewise-linear penalty
// evaluation: the λ convex-combination variables pinned at the breakpoint
// the deviation currently sits at (or at the last breakpoint, with the
// remainder carried by Excess, once the deviation exceeds the last knot),
// plus the resulting penalty value Y.
type PiecewiseVar struct {
	Lambda []int // one var index per breakpoint
	Excess int   // var index for the amount beyond the last breakpoint
	Y      int   // var index holding the penalty value
}

// AddPiecewiseLinear encodes y = piecewise_penalty(x) for the affine
// expression xCoeffs (a map of variable index -> coefficient, x itself
// being one linear combination of existing decision variables) using the
// convex-combination method.
//
// Unlike the original's create_piecewise_linear_variables — which sums
// λ <= 1 and folds (breakpoints[-1] - breakpoints[-1]) == 0 into the
// extrapolation term, silently discarding the slope it just computed — this
// requires Σλ == 1 (so x beyond the last knot pins λ_last = 1 and routes
// the remainder through Excess) and adds Excess's contribution to y as
// rightSlope·Excess, giving actual linear extrapolation beyond the last
// breakpoint (SPEC_FULL.md §D.2).
func AddPiecewiseLinear(p *milp.Problem, xCoeffs map[int]float64, name string) PiecewiseVar {
	n := len(Breakpoints)
	rightSlope := (Values[n-1] - Values[n-2]) / (Breakpoints[n-1] - Breakpoints[n-2])

	lambdas := make([]int, n)
	for i := range lambdas {
		lambdas[i] = p.AddVar(fmt.Sprintf("lambda[%s][%d]", name, i), milp.Continuous, 0, 1)
	}
	excess := p.AddVar(fmt.Sprintf("excess[%s]", name), milp.Continuous, 0, math.Inf(1))
	y := p.AddVar(fmt.Sprintf("penalty[%s]", name), milp.Continuous, 0, math.Inf(1))

	sumLambda := make(map[int]float64, n)
	for _, l := range lambdas {
		sumLambda[l] = 1
	}
	p.AddConstraint(fmt.Sprintf("piecewise_sum_lambda[%s]", name), sumLambda, milp.EQ, 1)

	xConv := make(map[int]float64, n+2)
	for i, l := range lambdas {
		xConv[l] = Breakpoints[i]
	}
	xConv[excess] = 1
	for idx, coeff := range xCoeffs {
		xConv[idx] -= coeff
	}
	p.AddConstraint(fmt.Sprintf("piecewise_x_conv[%s]", name), xConv, milp.EQ, 0)

	yConv := make(map[int]float64, n+2)
	for i, l := range lambdas {
		yConv[l] = Values[i]
	}
	yConv[excess] = rightSlope
	yConv[y] = -1
	p.AddConstraint(fmt.Sprintf("piecewise_y_conv[%s]", name), yConv, milp.EQ, 0)

	return PiecewiseVar{Lambda: lambdas, Excess: excess, Y: y}
}

// AddSignedDeviationPenalty splits an affine deviation expression into
// positive and negative parts and applies the piecewise penalty to each,
// returning the variable index holding their sum — the pattern
// helpers/piecewise_linear.py's create_piecewise_deviation_variable uses
// for both the drift and factor objective terms.
func AddSignedDeviationPenalty(p *milp.Problem, deviationCoeffs map[int]float64, deviationConst float64, name string) int {
	posDev := p.AddVar(fmt.Sprintf("pos_dev[%s]", name), milp.Continuous, 0, math.Inf(1))
	negDev := p.AddVar(fmt.Sprintf("neg_dev[%s]", name), milp.Continuous, 0, math.Inf(1))

	split := make(map[int]float64, len(deviationCoeffs)+2)
	for idx, coeff := range deviationCoeffs {
		split[idx] = coeff
	}
	split[posDev] -= 1
	split[negDev] += 1
	p.AddConstraint(fmt.Sprintf("dev_split[%s]", name), split, milp.EQ, -deviationConst)

	posPenalty := AddPiecewiseLinear(p, map[int]float64{posDev: 1}, "pos_"+name)
	negPenalty := AddPiecewiseLinear(p, map[int]float64{negDev: 1}, "neg_"+name)

	total := p.AddVar(fmt.Sprintf("total_dev_penalty[%s]", name), milp.Continuous, 0, math.Inf(1))
	p.AddConstraint(
		fmt.Sprintf("total_dev_penalty_def[%s]", name),
		map[int]float64{posPenalty.Y: 1, negPenalty.Y: 1, total: -1},
		milp.EQ, 0,
	)
	return total
}
