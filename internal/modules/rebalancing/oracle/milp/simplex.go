package milp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// simplexEpsilon is the tolerance used throughout pivoting and feasibility
// checks, chosen to comfortably clear floating-point noise in portfolio-
// scale coefficients (dollar quantities, weights in [0,1]).
const simplexEpsilon = 1e-9

// lpResult is the outcome of solving one LP relaxation.
type lpResult struct {
	Feasible bool
	Unbounded bool
	Values    []float64 // one value per original Problem variable, in Problem.Vars order
	Objective float64
}

// standardForm augments the constraint set with an explicit upper-bound row for
// every variable with a finite upper bound, so the simplex tableau only
// ever has to reason about x >= 0 (lower bounds are removed by shifting).
type standardForm struct {
	// shifted-variable objective/constraint coefficients, one row per
	// constraint (including synthesized upper-bound rows), one column per
	// shifted variable.
	numVars        int
	lowerBounds    []float64 // original lower bounds, added back after solving
	rows           []Constraint
	objective      []float64 // length numVars, in shifted-variable terms
	objectiveConst float64   // Σ coeff_j * lower_j, added back to reported objective value
}

// buildStandardForm shifts every variable to a [0, upper-lower] domain and
// appends an explicit "<= upper-lower" row for every finite upper bound, so
// the rest of the solver only ever deals with non-negative variables.
func buildStandardForm(p *Problem) standardForm {
	n := len(p.Vars)
	sf := standardForm{
		numVars:     n,
		lowerBounds: make([]float64, n),
		objective:   make([]float64, n),
	}

	for j, v := range p.Vars {
		sf.lowerBounds[j] = v.Lower
	}

	for j, coeff := range p.Objective {
		sf.objective[j] = coeff
		sf.objectiveConst += coeff * sf.lowerBounds[j]
	}

	for _, c := range p.Constraints {
		rhs := c.RHS
		coeffs := make(map[int]float64, len(c.Coeffs))
		for j, coeff := range c.Coeffs {
			coeffs[j] = coeff
			rhs -= coeff * sf.lowerBounds[j]
		}
		sf.rows = append(sf.rows, Constraint{Name: c.Name, Coeffs: coeffs, Sense: c.Sense, RHS: rhs})
	}

	for j, v := range p.Vars {
		if !math.IsInf(v.Upper, 1) {
			width := v.Upper - v.Lower
			sf.rows = append(sf.rows, Constraint{
				Name:   fmt.Sprintf("__ub_%s", v.Name),
				Coeffs: map[int]float64{j: 1},
				Sense:  LE,
				RHS:    width,
			})
		}
	}

	return sf
}

// solveLPRelaxation solves the LP relaxation of p (every Binary variable
// treated as Continuous in [0,1] unless fixedLower/fixedUpper constrain it further,
// used by branch-and-bound to explore child nodes without rebuilding the
// whole Problem) using a two-phase primal simplex over a dense tableau
// backed by gonum/mat.
func solveLPRelaxation(p *Problem, fixedLower, fixedUpper map[int]float64) lpResult {
	sf := buildStandardForm(applyFixedBounds(p, fixedLower, fixedUpper))
	return solveStandardForm(sf)
}

// applyFixedBounds returns a shallow copy of p with fixedLower/fixedUpper
// overriding the corresponding variables' bounds, used by branch-and-bound
// to tighten a binary variable to 0 or 1 for one node without mutating the
// shared Problem.
func applyFixedBounds(p *Problem, fixedLower, fixedUpper map[int]float64) *Problem {
	if len(fixedLower) == 0 && len(fixedUpper) == 0 {
		return p
	}
	clone := &Problem{
		Minimize:    p.Minimize,
		Vars:        make([]Variable, len(p.Vars)),
		Constraints: p.Constraints,
		Objective:   p.Objective,
	}
	copy(clone.Vars, p.Vars)
	for idx, lb := range fixedLower {
		clone.Vars[idx].Lower = lb
	}
	for idx, ub := range fixedUpper {
		clone.Vars[idx].Upper = ub
	}
	return clone
}

// solveStandardForm runs the two-phase simplex method on a non-negative
// standard-form LP and maps the result back to the original (unshifted)
// variable space.
func solveStandardForm(sf standardForm) lpResult {
	numStructural := sf.numVars
	numRows := len(sf.rows)

	// Negating a row to make its RHS non-negative also flips its sense
	// (<= becomes >=, >= becomes <=); compute the effective sense up front
	// so column assignment (slack vs. surplus vs. artificial) is decided
	// once, before the tableau is allocated.
	sign := make([]float64, numRows)
	effectiveSense := make([]Sense, numRows)
	rhs := make([]float64, numRows)
	for i, row := range sf.rows {
		sign[i] = 1
		effectiveSense[i] = row.Sense
		rhs[i] = row.RHS
		if rhs[i] < 0 {
			sign[i] = -1
			rhs[i] = -rhs[i]
			switch row.Sense {
			case LE:
				effectiveSense[i] = GE
			case GE:
				effectiveSense[i] = LE
			}
		}
	}

	// Column layout: [structural vars][slack/surplus vars][artificial vars][rhs]
	slackCol := make([]int, numRows) // -1 if row has no slack/surplus column
	artificialCol := make([]int, numRows)
	for i := range artificialCol {
		artificialCol[i] = -1
	}

	col := numStructural
	for i := range sf.rows {
		if effectiveSense[i] != EQ {
			slackCol[i] = col
			col++
		} else {
			slackCol[i] = -1
		}
	}
	for i := range sf.rows {
		if effectiveSense[i] == EQ || effectiveSense[i] == GE {
			artificialCol[i] = col
			col++
		}
	}

	numCols := col
	tab := mat.NewDense(numRows+1, numCols+1, nil)

	for i, row := range sf.rows {
		for j, coeff := range row.Coeffs {
			tab.Set(i, j, sign[i]*coeff)
		}
		switch effectiveSense[i] {
		case LE:
			tab.Set(i, slackCol[i], 1)
		case GE:
			tab.Set(i, slackCol[i], -1)
		}
		if artificialCol[i] >= 0 {
			tab.Set(i, artificialCol[i], 1)
		}
		tab.Set(i, numCols, rhs[i])
	}

	basis := make([]int, numRows)
	for i := range basis {
		switch {
		case artificialCol[i] >= 0:
			basis[i] = artificialCol[i]
		case slackCol[i] >= 0:
			basis[i] = slackCol[i]
		default:
			// Should not happen: every row has either a slack or an
			// artificial column by construction above.
			basis[i] = -1
		}
	}

	hasArtificial := false
	for _, c := range artificialCol {
		if c >= 0 {
			hasArtificial = true
			break
		}
	}

	if hasArtificial {
		setPhaseObjective(tab, numRows, numCols, basis, phase1Costs(numCols, artificialCol))
		if !runSimplex(tab, numRows, numCols, basis) {
			return lpResult{Feasible: false}
		}
		phase1Value := tab.At(numRows, numCols)
		if phase1Value > 1e-6 {
			return lpResult{Feasible: false}
		}
		driveArtificialsOut(tab, numRows, numCols, basis, artificialCol)
	}

	objCosts := make([]float64, numCols)
	for j := 0; j < numStructural; j++ {
		objCosts[j] = sf.objective[j]
	}
	setPhaseObjective(tab, numRows, numCols, basis, objCosts)
	ok := runSimplex(tab, numRows, numCols, basis)
	if !ok {
		return lpResult{Unbounded: true}
	}

	values := make([]float64, numStructural)
	for i, b := range basis {
		if b >= 0 && b < numStructural {
			values[b] = tab.At(i, numCols)
		}
	}

	shiftedObjective := 0.0
	for j := 0; j < numStructural; j++ {
		shiftedObjective += sf.objective[j] * values[j]
	}

	finalValues := make([]float64, numStructural)
	for j := range values {
		finalValues[j] = values[j] + sf.lowerBounds[j]
	}

	return lpResult{
		Feasible:  true,
		Values:    finalValues,
		Objective: shiftedObjective + sf.objectiveConst,
	}
}

// phase1Costs returns the phase-1 objective (minimize sum of artificials).
func phase1Costs(numCols int, artificialCol []int) []float64 {
	costs := make([]float64, numCols)
	for _, c := range artificialCol {
		if c >= 0 {
			costs[c] = 1
		}
	}
	return costs
}

// setPhaseObjective writes costs (to be minimized) into the tableau's
// objective row, already reduced with respect to the current basis so the
// tableau remains in canonical form.
func setPhaseObjective(tab *mat.Dense, numRows, numCols int, basis []int, costs []float64) {
	for j := 0; j <= numCols; j++ {
		tab.Set(numRows, j, 0)
	}
	for j := 0; j < numCols; j++ {
		tab.Set(numRows, j, -costs[j])
	}
	for i, b := range basis {
		cb := costs[b]
		if cb == 0 {
			continue
		}
		for j := 0; j <= numCols; j++ {
			tab.Set(numRows, j, tab.At(numRows, j)+cb*tab.At(i, j))
		}
	}
}

// runSimplex pivots the tableau to optimality using Bland's rule (smallest
// index among improving columns, smallest index among tied ratio-test rows)
// to guarantee termination. Returns false if the problem is unbounded.
func runSimplex(tab *mat.Dense, numRows, numCols int, basis []int) bool {
	const maxIterations = 20000

	for iter := 0; iter < maxIterations; iter++ {
		pivotCol := -1
		for j := 0; j < numCols; j++ {
			if tab.At(numRows, j) < -simplexEpsilon {
				pivotCol = j
				break
			}
		}
		if pivotCol == -1 {
			return true
		}

		pivotRow := -1
		bestRatio := math.Inf(1)
		for i := 0; i < numRows; i++ {
			a := tab.At(i, pivotCol)
			if a <= simplexEpsilon {
				continue
			}
			ratio := tab.At(i, numCols) / a
			if ratio < bestRatio-simplexEpsilon ||
				(math.Abs(ratio-bestRatio) <= simplexEpsilon && (pivotRow == -1 || basis[i] < basis[pivotRow])) {
				bestRatio = ratio
				pivotRow = i
			}
		}
		if pivotRow == -1 {
			return false // unbounded
		}

		pivot(tab, numRows, numCols, pivotRow, pivotCol)
		basis[pivotRow] = pivotCol
	}
	return true
}

// pivot performs a Gauss-Jordan elimination step around (pivotRow, pivotCol).
func pivot(tab *mat.Dense, numRows, numCols int, pivotRow, pivotCol int) {
	pv := tab.At(pivotRow, pivotCol)
	for j := 0; j <= numCols; j++ {
		tab.Set(pivotRow, j, tab.At(pivotRow, j)/pv)
	}
	for i := 0; i <= numRows; i++ {
		if i == pivotRow {
			continue
		}
		factor := tab.At(i, pivotCol)
		if factor == 0 {
			continue
		}
		for j := 0; j <= numCols; j++ {
			tab.Set(i, j, tab.At(i, j)-factor*tab.At(pivotRow, j))
		}
	}
}

// driveArtificialsOut zeroes out any artificial variable still in the
// basis at a zero level after phase 1 (degenerate feasible vertex), by
// pivoting it out in favor of any structural/slack column with a nonzero
// coefficient in its row.
func driveArtificialsOut(tab *mat.Dense, numRows, numCols int, basis []int, artificialCol []int) {
	isArtificial := make(map[int]bool, len(artificialCol))
	for _, c := range artificialCol {
		if c >= 0 {
			isArtificial[c] = true
		}
	}
	for i, b := range basis {
		if !isArtificial[b] {
			continue
		}
		for j := 0; j < numCols; j++ {
			if isArtificial[j] {
				continue
			}
			if math.Abs(tab.At(i, j)) > simplexEpsilon {
				pivot(tab, numRows, numCols, i, j)
				basis[i] = j
				break
			}
		}
	}
}
