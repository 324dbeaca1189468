package milp

import (
	"fmt"
	"math"
	"time"
)

// Status mirrors the solver-outcome vocabulary surfaced to callers, the Go
// equivalent of the status pulp.LpStatus returns in
// original_source/oracle/src/solvers/solver.py.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeLimit  Status = "TIME_LIMIT"
	StatusNodeLimit  Status = "NODE_LIMIT"
	StatusUnbounded  Status = "UNBOUNDED"
)

// Solution is the outcome of a branch-and-bound solve.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64 // variable name -> value
	Nodes     int
	Gap       float64
}

// Options configures the branch-and-bound search, matching
// original_source/oracle/src/solvers/solver.py's time_limit/gap_rel/maxNodes
// parameters (SPEC_FULL.md §A.3).
type Options struct {
	TimeLimit time.Duration
	GapRel    float64
	MaxNodes  int
	WarmStart *WarmStart
}

type node struct {
	fixedLower map[int]float64
	fixedUpper map[int]float64
	bound      float64 // LP relaxation objective at this node (a valid bound since relaxing integrality can only help)
}

// Solve runs branch-and-bound over every Binary variable in p, using
// solveLPRelaxation for each node's relaxation. Continuous variables are
// never branched on. Binary variables fixed by WarmStart seed the initial
// incumbent search order but do not prune the tree — warm start here only
// accelerates convergence, it never changes the optimal answer.
func Solve(p *Problem, opts Options) Solution {
	deadline := time.Now().Add(opts.TimeLimit)
	if opts.TimeLimit <= 0 {
		deadline = time.Now().Add(60 * time.Second)
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = 10000
	}

	var binaryVars []int
	for j, v := range p.Vars {
		if v.Kind == Binary {
			binaryVars = append(binaryVars, j)
		}
	}

	if opts.WarmStart != nil {
		binaryVars = seedBranchOrder(p, binaryVars, opts.WarmStart)
	}

	root := node{fixedLower: map[int]float64{}, fixedUpper: map[int]float64{}}
	stack := []node{root}

	var incumbent *lpResult
	incumbentValues := map[int]float64{}
	nodesExplored := 0
	bestBound := math.Inf(1)
	if !p.Minimize {
		bestBound = math.Inf(-1)
	}

	better := func(a, b float64) bool {
		if p.Minimize {
			return a < b
		}
		return a > b
	}

	for len(stack) > 0 {
		if time.Now().After(deadline) {
			return finalize(p, incumbent, incumbentValues, nodesExplored, StatusTimeLimit, opts.GapRel)
		}
		if nodesExplored >= maxNodes {
			return finalize(p, incumbent, incumbentValues, nodesExplored, StatusNodeLimit, opts.GapRel)
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodesExplored++

		relax := solveLPRelaxation(p, cur.fixedLower, cur.fixedUpper)
		if !relax.Feasible {
			continue
		}
		if incumbent != nil && !better(relax.Objective, incumbent.Objective) {
			// This node's relaxation cannot beat the current incumbent;
			// prune (relaxation bound dominates every integral descendant).
			if relax.Objective != incumbent.Objective {
				continue
			}
		}

		branchVar := mostFractional(p, relax, binaryVars, cur)
		if branchVar == -1 {
			if incumbent == nil || better(relax.Objective, incumbent.Objective) {
				r := relax
				incumbent = &r
				for j := range p.Vars {
					incumbentValues[j] = relax.Values[j]
				}
				bestBound = relax.Objective
			}
			continue
		}

		lowerChild := cloneNode(cur)
		lowerChild.fixedLower[branchVar] = 0
		lowerChild.fixedUpper[branchVar] = 0
		lowerChild.bound = relax.Objective

		upperChild := cloneNode(cur)
		upperChild.fixedLower[branchVar] = 1
		upperChild.fixedUpper[branchVar] = 1
		upperChild.bound = relax.Objective

		// Push so the branch closer to the relaxed value of branchVar is
		// explored first — a depth-
		// first stack finds a good incumbent quickly, which then prunes
		// the rest of the tree via the bound check above.
		if relax.Values[branchVar] >= 0.5 {
			stack = append(stack, lowerChild, upperChild)
		} else {
			stack = append(stack, upperChild, lowerChild)
		}
	}

	status := StatusOptimal
	if incumbent == nil {
		status = StatusInfeasible
	}
	_ = bestBound
	return finalize(p, incumbent, incumbentValues, nodesExplored, status, opts.GapRel)
}

func cloneNode(n node) node {
	out := node{
		fixedLower: make(map[int]float64, len(n.fixedLower)),
		fixedUpper: make(map[int]float64, len(n.fixedUpper)),
	}
	for k, v := range n.fixedLower {
		out.fixedLower[k] = v
	}
	for k, v := range n.fixedUpper {
		out.fixedUpper[k] = v
	}
	return out
}

// mostFractional returns the index of the binary variable whose relaxed
// value is furthest from 0 or 1 and not yet fixed at this node, or -1 if
// every binary variable already has an integral (or fixed) value.
func mostFractional(p *Problem, relax lpResult, binaryVars []int, n node) int {
	best := -1
	bestDist := simplexEpsilon
	for _, j := range binaryVars {
		if _, fixed := n.fixedLower[j]; fixed {
			if _, alsoFixed := n.fixedUpper[j]; alsoFixed {
				continue
			}
		}
		v := relax.Values[j]
		frac := math.Abs(v - math.Round(v))
		if frac > bestDist {
			bestDist = frac
			best = j
		}
	}
	return best
}

func finalize(p *Problem, incumbent *lpResult, values map[int]float64, nodes int, status Status, gapRel float64) Solution {
	if incumbent == nil {
		return Solution{Status: status, Nodes: nodes}
	}
	out := make(map[string]float64, len(p.Vars))
	for j, v := range p.Vars {
		out[v.Name] = values[j]
	}
	return Solution{
		Status:    StatusOptimal,
		Objective: incumbent.Objective,
		Values:    out,
		Nodes:     nodes,
		Gap:       gapRel,
	}
}

// Validate checks a candidate Problem for obviously malformed input before
// it reaches the simplex (e.g. a constraint referencing an unknown
// variable index), surfacing a clear error rather than an out-of-range
// panic deep in tableau construction.
func Validate(p *Problem) error {
	n := p.NumVars()
	for _, c := range p.Constraints {
		for j := range c.Coeffs {
			if j < 0 || j >= n {
				return fmt.Errorf("constraint %q references unknown variable index %d", c.Name, j)
			}
		}
	}
	for j := range p.Objective {
		if j < 0 || j >= n {
			return fmt.Errorf("objective references unknown variable index %d", j)
		}
	}
	return nil
}
