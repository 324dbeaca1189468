// Package milp implements the mixed-integer linear program builder and
// solver backing the rebalancing engine. No MILP or LP library exists
// anywhere in the corpus this module was grounded on; gonum.org/v1/gonum
// (a dependency the teacher declares but never actually imports anywhere)
// is wired in here to back the tableau arithmetic of a hand-rolled
// two-phase simplex with branch-and-bound over binary variables, mirroring
// the role original_source/oracle/src/solvers/solver.py's pulp.COIN_CMD
// plays for the Python implementation.
package milp

import "fmt"

// VarKind distinguishes a continuous decision variable from a 0/1
// indicator.
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// Sense is a linear constraint's comparison operator.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// Variable is one column of the problem.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Constraint is one named row of the problem: Σ Coeffs[i]·x[i] `Sense` RHS.
type Constraint struct {
	Name   string
	Coeffs map[int]float64
	Sense  Sense
	RHS    float64
}

// Problem is a mutable MILP builder: variables, named constraints, and a
// linear objective, analogous to pulp.LpProblem in
// original_source/oracle/src/solvers/solver.py but owned exclusively by one
// solve (SPEC_FULL.md §9's "encapsulate as an owned builder value" note).
type Problem struct {
	Minimize    bool
	Vars        []Variable
	nameIndex   map[string]int
	Constraints []Constraint
	Objective   map[int]float64
}

// NewProblem creates an empty problem with the given optimization sense.
func NewProblem(minimize bool) *Problem {
	return &Problem{
		Minimize:  minimize,
		nameIndex: make(map[string]int),
		Objective: make(map[int]float64),
	}
}

// AddVar registers a new decision variable and returns its index. Variable
// names must be unique within the problem.
func (p *Problem) AddVar(name string, kind VarKind, lower, upper float64) int {
	if _, exists := p.nameIndex[name]; exists {
		panic(fmt.Sprintf("milp: duplicate variable name %q", name))
	}
	idx := len(p.Vars)
	p.Vars = append(p.Vars, Variable{Name: name, Kind: kind, Lower: lower, Upper: upper})
	p.nameIndex[name] = idx
	return idx
}

// VarIndex looks up a previously registered variable by name.
func (p *Problem) VarIndex(name string) (int, bool) {
	idx, ok := p.nameIndex[name]
	return idx, ok
}

// MustVarIndex is VarIndex but panics on a missing name; used internally
// once a variable is known to have been registered earlier in the same
// constraint-building pass.
func (p *Problem) MustVarIndex(name string) int {
	idx, ok := p.nameIndex[name]
	if !ok {
		panic(fmt.Sprintf("milp: unknown variable name %q", name))
	}
	return idx
}

// AddConstraint appends a named linear constraint. coeffs maps variable
// index to coefficient; indices not present are treated as 0.
func (p *Problem) AddConstraint(name string, coeffs map[int]float64, sense Sense, rhs float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Coeffs: coeffs, Sense: sense, RHS: rhs})
}

// AddObjectiveTerm accumulates coeff into the objective's coefficient for
// varIndex (objective terms are built incrementally by multiple
// contributors, so this adds rather than overwrites).
func (p *Problem) AddObjectiveTerm(varIndex int, coeff float64) {
	p.Objective[varIndex] += coeff
}

// NumVars returns the number of registered variables.
func (p *Problem) NumVars() int { return len(p.Vars) }
