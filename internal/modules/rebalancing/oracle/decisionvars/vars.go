// Package decisionvars builds the continuous buy/sell columns of the MILP,
// the first stage of the pipeline spec.md §4.2 describes as the "decision
// variable builder". Binary indicator variables (liquidate, happens,
// is_buying) are added later by their owning constraint validators in
// oracle/constraints, which is also where Big-M constants live.
package decisionvars

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// BuyVarName returns the MILP variable name for identifier's buy column.
func BuyVarName(identifier string) string {
	return fmt.Sprintf("buy[%s]", identifier)
}

// SellVarName returns the MILP variable name for a tax lot's sell column.
func SellVarName(taxLotID string) string {
	return fmt.Sprintf("sell[%s]", taxLotID)
}

// Set indexes the decision variables created by Build, letting downstream
// constraint/objective builders look up a variable's index by its domain
// key instead of re-deriving the name string everywhere.
type Set struct {
	Problem *milp.Problem

	BuyIndex  map[string]int // identifier -> var index
	SellIndex map[string]int // tax_lot_id -> var index

	// SellLotsByIdentifier groups sell variable indices by identifier, for
	// validators that aggregate sells across a position's lots (min
	// notional, wash sale, no-simultaneous).
	SellLotsByIdentifier map[string][]int
}

// Build creates one continuous buy[id] variable per strategy.CandidateIdentifiers
// plus CASH (always pinned to 0 by the cash constraint, per spec.md §4.4a,
// but still registered so objective/constraint builders can reference it
// uniformly), and one continuous sell[lot] variable per tax lot, upper
// bounded by the lot's quantity.
func Build(p *milp.Problem, s *oracle.Strategy) *Set {
	set := &Set{
		Problem:              p,
		BuyIndex:             make(map[string]int),
		SellIndex:            make(map[string]int),
		SellLotsByIdentifier: make(map[string][]int),
	}

	candidates := s.CandidateIdentifiers()
	candidates = append(candidates, oracle.CashIdentifier)
	for _, id := range candidates {
		idx := p.AddVar(BuyVarName(id), milp.Continuous, 0, math.Inf(1))
		set.BuyIndex[id] = idx
	}

	for _, lot := range s.TaxLots {
		idx := p.AddVar(SellVarName(lot.TaxLotID), milp.Continuous, 0, lot.Quantity)
		set.SellIndex[lot.TaxLotID] = idx
		set.SellLotsByIdentifier[lot.Identifier] = append(set.SellLotsByIdentifier[lot.Identifier], idx)
	}

	return set
}
