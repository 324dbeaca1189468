package objectives

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// AddTransactionTerm builds Σ (buy[id] + sell[lot])·per_share_cost/total_value,
// spec.md §4.5's transaction-cost term, and returns the variable index
// holding it. Grounded on
// objectives/transaction_costs/transaction_optimization.py.
func AddTransactionTerm(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) int {
	totalValue := s.TotalValue()
	term := p.AddVar("transaction_term_total", milp.Continuous, 0, 1e18)

	coeffs := map[int]float64{term: -1}
	if totalValue <= 0 {
		p.AddConstraint("transaction_term_total_def", coeffs, milp.EQ, 0)
		return term
	}

	for id, idx := range vars.BuyIndex {
		if id == oracle.CashIdentifier {
			continue
		}
		price := s.Prices[id].Price
		perShareCost := s.Spreads[id].PerShareCost(price)
		coeffs[idx] += perShareCost / totalValue
	}

	lotsByID := lotIndex(s)
	for taxLotID, idx := range vars.SellIndex {
		lot := lotsByID[taxLotID]
		price := s.Prices[lot.Identifier].Price
		perShareCost := s.Spreads[lot.Identifier].PerShareCost(price)
		coeffs[idx] += perShareCost / totalValue
	}

	p.AddConstraint("transaction_term_total_def", coeffs, milp.EQ, 0)
	return term
}

func lotIndex(s *oracle.Strategy) map[string]oracle.TaxLot {
	out := make(map[string]oracle.TaxLot, len(s.TaxLots))
	for _, lot := range s.TaxLots {
		out[lot.TaxLotID] = lot
	}
	return out
}
