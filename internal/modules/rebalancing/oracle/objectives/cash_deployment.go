package objectives

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// AddCashDeploymentTerm builds spec.md §4.5's cash deployment term: an
// excess_cash >= 0 variable bounded below by (new_cash_weight - cash_target),
// penalizing only the portion of cash above target and only the *increase*
// over the strategy's pre-trade excess. Grounded on
// objectives/cash_deployment/cash_deployment.py's
// calculate_cash_deployment_objective.
func AddCashDeploymentTerm(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) int {
	total := p.AddVar("cash_term_total", milp.Continuous, -1e18, 1e18)
	totalValue := s.TotalValue()

	var cashTarget, currentCashWeight float64
	found := false
	for _, t := range s.Targets {
		if t.AssetClass == oracle.CashIdentifier {
			cashTarget = t.TargetWeight
			found = true
		}
	}
	for _, row := range s.DriftReport {
		if row.AssetClass == oracle.CashIdentifier {
			currentCashWeight = row.ActualWeight
			found = true
		}
	}
	if !found || totalValue <= 0 {
		p.AddConstraint("cash_term_total_def", map[int]float64{total: 1}, milp.EQ, 0)
		return total
	}

	excessCash := p.AddVar("excess_cash", milp.Continuous, 0, 1e18)

	coeffs := make(map[int]float64)
	for id, idx := range vars.BuyIndex {
		if id == oracle.CashIdentifier {
			continue
		}
		coeffs[idx] -= s.Prices[id].Price / totalValue
	}
	lotsByID := lotIndex(s)
	for taxLotID, idx := range vars.SellIndex {
		lot := lotsByID[taxLotID]
		coeffs[idx] += s.Prices[lot.Identifier].Price / totalValue
	}
	coeffs[excessCash] = -1
	// new_cash_weight - cash_target <= excess_cash, i.e.
	// Σsell·price/tv - Σbuy·price/tv - excess_cash <= cash_target - current_cash_weight
	p.AddConstraint("cash_excess_constr", coeffs, milp.LE, cashTarget-currentCashWeight)

	initialExcess := currentCashWeight - cashTarget
	if initialExcess < 0 {
		initialExcess = 0
	}

	p.AddConstraint("cash_term_total_def",
		map[int]float64{excessCash: 1, total: -1}, milp.EQ, initialExcess)
	return total
}
