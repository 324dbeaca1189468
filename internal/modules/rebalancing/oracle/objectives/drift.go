package objectives

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// AddDriftTerm builds, for every asset class, the post-trade weight
// deviation from target and passes it through the shared piecewise-linear
// convex penalty, returning the variable index holding their sum. Grounded
// on spec.md §4.5's drift term and
// helpers/piecewise_linear.py's create_piecewise_deviation_variable.
func AddDriftTerm(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) int {
	total := p.AddVar("drift_term_total", milp.Continuous, 0, 1e18)
	totalValue := s.TotalValue()
	if totalValue <= 0 {
		p.AddConstraint("drift_term_total_def", map[int]float64{total: 1}, milp.EQ, 0)
		return total
	}

	driftByClass := make(map[string]oracle.DriftRow, len(s.DriftReport))
	for _, row := range s.DriftReport {
		driftByClass[row.AssetClass] = row
	}

	coeffs := map[int]float64{total: -1}

	for _, target := range s.Targets {
		row, ok := driftByClass[target.AssetClass]
		if !ok {
			continue
		}

		devCoeffs := make(map[int]float64)
		for _, id := range target.Identifiers {
			if id == oracle.CashIdentifier {
				continue
			}
			price := s.Prices[id].Price
			if idx, ok := vars.BuyIndex[id]; ok {
				devCoeffs[idx] += price / totalValue
			}
			for _, idx := range vars.SellLotsByIdentifier[id] {
				devCoeffs[idx] -= price / totalValue
			}
		}
		deviationConst := row.MarketValue/totalValue - row.TargetWeight

		penalty := AddSignedDeviationPenalty(p, devCoeffs, deviationConst, fmt.Sprintf("drift[%s]", target.AssetClass))
		coeffs[penalty] += 1
	}

	p.AddConstraint("drift_term_total_def", coeffs, milp.EQ, 0)
	return total
}
