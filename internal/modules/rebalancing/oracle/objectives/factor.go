package objectives

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// AddFactorTerm builds, for every factor column, the portfolio-weighted
// exposure change implied by the proposed trades plus the pre-existing
// actual-vs-target gap, and passes it through the shared piecewise
// compression — DIRECT_INDEX only, per spec.md §4.5. Grounded on
// objectives/factor_model/factor_model_optimization.py.
func AddFactorTerm(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) int {
	total := p.AddVar("factor_term_total", milp.Continuous, 0, 1e18)
	totalValue := s.TotalValue()
	if totalValue <= 0 || s.FactorModel == nil || len(s.FactorModel.Factors) == 0 {
		p.AddConstraint("factor_term_total_def", map[int]float64{total: 1}, milp.EQ, 0)
		return total
	}

	coeffs := map[int]float64{total: -1}

	for _, factor := range s.FactorModel.Factors {
		devCoeffs := make(map[int]float64)
		for id, idx := range vars.BuyIndex {
			if id == oracle.CashIdentifier {
				continue
			}
			price := s.Prices[id].Price
			exposure := s.FactorModel.Exposure(id, factor)
			if exposure == 0 {
				continue
			}
			devCoeffs[idx] += (price / totalValue) * exposure
		}
		lotsByID := lotIndex(s)
		for taxLotID, idx := range vars.SellIndex {
			lot := lotsByID[taxLotID]
			price := s.Prices[lot.Identifier].Price
			exposure := s.FactorModel.Exposure(lot.Identifier, factor)
			if exposure == 0 {
				continue
			}
			devCoeffs[idx] -= (price / totalValue) * exposure
		}

		deviationConst := s.FactorModelActual[factor] - s.FactorModelTarget[factor]

		penalty := AddSignedDeviationPenalty(p, devCoeffs, deviationConst, fmt.Sprintf("factor[%s]", factor))
		coeffs[penalty] += 1
	}

	p.AddConstraint("factor_term_total_def", coeffs, milp.EQ, 0)
	return total
}
