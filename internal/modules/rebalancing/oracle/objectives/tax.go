package objectives

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// discouragementFactor scales down a loss lot's (negative) per-share tax
// liability when wash-sale prevention is enabled, so the objective still
// prefers harvesting a loss but far less aggressively than an unconstrained
// tax-minimizer would. Grounded on objectives/taxes/tax_optimization.py's
// `per_share_tax / 5`.
const discouragementFactor = 1.0 / 5.0

// AddTaxTerm builds the tax_realized signed variable for every lot with a
// nonzero (post-adjustment) per-share tax liability and returns the
// variable index holding their weighted sum, for use as one term of the
// composed objective. Grounded on
// objectives/taxes/tax_optimization.py's calculate_tax_impact.
func AddTaxTerm(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) (int, error) {
	totalValue := s.TotalValue()
	termTotal := p.AddVar("tax_term_total", milp.Continuous, -1e18, 1e18)

	if totalValue <= 0 {
		p.AddConstraint("tax_term_total_def", map[int]float64{termTotal: 1}, milp.EQ, 0)
		return termTotal, nil
	}

	gainLossByLot := s.GainLossByLot()
	coeffs := map[int]float64{termTotal: -1}

	for taxLotID, sellIdx := range vars.SellIndex {
		row, ok := gainLossByLot[taxLotID]
		if !ok {
			continue
		}
		perShareTax := row.PerShareTaxLiability
		if perShareTax < 0 {
			if s.EnforceWashSalePrevention {
				perShareTax *= discouragementFactor
			} else {
				perShareTax = 0
			}
		}
		if perShareTax == 0 {
			continue
		}

		taxRealized := p.AddVar(fmt.Sprintf("tax_realized[%s]", taxLotID), milp.Continuous, -1e18, 1e18)
		p.AddConstraint(
			fmt.Sprintf("tax_realized_def[%s]", taxLotID),
			map[int]float64{taxRealized: 1, sellIdx: -perShareTax / totalValue},
			milp.EQ, 0,
		)
		coeffs[taxRealized] += 1
	}

	p.AddConstraint("tax_term_total_def", coeffs, milp.EQ, 0)
	return termTotal, nil
}
