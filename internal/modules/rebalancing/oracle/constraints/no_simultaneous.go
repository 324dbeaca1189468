package constraints

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// NoSimultaneousValidator implements spec.md §4.4g: no identifier may have
// both a positive buy and a positive sell in the same solve, enforced via
// a per-identifier binary `is_buying` indicator and Big-M constraints.
// Grounded on constraints/no_simultaneous_constraint.py.
type NoSimultaneousValidator struct {
	Strategy *oracle.Strategy
}

func (n *NoSimultaneousValidator) Name() string { return "no_simultaneous" }

// This validator's admissibility genuinely depends on the whole trade set
// (whether any sell of the same identifier is also proposed), so it only
// contributes through Build.
func (n *NoSimultaneousValidator) ValidateBuy(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: n.Name()}
}

func (n *NoSimultaneousValidator) ValidateSell(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: n.Name()}
}

func (n *NoSimultaneousValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	for identifier, buyIdx := range vars.BuyIndex {
		if identifier == oracle.CashIdentifier {
			continue
		}
		lotIdxs := vars.SellLotsByIdentifier[identifier]
		if len(lotIdxs) == 0 {
			continue
		}

		isBuying := p.AddVar(fmt.Sprintf("is_buying[%s]", identifier), milp.Binary, 0, 1)

		p.AddConstraint(
			fmt.Sprintf("no_simultaneous_buy[%s]", identifier),
			map[int]float64{buyIdx: 1, isBuying: -BigM}, milp.LE, 0,
		)

		sellCoeffs := make(map[int]float64, len(lotIdxs)+1)
		for _, idx := range lotIdxs {
			sellCoeffs[idx] = 1
		}
		sellCoeffs[isBuying] = BigM
		p.AddConstraint(
			fmt.Sprintf("no_simultaneous_sell[%s]", identifier),
			sellCoeffs, milp.LE, BigM,
		)
	}
	return nil
}
