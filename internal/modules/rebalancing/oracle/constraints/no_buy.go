package constraints

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// NoBuyValidator implements spec.md §4.4h: pin all non-cash buys to 0,
// used together with NoSellValidator for the HOLD setup's all-zero posture
// and on its own for the max-withdrawal driver's forced no-buy posture.
// Grounded on constraints/no_buy_constraint.py.
type NoBuyValidator struct {
	Strategy *oracle.Strategy
}

func (n *NoBuyValidator) Name() string { return "no_buy" }

func (n *NoBuyValidator) ValidateBuy(identifier string, qty float64) (bool, string, error) {
	if qty > 0 {
		return false, fmt.Sprintf("buying is disabled for %s", identifier), nil
	}
	return true, "", nil
}

func (n *NoBuyValidator) ValidateSell(string, float64) (bool, string, error) {
	return true, "", nil
}

func (n *NoBuyValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	for identifier, idx := range vars.BuyIndex {
		if identifier == oracle.CashIdentifier {
			continue
		}
		p.AddConstraint(fmt.Sprintf("no_buy_global[%s]", identifier), map[int]float64{idx: 1}, milp.EQ, 0)
	}
	return nil
}
