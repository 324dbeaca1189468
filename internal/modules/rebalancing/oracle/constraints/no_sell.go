package constraints

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// NoSellValidator pins every sell variable to 0, the sell-side half of
// spec.md §4.5's "all sells = 0" (BUY_ONLY) and "all vars = 0" (HOLD)
// extra-constraint column. Grounded on the same pattern
// constraints/no_buy_constraint.py uses for the buy side.
type NoSellValidator struct {
	Strategy *oracle.Strategy
}

func (n *NoSellValidator) Name() string { return "no_sell" }

func (n *NoSellValidator) ValidateSell(taxLotID string, qty float64) (bool, string, error) {
	if qty > 0 {
		return false, fmt.Sprintf("selling is disabled for lot %s", taxLotID), nil
	}
	return true, "", nil
}

func (n *NoSellValidator) ValidateBuy(string, float64) (bool, string, error) {
	return true, "", nil
}

func (n *NoSellValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	for taxLotID, idx := range vars.SellIndex {
		p.AddConstraint(fmt.Sprintf("no_sell_global[%s]", taxLotID), map[int]float64{idx: 1}, milp.EQ, 0)
	}
	return nil
}
