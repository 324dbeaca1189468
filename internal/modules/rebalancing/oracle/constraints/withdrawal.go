package constraints

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// WithdrawalValidator implements spec.md §4.4b: when withdrawal_amount > 0,
// require the post-trade cash position minus the withdrawal to remain
// non-negative, stacked on top of (not replacing) the cash floor from
// CashValidator. Grounded on constraints/withdrawal_constraint.py.
type WithdrawalValidator struct {
	Strategy *oracle.Strategy
}

func (w *WithdrawalValidator) Name() string { return "withdrawal" }

func (w *WithdrawalValidator) ValidateBuy(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: w.Name()}
}

func (w *WithdrawalValidator) ValidateSell(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: w.Name()}
}

func (w *WithdrawalValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	s := w.Strategy
	if s.WithdrawalAmount <= 0 {
		return nil
	}

	lotsByID := lotIndex(s)
	coeffs := make(map[int]float64)
	for id, idx := range vars.BuyIndex {
		if id == oracle.CashIdentifier {
			continue
		}
		price := s.Prices[id].Price
		spread := s.Spreads[id]
		coeffs[idx] -= price + spread.PerShareCost(price)
	}
	for taxLotID, idx := range vars.SellIndex {
		lot := lotsByID[taxLotID]
		price := s.Prices[lot.Identifier].Price
		spread := s.Spreads[lot.Identifier]
		coeffs[idx] += price - spread.PerShareCost(price)
	}

	// cash + sell_proceeds - buy_cost - withdrawal_amount >= 0
	p.AddConstraint("withdrawal_floor", coeffs, milp.GE, s.WithdrawalAmount-s.Cash)
	return nil
}
