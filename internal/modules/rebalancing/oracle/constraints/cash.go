package constraints

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// CashValidator implements spec.md §4.4a: the CASH buy variable is always
// pinned to 0, total buy cost may not exceed cash plus sell proceeds, and
// the post-trade cash position must not fall below min_cash. Grounded on
// constraints/cash_constraint.py.
type CashValidator struct {
	Strategy *oracle.Strategy
}

func (c *CashValidator) Name() string { return "cash" }

// ValidateBuy and ValidateSell depend on the whole trade set (the combined
// cash delta across every other trade), so this validator only contributes
// through Build, per spec.md §4.4's "not supported alone" carve-out.
func (c *CashValidator) ValidateBuy(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: c.Name()}
}

func (c *CashValidator) ValidateSell(string, float64) (bool, string, error) {
	return false, "", &oracle.NotSupportedAloneError{Validator: c.Name()}
}

func (c *CashValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	s := c.Strategy

	cashBuyIdx, ok := vars.BuyIndex[oracle.CashIdentifier]
	if ok {
		p.AddConstraint("cash_buy_zero", map[int]float64{cashBuyIdx: 1}, milp.EQ, 0)
	}

	buyCost := make(map[int]float64)
	for id, idx := range vars.BuyIndex {
		if id == oracle.CashIdentifier {
			continue
		}
		price := s.Prices[id].Price
		spread := s.Spreads[id]
		buyCost[idx] = price + spread.PerShareCost(price)
	}

	sellProceeds := make(map[int]float64)
	lotsByID := lotIndex(s)
	for taxLotID, idx := range vars.SellIndex {
		lot := lotsByID[taxLotID]
		price := s.Prices[lot.Identifier].Price
		spread := s.Spreads[lot.Identifier]
		sellProceeds[idx] = price - spread.PerShareCost(price)
	}

	// total buy cost <= cash + total sell proceeds
	budgetCoeffs := make(map[int]float64, len(buyCost)+len(sellProceeds))
	for idx, c := range buyCost {
		budgetCoeffs[idx] += c
	}
	for idx, c := range sellProceeds {
		budgetCoeffs[idx] -= c
	}
	p.AddConstraint("cash_budget", budgetCoeffs, milp.LE, s.Cash)

	// cash + sell proceeds - buy cost >= min_cash
	floorCoeffs := make(map[int]float64, len(buyCost)+len(sellProceeds))
	for idx, c := range buyCost {
		floorCoeffs[idx] -= c
	}
	for idx, c := range sellProceeds {
		floorCoeffs[idx] += c
	}
	p.AddConstraint("cash_floor", floorCoeffs, milp.GE, s.MinCash-s.Cash)

	return nil
}

// lotIndex indexes a strategy's tax lots by tax_lot_id for O(1) lookup by
// the validators and objective terms that iterate sell variables.
func lotIndex(s *oracle.Strategy) map[string]oracle.TaxLot {
	out := make(map[string]oracle.TaxLot, len(s.TaxLots))
	for _, lot := range s.TaxLots {
		out[lot.TaxLotID] = lot
	}
	return out
}
