package constraints

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// MinNotionalValidator implements spec.md §4.4f: every buy and every
// identifier-level aggregated sell either happens in full (at or above
// min_notional dollars) or doesn't happen at all, enforced with a binary
// `happens` indicator and Big-M constraints. Grounded on
// constraints/min_notional_constraint.py.
type MinNotionalValidator struct {
	Strategy *oracle.Strategy
}

func (m *MinNotionalValidator) Name() string { return "min_notional" }

// ValidateBuy and ValidateSell are per-trade predicates only in the sense
// that they check a single proposed quantity against min_notional; they do
// not require visibility into the rest of the trade set, so (unlike cash
// or drift range) this validator can answer them directly.
func (m *MinNotionalValidator) ValidateBuy(identifier string, qty float64) (bool, string, error) {
	if m.Strategy.MinNotional <= 0 || qty == 0 {
		return true, "", nil
	}
	price := m.Strategy.Prices[identifier].Price
	if qty*price < m.Strategy.MinNotional {
		return false, fmt.Sprintf("buy of %s below minimum notional %.2f", identifier, m.Strategy.MinNotional), nil
	}
	return true, "", nil
}

func (m *MinNotionalValidator) ValidateSell(taxLotID string, qty float64) (bool, string, error) {
	if m.Strategy.MinNotional <= 0 || qty == 0 {
		return true, "", nil
	}
	for _, lot := range m.Strategy.TaxLots {
		if lot.TaxLotID == taxLotID {
			price := m.Strategy.Prices[lot.Identifier].Price
			if qty*price < m.Strategy.MinNotional {
				return false, fmt.Sprintf("sell of lot %s below minimum notional %.2f", taxLotID, m.Strategy.MinNotional), nil
			}
			break
		}
	}
	return true, "", nil
}

func (m *MinNotionalValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	s := m.Strategy
	if s.MinNotional <= 0 {
		return nil
	}

	for identifier, idx := range vars.BuyIndex {
		if identifier == oracle.CashIdentifier {
			continue
		}
		price := s.Prices[identifier].Price
		if price <= 0 {
			continue
		}
		m.addHappensPair(p, fmt.Sprintf("buy[%s]", identifier), idx, price)
	}

	for identifier, lotIdxs := range vars.SellLotsByIdentifier {
		price := s.Prices[identifier].Price
		if price <= 0 {
			continue
		}
		happens := p.AddVar(fmt.Sprintf("happens[sell][%s]", identifier), milp.Binary, 0, 1)

		upperCoeffs := make(map[int]float64, len(lotIdxs)+1)
		for _, idx := range lotIdxs {
			upperCoeffs[idx] = 1
		}
		upperCoeffs[happens] = -BigM
		p.AddConstraint(fmt.Sprintf("min_notional_upper[sell][%s]", identifier), upperCoeffs, milp.LE, 0)

		lowerCoeffs := make(map[int]float64, len(lotIdxs)+1)
		for _, idx := range lotIdxs {
			lowerCoeffs[idx] = 1
		}
		lowerCoeffs[happens] = -s.MinNotional / price
		p.AddConstraint(fmt.Sprintf("min_notional_lower[sell][%s]", identifier), lowerCoeffs, milp.GE, 0)
	}

	return nil
}

// addHappensPair registers a binary happens indicator for a single
// variable (used for buys, which are one variable per identifier) and adds
// its two Big-M constraints: trade <= M*happens, trade >= (min_notional/price)*happens.
func (m *MinNotionalValidator) addHappensPair(p *milp.Problem, label string, varIdx int, price float64) {
	s := m.Strategy
	happens := p.AddVar(fmt.Sprintf("happens[%s]", label), milp.Binary, 0, 1)
	p.AddConstraint(fmt.Sprintf("min_notional_upper[%s]", label),
		map[int]float64{varIdx: 1, happens: -BigM}, milp.LE, 0)
	p.AddConstraint(fmt.Sprintf("min_notional_lower[%s]", label),
		map[int]float64{varIdx: 1, happens: -s.MinNotional / price}, milp.GE, 0)
}
