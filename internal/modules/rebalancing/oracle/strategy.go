package oracle

import "time"

// Strategy is the immutable bundle of validated inputs plus derived
// reports for one rebalancing solve. Applying trades never mutates a
// Strategy; it produces a new one (spec.md §3).
type Strategy struct {
	StrategyID string

	CurrentDate time.Time

	TaxLots           []TaxLot
	Targets           []AssetClassTarget
	Prices            map[string]Price
	Spreads           map[string]Spread
	StockRestrictions map[string]StockRestriction
	WashSale          WashSaleRestrictions
	TaxRates          map[GainType]TaxRate
	FactorModel       *FactorModel
	ClosedLots        []ClosedLot

	Cash float64

	OptimizationType OptimizationType
	WithdrawalAmount float64
	MinCash          float64
	MinNotional      float64
	TradeRounding    int           // decimal places a rounded quantity must be a multiple of 10^-n
	HoldingTimeDelta time.Duration // minimum holding period before a lot may be sold; <= 0 disables the constraint
	EnforceWashSalePrevention bool
	RangeMinWeightMultiplier  float64
	RangeMaxWeightMultiplier  float64
	Weights                   ObjectiveWeights

	// Derived reports, computed at construction by buildStrategy (engine.go)
	// and recomputed by tradeio.ApplyToStrategy.
	ActualsReport  []ActualsRow
	DriftReport    []DriftRow
	GainLossReport []GainLossRow

	// FactorModelTarget and FactorModelActual are the portfolio-weighted
	// average factor exposures computed by
	// initializers.InitFactorModel, populated only when FactorModel is set.
	FactorModelTarget map[string]float64
	FactorModelActual map[string]float64
}

// TotalValue returns the strategy's total market value: sum of all tax lot
// market values (at current prices) plus cash.
func (s *Strategy) TotalValue() float64 {
	total := s.Cash
	for _, row := range s.ActualsReport {
		if row.Identifier == CashIdentifier {
			continue
		}
		total += row.MarketValue
	}
	return total
}

// LotsByIdentifier groups this strategy's tax lots by identifier.
func (s *Strategy) LotsByIdentifier() map[string][]TaxLot {
	out := make(map[string][]TaxLot)
	for _, lot := range s.TaxLots {
		out[lot.Identifier] = append(out[lot.Identifier], lot)
	}
	return out
}

// GainLossByLot indexes the strategy's gain/loss report by tax_lot_id.
func (s *Strategy) GainLossByLot() map[string]GainLossRow {
	out := make(map[string]GainLossRow, len(s.GainLossReport))
	for _, row := range s.GainLossReport {
		out[row.TaxLotID] = row
	}
	return out
}

// CandidateIdentifiers returns every identifier eligible for a buy
// variable: every identifier referenced across all asset class targets,
// excluding CASH (cash never gets a decision variable of its own beyond the
// cash constraint).
func (s *Strategy) CandidateIdentifiers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.Targets {
		for _, id := range t.Identifiers {
			if id == CashIdentifier || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
