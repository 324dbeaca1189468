// Package oracle implements the deterministic portfolio rebalancing core:
// tax lots and targets go in, a mixed-integer linear program comes out, and
// buy/sell trades come back.
package oracle

import "time"

// CashIdentifier is the synthetic instrument representing cash. It always
// prices at 1.0 and is implicitly present in every strategy.
const CashIdentifier = "CASH"

// TaxLot is a single purchased position lot.
type TaxLot struct {
	TaxLotID   string
	Identifier string
	Quantity   float64
	CostBasis  float64
	Date       time.Time
}

// CostPerShare returns the lot's cost basis divided by its quantity.
// Callers must not invoke this on a zero-quantity lot.
func (l TaxLot) CostPerShare() float64 {
	return l.CostBasis / l.Quantity
}

// AssetClassTarget is a target allocation bucket. Identifiers holds at most
// two entries: a primary identifier and an optional tax-loss-harvesting pair.
type AssetClassTarget struct {
	AssetClass   string
	TargetWeight float64
	Identifiers  []string
}

// Price is the current market price for an identifier.
type Price struct {
	Identifier string
	Price      float64
}

// Spread is the bid/ask spread fraction for an identifier, used to derive
// per-share transaction cost.
type Spread struct {
	Identifier string
	SpreadFrac float64
}

// PerShareCost returns price * spread fraction, the per-share transaction
// cost used consistently across the objective function and trade
// extraction (see SPEC_FULL.md §D.4).
func (s Spread) PerShareCost(price float64) float64 {
	return price * s.SpreadFrac
}

// StockRestriction marks an identifier as unable to be bought and/or sold.
type StockRestriction struct {
	Identifier string
	CanBuy     bool
	CanSell    bool
}

// WashSaleRestrictions is the opaque collaborator describing wash-sale
// state, injected by the caller per spec.md §6. It is queried, never built,
// by this engine.
type WashSaleRestrictions interface {
	IsRestrictedFromBuying(identifier string) bool
	// RestrictedLots returns the tax_lot_ids of this identifier's lots that
	// may only be sold as part of a full liquidation of the position.
	RestrictedLots(identifier string) []string
}

// NoWashSaleRestrictions is a WashSaleRestrictions implementation that
// imposes no restrictions, used when wash-sale tracking is not supplied.
type NoWashSaleRestrictions struct{}

func (NoWashSaleRestrictions) IsRestrictedFromBuying(string) bool   { return false }
func (NoWashSaleRestrictions) RestrictedLots(string) []string       { return nil }

// GainType classifies a lot's holding period for tax purposes.
type GainType string

const (
	GainTypeShortTerm        GainType = "short_term"
	GainTypeLongTerm         GainType = "long_term"
	GainTypeQualifiedDividend GainType = "qualified_dividend"
)

// TaxRate is the federal/state/total tax rate applicable to one gain type.
type TaxRate struct {
	GainType GainType
	Federal  float64
	State    float64
	Total    float64
}

// DefaultTaxRates returns the documented high-bracket default table used
// when no tax rate table is supplied (SPEC_FULL.md §C.4).
func DefaultTaxRates() []TaxRate {
	return []TaxRate{
		{GainType: GainTypeShortTerm, Federal: 0.35, State: 0.06, Total: 0.41},
		{GainType: GainTypeLongTerm, Federal: 0.20, State: 0.06, Total: 0.26},
		{GainType: GainTypeQualifiedDividend, Federal: 0.15, State: 0.06, Total: 0.21},
	}
}

// FactorModel holds, per identifier, a vector of factor exposures keyed by
// factor name. Values are normalized to [-1, 1] by initializers.InitFactorModel.
type FactorModel struct {
	Factors    []string
	Exposures  map[string]map[string]float64 // identifier -> factor -> exposure
}

// Exposure returns the exposure of identifier to factor, or 0 if absent.
func (f FactorModel) Exposure(identifier, factor string) float64 {
	if f.Exposures == nil {
		return 0
	}
	row, ok := f.Exposures[identifier]
	if !ok {
		return 0
	}
	return row[factor]
}

// ClosedLot is an already-realized sale, carried through for downstream
// reporting (SPEC_FULL.md §C.1). Not consumed by the MILP.
type ClosedLot struct {
	Identifier   string
	Quantity     float64
	CostBasis    float64
	DateAcquired time.Time
	DateSold     time.Time
	Proceeds     float64
	RealizedGain float64
}

// GainLossRow is the per-lot derived report row produced by
// reports.GenerateGainLossReport.
type GainLossRow struct {
	TaxLotID              string
	Identifier            string
	Quantity              float64
	CostBasis             float64
	CostPerShare          float64
	CurrentPrice          float64
	MarketValue           float64
	UnrealizedGain        float64
	UnrealizedGainPct     float64
	HoldingPeriodDays     int
	IsLongTerm            bool
	GainType              GainType
	FederalTaxRate        float64
	StateTaxRate          float64
	TotalTaxRate          float64
	TaxLiability          float64
	PerShareTaxLiability  float64
	TaxGainLossPercentage float64
}

// PositionStatus classifies an asset class's drift relative to its target.
type PositionStatus string

const (
	PositionOnTarget         PositionStatus = "ON_TARGET"
	PositionOverweight       PositionStatus = "OVERWEIGHT"
	PositionUnderweight      PositionStatus = "UNDERWEIGHT"
	PositionNonTargetInstrument PositionStatus = "NON_TARGET_INSTRUMENT"
)

// DriftThreshold is the |drift| value beyond which a position is classified
// as over/underweight rather than on-target.
const DriftThreshold = 0.001

// DriftRow is the per-asset-class derived report row produced by
// reports.GenerateDriftReport.
type DriftRow struct {
	AssetClass    string
	TargetWeight  float64
	ActualWeight  float64
	MarketValue   float64
	Drift         float64
	DriftPct      float64
	DriftDollars  float64
	Status        PositionStatus
	Identifiers   []string
}

// ActualsRow is the per-identifier derived report row produced by
// reports.GenerateActualsReport.
type ActualsRow struct {
	Identifier   string
	MarketValue  float64
	ActualWeight float64
	Quantity     float64
}

// TradeAction distinguishes a buy from a sell.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// TradeGainLoss carries the tax-relevant metadata attached to a sell trade.
type TradeGainLoss struct {
	CostBasis    float64
	RealizedGain float64
	GainType     GainType
	TaxCost      float64
}

// TradeTransaction carries the transaction-cost metadata attached to a trade.
type TradeTransaction struct {
	Spread float64
	Cost   float64
}

// Trade is a single buy or sell instruction produced by trade extraction.
// A sell always references the tax lot it draws from; a buy never does.
type Trade struct {
	Identifier  string
	TaxLotID    string // empty for buys
	Action      TradeAction
	Quantity    float64
	Price       float64
	IsTLH       bool // true if this trade is the harvest or replacement leg of a TLH pair
	GainLoss    *TradeGainLoss // nil for buys
	Transaction TradeTransaction
}

// Notional returns quantity * price.
func (t Trade) Notional() float64 {
	return t.Quantity * t.Price
}

// NettedTrade is a post-netting trade row, with realized gain/loss split by
// short/long x gain/loss quadrant (spec.md §4.6, §6).
type NettedTrade struct {
	Identifier       string
	Action           TradeAction
	Quantity         float64
	Price            float64
	TaxLotID         string
	ShortTermGain    float64
	ShortTermLoss    float64
	LongTermGain     float64
	LongTermLoss     float64
}
