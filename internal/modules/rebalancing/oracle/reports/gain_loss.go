package reports

import (
	"time"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// LongTermHoldingDays is the number of holding-period days beyond which a
// lot's gain qualifies as long-term (spec.md §3: "> 365d").
const LongTermHoldingDays = 365

// GenerateGainLossReport computes, for every tax lot, its unrealized
// gain/loss, holding period, gain-type classification, and per-share tax
// liability at currentDate. Grounded on reports/gain_loss_report.py.
func GenerateGainLossReport(
	taxLots []oracle.TaxLot,
	prices map[string]oracle.Price,
	currentDate time.Time,
	taxRates map[oracle.GainType]oracle.TaxRate,
) []oracle.GainLossRow {
	out := make([]oracle.GainLossRow, 0, len(taxLots))

	for _, lot := range taxLots {
		price := prices[lot.Identifier].Price
		costPerShare := 0.0
		if lot.Quantity != 0 {
			costPerShare = lot.CostBasis / lot.Quantity
		}
		marketValue := lot.Quantity * price
		unrealizedGain := marketValue - lot.CostBasis
		unrealizedGainPct := 0.0
		if lot.CostBasis != 0 {
			unrealizedGainPct = unrealizedGain / lot.CostBasis
		}

		holdingDays := int(currentDate.Sub(lot.Date).Hours() / 24)
		isLongTerm := holdingDays > LongTermHoldingDays

		gainType := oracle.GainTypeShortTerm
		if isLongTerm {
			gainType = oracle.GainTypeLongTerm
		}

		rate := taxRates[gainType]

		taxLiability := unrealizedGain * rate.Total
		perShareTaxLiability := 0.0
		if lot.Quantity != 0 {
			perShareTaxLiability = taxLiability / lot.Quantity
		}

		taxGainLossPct := 0.0
		if rate.Total != 0 {
			taxGainLossPct = unrealizedGainPct * rate.Total
		}

		out = append(out, oracle.GainLossRow{
			TaxLotID:              lot.TaxLotID,
			Identifier:            lot.Identifier,
			Quantity:              lot.Quantity,
			CostBasis:             lot.CostBasis,
			CostPerShare:          costPerShare,
			CurrentPrice:          price,
			MarketValue:           marketValue,
			UnrealizedGain:        unrealizedGain,
			UnrealizedGainPct:     unrealizedGainPct,
			HoldingPeriodDays:     holdingDays,
			IsLongTerm:            isLongTerm,
			GainType:              gainType,
			FederalTaxRate:        rate.Federal,
			StateTaxRate:          rate.State,
			TotalTaxRate:          rate.Total,
			TaxLiability:          taxLiability,
			PerShareTaxLiability:  perShareTaxLiability,
			TaxGainLossPercentage: taxGainLossPct,
		})
	}

	return out
}
