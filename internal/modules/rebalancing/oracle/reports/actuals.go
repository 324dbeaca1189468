// Package reports derives the read-only actuals/drift/gain_loss/comparison
// tables from a Strategy's validated inputs, grounded on
// original_source/oracle/src/service/reports/*.py.
package reports

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// GenerateActualsReport computes per-identifier market value and weight
// from tax lots, prices, and cash. Grounded on reports/actuals_report.py:
// lots are joined to prices and grouped by identifier; cash is appended as
// a synthetic position with quantity 1.
func GenerateActualsReport(taxLots []oracle.TaxLot, prices map[string]oracle.Price, cash float64) []oracle.ActualsRow {
	if len(taxLots) == 0 && cash == 0 {
		return nil
	}

	type agg struct {
		marketValue float64
		quantity    float64
	}
	byID := make(map[string]*agg)
	order := make([]string, 0)

	for _, lot := range taxLots {
		p := prices[lot.Identifier].Price
		a, ok := byID[lot.Identifier]
		if !ok {
			a = &agg{}
			byID[lot.Identifier] = a
			order = append(order, lot.Identifier)
		}
		a.marketValue += lot.Quantity * p
		a.quantity += lot.Quantity
	}

	byID[oracle.CashIdentifier] = &agg{marketValue: cash, quantity: 1.0}
	order = append(order, oracle.CashIdentifier)

	total := 0.0
	for _, a := range byID {
		total += a.marketValue
	}

	out := make([]oracle.ActualsRow, 0, len(order))
	for _, id := range order {
		a := byID[id]
		weight := 0.0
		if total > 0 {
			weight = a.marketValue / total
		}
		out = append(out, oracle.ActualsRow{
			Identifier:   id,
			MarketValue:  a.marketValue,
			ActualWeight: weight,
			Quantity:     a.quantity,
		})
	}
	return out
}
