// Package initializers validates and canonicalizes the raw input tables
// into the strongly-typed oracle data model, grounded on
// original_source/oracle/src/service/initializers/*.py.
package initializers

import (
	"fmt"
	"strings"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// InitTaxLots validates and canonicalizes a raw tax lot table. Grounded on
// initializers/tax_lots.py: identifiers are upper-cased and CASH-collapsed,
// missing tax_lot_ids are synthesized, uniqueness and non-negativity are
// enforced.
func InitTaxLots(raw []oracle.TaxLot) ([]oracle.TaxLot, error) {
	var issues []string
	seen := make(map[string]bool, len(raw))
	out := make([]oracle.TaxLot, len(raw))

	for i, lot := range raw {
		lot.Identifier = canonicalIdentifier(lot.Identifier)

		if lot.Quantity < 0 {
			issues = append(issues, fmt.Sprintf("lot %d (%s): negative quantity %g", i, lot.Identifier, lot.Quantity))
		}
		if lot.CostBasis < 0 {
			issues = append(issues, fmt.Sprintf("lot %d (%s): negative cost basis %g", i, lot.Identifier, lot.CostBasis))
		}

		if lot.TaxLotID == "" {
			lot.TaxLotID = fmt.Sprintf("lot_%d_%s", i, lot.Identifier)
		}
		if seen[lot.TaxLotID] {
			issues = append(issues, fmt.Sprintf("duplicate tax_lot_id: %s", lot.TaxLotID))
		}
		seen[lot.TaxLotID] = true

		out[i] = lot
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "tax_lots", Issues: issues}
	}
	return out, nil
}

// canonicalIdentifier upper-cases an identifier and collapses any
// recognized cash alias to oracle.CashIdentifier.
func canonicalIdentifier(id string) string {
	up := strings.ToUpper(strings.TrimSpace(id))
	if isCashAlias(up) {
		return oracle.CashIdentifier
	}
	return up
}

var cashAliases = map[string]bool{
	"CASH":    true,
	"CASH_AC": true,
	"USD":     true,
	"$$$":     true,
}

func isCashAlias(upperID string) bool {
	return cashAliases[upperID]
}
