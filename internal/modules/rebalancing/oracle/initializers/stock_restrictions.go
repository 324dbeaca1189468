package initializers

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// InitStockRestrictions validates the stock restriction table. Grounded on
// initializers/stock_restrictions.py. Any combination of can_buy and
// can_sell in a single row is accepted, including both false (a full
// freeze). The table is rejected only when the same identifier appears in
// two rows whose flags differ. Absence of a row means unrestricted.
func InitStockRestrictions(raw []oracle.StockRestriction) (map[string]oracle.StockRestriction, error) {
	var issues []string
	out := make(map[string]oracle.StockRestriction, len(raw))

	for _, r := range raw {
		r.Identifier = canonicalIdentifier(r.Identifier)
		if existing, ok := out[r.Identifier]; ok && existing != r {
			issues = append(issues, fmt.Sprintf("identifier %s: conflicting restriction rows", r.Identifier))
			continue
		}
		out[r.Identifier] = r
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "stock_restrictions", Issues: issues}
	}
	return out, nil
}

// CanBuy reports whether identifier may be bought, defaulting to true when
// no restriction row is present.
func CanBuy(restrictions map[string]oracle.StockRestriction, identifier string) bool {
	r, ok := restrictions[identifier]
	if !ok {
		return true
	}
	return r.CanBuy
}

// CanSell reports whether identifier may be sold, defaulting to true when
// no restriction row is present.
func CanSell(restrictions map[string]oracle.StockRestriction, identifier string) bool {
	r, ok := restrictions[identifier]
	if !ok {
		return true
	}
	return r.CanSell
}
