package initializers

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// InitPrices validates and canonicalizes the price table. Grounded on
// initializers/prices.py: identifiers are upper-cased and CASH-collapsed
// (with duplicates removed, last write wins), negative prices rejected,
// and a CASH@1.0 row is always present.
func InitPrices(raw []oracle.Price, allIdentifiers []string) (map[string]oracle.Price, error) {
	var issues []string
	out := make(map[string]oracle.Price, len(raw)+1)

	for _, p := range raw {
		p.Identifier = canonicalIdentifier(p.Identifier)
		if p.Price < 0 {
			issues = append(issues, fmt.Sprintf("identifier %s: negative price %g", p.Identifier, p.Price))
			continue
		}
		if p.Identifier == oracle.CashIdentifier {
			p.Price = 1.0
		}
		out[p.Identifier] = p
	}

	out[oracle.CashIdentifier] = oracle.Price{Identifier: oracle.CashIdentifier, Price: 1.0}

	for _, id := range allIdentifiers {
		id = canonicalIdentifier(id)
		if _, ok := out[id]; !ok {
			issues = append(issues, fmt.Sprintf("missing price for identifier: %s", id))
		}
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "prices", Issues: issues}
	}
	return out, nil
}
