package initializers

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// InitTaxRates validates the tax rate table and falls back to
// oracle.DefaultTaxRates() when raw is empty. Grounded on
// initializers/tax_rates.py: exactly the three gain types must be present
// (no extras, none missing), each rate in [0,1]. Like the original, this
// does not cross-validate total == federal+state.
func InitTaxRates(raw []oracle.TaxRate) (map[oracle.GainType]oracle.TaxRate, error) {
	if len(raw) == 0 {
		raw = oracle.DefaultTaxRates()
	}

	var issues []string
	out := make(map[oracle.GainType]oracle.TaxRate, len(raw))
	for _, r := range raw {
		if r.Federal < 0 || r.Federal > 1 {
			issues = append(issues, fmt.Sprintf("gain_type %s: federal rate %g out of [0,1]", r.GainType, r.Federal))
		}
		if r.State < 0 || r.State > 1 {
			issues = append(issues, fmt.Sprintf("gain_type %s: state rate %g out of [0,1]", r.GainType, r.State))
		}
		if r.Total < 0 || r.Total > 1 {
			issues = append(issues, fmt.Sprintf("gain_type %s: total rate %g out of [0,1]", r.GainType, r.Total))
		}
		out[r.GainType] = r
	}

	required := []oracle.GainType{oracle.GainTypeShortTerm, oracle.GainTypeLongTerm, oracle.GainTypeQualifiedDividend}
	seen := make(map[oracle.GainType]bool, len(out))
	for gt := range out {
		seen[gt] = true
	}
	for _, gt := range required {
		if !seen[gt] {
			issues = append(issues, fmt.Sprintf("missing tax rate for gain_type: %s", gt))
		}
		delete(seen, gt)
	}
	for extra := range seen {
		issues = append(issues, fmt.Sprintf("unexpected gain_type in tax rate table: %s", extra))
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "tax_rates", Issues: issues}
	}
	return out, nil
}
