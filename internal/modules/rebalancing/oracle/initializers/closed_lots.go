package initializers

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// RealizedGainTolerance bounds the allowed discrepancy between a closed
// lot's recorded realized_gain and proceeds-cost_basis, matching
// initializers/closed_lots.py's 1e-6 check.
const RealizedGainTolerance = 1e-6

// InitClosedLots validates an optional closed-lot table (SPEC_FULL.md §C.1,
// grounded on initializers/closed_lots.py). Returns nil, nil when raw is
// empty — closed lots are an optional supplementary input.
func InitClosedLots(raw []oracle.ClosedLot) ([]oracle.ClosedLot, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var issues []string
	out := make([]oracle.ClosedLot, len(raw))
	for i, cl := range raw {
		cl.Identifier = canonicalIdentifier(cl.Identifier)

		if cl.Quantity <= 0 {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): quantity must be > 0", i, cl.Identifier))
		}
		if cl.Quantity < 0 {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): negative quantity", i, cl.Identifier))
		}
		if cl.CostBasis < 0 {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): negative cost basis", i, cl.Identifier))
		}
		if cl.Proceeds < 0 {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): negative proceeds", i, cl.Identifier))
		}
		if cl.DateAcquired.After(cl.DateSold) {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): date_acquired after date_sold", i, cl.Identifier))
		}
		calculated := cl.Proceeds - cl.CostBasis
		if math.Abs(calculated-cl.RealizedGain) >= RealizedGainTolerance {
			issues = append(issues, fmt.Sprintf("closed lot %d (%s): realized_gain %g does not match proceeds-cost_basis %g", i, cl.Identifier, cl.RealizedGain, calculated))
		}

		out[i] = cl
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "closed_lots", Issues: issues}
	}
	return out, nil
}
