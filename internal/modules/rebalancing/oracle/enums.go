package oracle

// OptimizationType selects the objective-weight remapping and
// extra-constraint behavior applied to a strategy's solve. Grounded on
// original_source/oracle/src/service/helpers/enums.py's
// OracleOptimizationType and its dispatch methods.
type OptimizationType string

const (
	OptimizationHold        OptimizationType = "HOLD"
	OptimizationBuyOnly     OptimizationType = "BUY_ONLY"
	OptimizationTaxUnaware  OptimizationType = "TAX_UNAWARE"
	OptimizationTaxAware    OptimizationType = "TAX_AWARE"
	OptimizationPairsTLH    OptimizationType = "PAIRS_TLH"
	OptimizationDirectIndex OptimizationType = "DIRECT_INDEX"
)

// ParseOptimizationType parses a string into an OptimizationType,
// case-insensitively, mirroring enums.py's from_string.
func ParseOptimizationType(s string) (OptimizationType, error) {
	switch OptimizationType(upper(s)) {
	case OptimizationHold:
		return OptimizationHold, nil
	case OptimizationBuyOnly:
		return OptimizationBuyOnly, nil
	case OptimizationTaxUnaware:
		return OptimizationTaxUnaware, nil
	case OptimizationTaxAware:
		return OptimizationTaxAware, nil
	case OptimizationPairsTLH:
		return OptimizationPairsTLH, nil
	case OptimizationDirectIndex:
		return OptimizationDirectIndex, nil
	default:
		return "", &ValidationError{
			Entity: "optimization_type",
			Issues: []string{"unrecognized optimization type: " + s},
		}
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// AllowsSells reports whether this optimization type permits sell trades.
// Only HOLD and BUY_ONLY forbid them.
func (t OptimizationType) AllowsSells() bool {
	return t != OptimizationHold && t != OptimizationBuyOnly
}

// ShouldTLH reports whether tax-loss harvesting behavior (nonzero tax
// weight) applies.
func (t OptimizationType) ShouldTLH() bool {
	switch t {
	case OptimizationTaxAware, OptimizationPairsTLH, OptimizationDirectIndex:
		return true
	default:
		return false
	}
}

// ObjectiveWeights is the per-term weight set used by the objective
// manager, before the caller's configured weights are applied.
type ObjectiveWeights struct {
	Drift       float64
	Tax         float64
	Transaction float64
	Factor      float64
	Cash        float64
}

// AdjustWeights remaps a caller-supplied weight set according to spec.md
// §4.5's table: HOLD zeroes everything; non-tax-aware types zero the tax
// weight; only DIRECT_INDEX keeps the factor weight.
func (t OptimizationType) AdjustWeights(w ObjectiveWeights) ObjectiveWeights {
	if t == OptimizationHold {
		return ObjectiveWeights{}
	}
	out := w
	if !t.ShouldTLH() {
		out.Tax = 0
	}
	if t != OptimizationDirectIndex {
		out.Factor = 0
	}
	return out
}

// SetupOptimization reports the extra constraints implied purely by the
// optimization type, independent of the validator set: HOLD pins every
// variable to zero; BUY_ONLY and types that forbid sells pin all sells to
// zero.
type OptimizationSetup struct {
	PinAllZero bool
	ForbidSells bool
}

func (t OptimizationType) SetupOptimization() OptimizationSetup {
	switch t {
	case OptimizationHold:
		return OptimizationSetup{PinAllZero: true}
	case OptimizationBuyOnly:
		return OptimizationSetup{ForbidSells: true}
	default:
		return OptimizationSetup{}
	}
}

// CanHandleWithdrawal reports whether this optimization type supports a
// nonzero withdrawal_amount. HOLD cannot generate any trades at all, so it
// cannot fund a withdrawal.
func (t OptimizationType) CanHandleWithdrawal() bool {
	return t != OptimizationHold
}
