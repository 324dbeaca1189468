package initializers

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// NumDecimals is the rounding precision applied to target weight sums,
// matching initializers/targets.py's NUM_DECIMALS = 6.
const NumDecimals = 6

// WeightSumTolerance is the tolerance within which target weights must sum
// to 1.0 (spec.md §3, initializers/targets.py).
const WeightSumTolerance = 1e-2

// Deminimus is the minimum cash target weight inserted when no cash row is
// present, per initializers/targets.py's _handle_cash_targets.
const Deminimus = 0.01

// InitTargets validates and canonicalizes the asset-class target table.
// Grounded on initializers/targets.py: identifiers are upper-cased and
// CASH-collapsed, each asset class gets at most two identifiers, a cash row
// is inserted or adjusted to absorb the withdrawal fraction, and weights
// must sum to 1 within WeightSumTolerance.
func InitTargets(raw []oracle.AssetClassTarget, withdrawalFraction float64) ([]oracle.AssetClassTarget, error) {
	var issues []string
	out := make([]oracle.AssetClassTarget, 0, len(raw)+1)

	seenAssetClass := make(map[string]bool)
	cashIdx := -1

	for _, t := range raw {
		if seenAssetClass[t.AssetClass] {
			issues = append(issues, fmt.Sprintf("duplicate asset_class: %s", t.AssetClass))
		}
		seenAssetClass[t.AssetClass] = true

		if t.TargetWeight < 0 || t.TargetWeight > 1 {
			issues = append(issues, fmt.Sprintf("asset_class %s: target_weight %g out of [0,1]", t.AssetClass, t.TargetWeight))
		}
		if len(t.Identifiers) == 0 {
			issues = append(issues, fmt.Sprintf("asset_class %s: no identifiers", t.AssetClass))
		}
		if len(t.Identifiers) > 2 {
			issues = append(issues, fmt.Sprintf("asset_class %s: more than 2 identifiers", t.AssetClass))
		}

		ids := make([]string, len(t.Identifiers))
		isCashClass := false
		for i, id := range t.Identifiers {
			ids[i] = canonicalIdentifier(id)
			if ids[i] == oracle.CashIdentifier {
				isCashClass = true
			}
		}
		t.Identifiers = ids

		if isCashClass {
			if cashIdx >= 0 {
				issues = append(issues, "more than one cash target row present")
			}
			cashIdx = len(out)
		}

		out = append(out, t)
	}

	if len(issues) > 0 {
		return nil, &oracle.ValidationError{Entity: "targets", Issues: issues}
	}

	sum := 0.0
	for _, t := range out {
		sum += t.TargetWeight
	}
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return nil, &oracle.ValidationError{
			Entity: "targets",
			Issues: []string{fmt.Sprintf("target weights sum to %g, not 1.0 (tolerance %g)", sum, WeightSumTolerance)},
		}
	}

	out = handleCashTargets(out, cashIdx, withdrawalFraction)

	return out, nil
}

// handleCashTargets ensures exactly one cash row exists, with weight at
// least Deminimus and adjusted to absorb withdrawalFraction of the
// remaining allocation, rescaling all non-cash rows proportionally so the
// total still sums to 1. Grounded on
// initializers/targets.py's _handle_cash_targets.
func handleCashTargets(targets []oracle.AssetClassTarget, cashIdx int, withdrawalFraction float64) []oracle.AssetClassTarget {
	existingCashWeight := 0.0
	if cashIdx >= 0 {
		existingCashWeight = targets[cashIdx].TargetWeight
	}

	baseCash := math.Max(Deminimus, existingCashWeight)
	newCashWeight := baseCash + withdrawalFraction*(1-baseCash)

	nonCashTotal := 0.0
	for i, t := range targets {
		if i == cashIdx {
			continue
		}
		nonCashTotal += t.TargetWeight
	}

	remaining := 1 - newCashWeight
	scale := 1.0
	if nonCashTotal > 0 {
		scale = remaining / nonCashTotal
	}

	out := make([]oracle.AssetClassTarget, 0, len(targets)+1)
	for i, t := range targets {
		if i == cashIdx {
			continue
		}
		t.TargetWeight *= scale
		out = append(out, t)
	}

	if cashIdx >= 0 {
		cash := targets[cashIdx]
		cash.TargetWeight = newCashWeight
		out = append(out, cash)
	} else {
		out = append(out, oracle.AssetClassTarget{
			AssetClass:   oracle.CashIdentifier,
			TargetWeight: newCashWeight,
			Identifiers:  []string{oracle.CashIdentifier},
		})
	}

	return out
}
