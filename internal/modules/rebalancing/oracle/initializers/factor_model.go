package initializers

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// FactorPreserveRange and FactorScaleFactor parameterize the
// normalize-and-compress transform below, matching
// initializers/factor_model.py's defaults.
const (
	FactorPreserveRange = 0.75
	FactorScaleFactor   = 0.1
)

// NormalizeFactorModel rescales every factor column by a single global
// scale (so the single largest-magnitude exposure across all factors and
// identifiers maps to FactorPreserveRange), then compresses anything that
// would still fall outside [-FactorPreserveRange, FactorPreserveRange] with
// a continuity-preserving tanh, and hard-clips to [-1, 1]. Grounded on
// initializers/factor_model.py's normalize_factor_model; no-op if every
// value is already within [-1, 1].
func NormalizeFactorModel(fm oracle.FactorModel) oracle.FactorModel {
	globalMaxAbs := 0.0
	for _, row := range fm.Exposures {
		for _, f := range fm.Factors {
			v := math.Abs(row[f])
			if v > globalMaxAbs {
				globalMaxAbs = v
			}
		}
	}

	if globalMaxAbs <= 1 {
		return fm
	}

	scale := FactorPreserveRange / globalMaxAbs
	offset := FactorPreserveRange - math.Tanh(FactorScaleFactor*FactorPreserveRange)

	out := oracle.FactorModel{
		Factors:   fm.Factors,
		Exposures: make(map[string]map[string]float64, len(fm.Exposures)),
	}
	for id, row := range fm.Exposures {
		newRow := make(map[string]float64, len(row))
		for _, f := range fm.Factors {
			x := row[f] * scale
			var nv float64
			if math.Abs(x) <= FactorPreserveRange {
				nv = x
			} else {
				nv = math.Copysign(math.Tanh(FactorScaleFactor*math.Abs(x))+offset, x)
			}
			if nv > 1 {
				nv = 1
			}
			if nv < -1 {
				nv = -1
			}
			newRow[f] = nv
		}
		out.Exposures[id] = newRow
	}
	return out
}

// InitFactorModel validates, normalizes, and backfills a factor model.
// Grounded on initializers/factor_model.py's initialize_factor_model:
//
//   - every identifier referenced by a target asset class must have a
//     factor row, or the call fails (hard error, asymmetric with the below)
//   - a missing identifier held in the actual portfolio (actualWeights) is
//     instead auto-filled with the target-weighted average factor vector
//   - CASH is auto-added with all-zero factors if absent
//   - target and actual portfolio-weighted average exposures are computed
//     and returned for use by the factor objective term and comparison
//     report
func InitFactorModel(
	raw oracle.FactorModel,
	targets []oracle.AssetClassTarget,
	actualWeights map[string]float64,
) (oracle.FactorModel, map[string]float64, map[string]float64, error) {
	if len(raw.Factors) == 0 {
		return oracle.FactorModel{}, nil, nil, &oracle.ValidationError{
			Entity: "factor_model",
			Issues: []string{"factor model must have at least one factor column"},
		}
	}

	fm := oracle.FactorModel{
		Factors:   raw.Factors,
		Exposures: make(map[string]map[string]float64, len(raw.Exposures)),
	}
	for id, row := range raw.Exposures {
		fm.Exposures[canonicalIdentifier(id)] = row
	}

	fm = NormalizeFactorModel(fm)

	if _, ok := fm.Exposures[oracle.CashIdentifier]; !ok {
		zero := make(map[string]float64, len(fm.Factors))
		for _, f := range fm.Factors {
			zero[f] = 0
		}
		fm.Exposures[oracle.CashIdentifier] = zero
	}

	identifierTargetWeight := make(map[string]float64)
	for _, t := range targets {
		if len(t.Identifiers) == 0 {
			continue
		}
		per := t.TargetWeight / float64(len(t.Identifiers))
		for _, id := range t.Identifiers {
			identifierTargetWeight[id] += per
		}
	}

	var missingTargets []string
	for id := range identifierTargetWeight {
		if _, ok := fm.Exposures[id]; !ok {
			missingTargets = append(missingTargets, id)
		}
	}
	if len(missingTargets) > 0 {
		issues := make([]string, len(missingTargets))
		for i, id := range missingTargets {
			issues[i] = fmt.Sprintf("missing factor model entry for target identifier: %s", id)
		}
		return oracle.FactorModel{}, nil, nil, &oracle.ValidationError{Entity: "factor_model", Issues: issues}
	}

	targetAvg := make(map[string]float64, len(fm.Factors))
	for _, f := range fm.Factors {
		sum := 0.0
		for id, w := range identifierTargetWeight {
			sum += fm.Exposures[id][f] * w
		}
		targetAvg[f] = sum
	}

	for id := range actualWeights {
		if _, ok := fm.Exposures[id]; ok {
			continue
		}
		row := make(map[string]float64, len(fm.Factors))
		for _, f := range fm.Factors {
			row[f] = targetAvg[f]
		}
		fm.Exposures[id] = row
	}

	return fm, targetAvg, ActualExposure(fm, actualWeights), nil
}

// ActualExposure computes the portfolio-weighted average factor exposure
// given a set of per-identifier weights, reused both by InitFactorModel and
// to recompute a strategy's post-trade factor exposures after applying
// trades.
func ActualExposure(fm oracle.FactorModel, actualWeights map[string]float64) map[string]float64 {
	actualAvg := make(map[string]float64, len(fm.Factors))
	for _, f := range fm.Factors {
		sum := 0.0
		for id, w := range actualWeights {
			sum += fm.Exposures[id][f] * w
		}
		actualAvg[f] = sum
	}
	return actualAvg
}
