package reports

import (
	"sort"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// GenerateDriftReport aggregates actuals by asset class and compares
// against (re-normalized) target weights. Grounded on
// reports/drift_report.py: target weights are re-normalized to sum to 1,
// drift/drift_pct/drift_dollars are derived, and position_status is
// classified using oracle.DriftThreshold, with NON_TARGET_INSTRUMENT
// overriding when the target weight is zero. Sorted by drift descending,
// matching the original's final .sort_values('drift', ascending=False).
func GenerateDriftReport(targets []oracle.AssetClassTarget, actuals []oracle.ActualsRow) []oracle.DriftRow {
	idToAssetClass := make(map[string]string)
	for _, t := range targets {
		for _, id := range t.Identifiers {
			idToAssetClass[id] = t.AssetClass
		}
	}

	assetClassActuals := make(map[string]float64)
	for _, a := range actuals {
		ac, ok := idToAssetClass[a.Identifier]
		if !ok {
			continue
		}
		assetClassActuals[ac] += a.MarketValue
	}

	totalTargetWeight := 0.0
	for _, t := range targets {
		totalTargetWeight += t.TargetWeight
	}

	totalValue := 0.0
	for _, v := range assetClassActuals {
		totalValue += v
	}

	rows := make([]oracle.DriftRow, 0, len(targets))
	for _, t := range targets {
		targetWeight := t.TargetWeight
		if totalTargetWeight > 0 {
			targetWeight = t.TargetWeight / totalTargetWeight
		}

		marketValue := assetClassActuals[t.AssetClass]
		actualWeight := 0.0
		if totalValue > 0 {
			actualWeight = marketValue / totalValue
		}

		drift := actualWeight - targetWeight
		driftPct := 0.0
		if targetWeight != 0 {
			driftPct = drift / targetWeight
		}
		driftDollars := marketValue - targetWeight*totalValue

		status := oracle.PositionOnTarget
		switch {
		case targetWeight == 0:
			status = oracle.PositionNonTargetInstrument
		case drift > oracle.DriftThreshold:
			status = oracle.PositionOverweight
		case drift < -oracle.DriftThreshold:
			status = oracle.PositionUnderweight
		}

		rows = append(rows, oracle.DriftRow{
			AssetClass:   t.AssetClass,
			TargetWeight: targetWeight,
			ActualWeight: actualWeight,
			MarketValue:  marketValue,
			Drift:        drift,
			DriftPct:     driftPct,
			DriftDollars: driftDollars,
			Status:       status,
			Identifiers:  t.Identifiers,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Drift > rows[j].Drift })
	return rows
}
