package reports

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// DriftComparisonRow is one asset class's pre/post drift comparison.
type DriftComparisonRow struct {
	AssetClass        string
	DriftPre          float64
	DriftPost         float64
	DriftDelta        float64
	DriftImprovement  float64 // |drift_pre| - |drift_post|; positive means improved
	PreOverweight     bool
	PreUnderweight    bool
	PostOverweight    bool
	PostUnderweight   bool
}

// DriftComparisonSummary aggregates DriftComparisonRow statistics across
// all asset classes.
type DriftComparisonSummary struct {
	TotalDriftImprovement   float64
	AverageDriftImprovement float64
	PositionsImproved       int
	PositionsWorsened       int
	PositionsUnchanged      int
	PreDriftMagnitude       float64
	PostDriftMagnitude      float64
	OverallDriftReduction   float64
}

// GenerateDriftComparisonReport diffs two drift reports (pre- and
// post-trade) at the asset-class level. Grounded on
// reports/comparison_report.py's generate_drift_comparison_report
// (SPEC_FULL.md §C.2), a component spec.md §2 names in its pipeline list
// but never details in §4.
func GenerateDriftComparisonReport(pre, post []oracle.DriftRow) ([]DriftComparisonRow, DriftComparisonSummary) {
	postByClass := make(map[string]oracle.DriftRow, len(post))
	for _, r := range post {
		postByClass[r.AssetClass] = r
	}

	var rows []DriftComparisonRow
	var sum DriftComparisonSummary

	for _, preRow := range pre {
		postRow := postByClass[preRow.AssetClass]

		improvement := absf(preRow.Drift) - absf(postRow.Drift)

		row := DriftComparisonRow{
			AssetClass:       preRow.AssetClass,
			DriftPre:         preRow.Drift,
			DriftPost:        postRow.Drift,
			DriftDelta:       postRow.Drift - preRow.Drift,
			DriftImprovement: improvement,
			PreOverweight:    preRow.Drift > 0,
			PreUnderweight:   preRow.Drift < 0,
			PostOverweight:   postRow.Drift > 0,
			PostUnderweight:  postRow.Drift < 0,
		}
		rows = append(rows, row)

		sum.TotalDriftImprovement += improvement
		sum.PreDriftMagnitude += absf(preRow.Drift)
		sum.PostDriftMagnitude += absf(postRow.Drift)
		switch {
		case improvement > 0:
			sum.PositionsImproved++
		case improvement < 0:
			sum.PositionsWorsened++
		default:
			sum.PositionsUnchanged++
		}
	}

	if len(rows) > 0 {
		sum.AverageDriftImprovement = sum.TotalDriftImprovement / float64(len(rows))
	}
	if sum.PreDriftMagnitude > 0 {
		sum.OverallDriftReduction = 1 - sum.PostDriftMagnitude/sum.PreDriftMagnitude
	}

	return rows, sum
}

// FactorComparisonRow is one factor's pre/post/target exposure comparison,
// applicable only to DIRECT_INDEX strategies.
type FactorComparisonRow struct {
	Factor           string
	ExposurePre      float64
	ExposurePost     float64
	ExposureTarget   float64
	DriftPre         float64
	DriftPost        float64
	DriftImprovement float64
}

// FactorComparisonSummary aggregates FactorComparisonRow statistics.
type FactorComparisonSummary struct {
	TotalFactorImprovement    float64
	FactorsImproved           int
	FactorsWorsened           int
	FactorsUnchanged          int
	PreFactorTrackingError    float64
	PostFactorTrackingError   float64
	OverallFactorImprovement  float64
}

// GenerateFactorComparisonReport diffs pre/post portfolio-weighted factor
// exposures against target exposures, DIRECT_INDEX only. Grounded on
// reports/comparison_report.py's generate_factor_model_comparison_report.
func GenerateFactorComparisonReport(
	factors []string,
	preActual, postActual, target map[string]float64,
) ([]FactorComparisonRow, FactorComparisonSummary) {
	var rows []FactorComparisonRow
	var sum FactorComparisonSummary

	for _, f := range factors {
		pre := preActual[f]
		post := postActual[f]
		tgt := target[f]

		driftPre := pre - tgt
		driftPost := post - tgt
		improvement := absf(driftPre) - absf(driftPost)

		rows = append(rows, FactorComparisonRow{
			Factor:           f,
			ExposurePre:      pre,
			ExposurePost:     post,
			ExposureTarget:   tgt,
			DriftPre:         driftPre,
			DriftPost:        driftPost,
			DriftImprovement: improvement,
		})

		sum.TotalFactorImprovement += improvement
		sum.PreFactorTrackingError += absf(driftPre)
		sum.PostFactorTrackingError += absf(driftPost)
		switch {
		case improvement > 0:
			sum.FactorsImproved++
		case improvement < 0:
			sum.FactorsWorsened++
		default:
			sum.FactorsUnchanged++
		}
	}

	if sum.PreFactorTrackingError > 0 {
		sum.OverallFactorImprovement = 1 - sum.PostFactorTrackingError/sum.PreFactorTrackingError
	}

	return rows, sum
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
