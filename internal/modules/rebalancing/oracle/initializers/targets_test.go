package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestInitTargets(t *testing.T) {
	t.Run("inserts a cash row at the Deminimus floor when none supplied", func(t *testing.T) {
		raw := []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 1.0, Identifiers: []string{"VTI"}},
		}
		out, err := InitTargets(raw, 0)
		require.NoError(t, err)

		var cash *oracle.AssetClassTarget
		for i := range out {
			if out[i].AssetClass == oracle.CashIdentifier {
				cash = &out[i]
			}
		}
		require.NotNil(t, cash)
		assert.InDelta(t, Deminimus, cash.TargetWeight, 1e-9)

		sum := 0.0
		for _, t := range out {
			sum += t.TargetWeight
		}
		assert.InDelta(t, 1.0, sum, WeightSumTolerance)
	})

	t.Run("withdrawal fraction increases the cash target and rescales the rest", func(t *testing.T) {
		raw := []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 0.6, Identifiers: []string{"VTI"}},
			{AssetClass: "intl_equity", TargetWeight: 0.4, Identifiers: []string{"VXUS"}},
		}
		out, err := InitTargets(raw, 0.2)
		require.NoError(t, err)

		var cashWeight float64
		var nonCashSum float64
		for _, t := range out {
			if t.AssetClass == oracle.CashIdentifier {
				cashWeight = t.TargetWeight
			} else {
				nonCashSum += t.TargetWeight
			}
		}
		assert.Greater(t, cashWeight, Deminimus)
		assert.InDelta(t, 1.0, cashWeight+nonCashSum, WeightSumTolerance)
	})

	t.Run("rejects more than two identifiers per asset class", func(t *testing.T) {
		raw := []oracle.AssetClassTarget{
			{AssetClass: "bad", TargetWeight: 1.0, Identifiers: []string{"A", "B", "C"}},
		}
		_, err := InitTargets(raw, 0)
		require.Error(t, err)
	})

	t.Run("rejects duplicate asset classes", func(t *testing.T) {
		raw := []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 0.5, Identifiers: []string{"VTI"}},
			{AssetClass: "us_equity", TargetWeight: 0.5, Identifiers: []string{"VOO"}},
		}
		_, err := InitTargets(raw, 0)
		require.Error(t, err)
	})

	t.Run("rejects a lone cash row under its own weight with no offsetting rows", func(t *testing.T) {
		raw := []oracle.AssetClassTarget{
			{AssetClass: "cash_reserve", TargetWeight: 0.5, Identifiers: []string{"CASH"}},
		}
		_, err := InitTargets(raw, 0)
		require.Error(t, err)
	})
}
