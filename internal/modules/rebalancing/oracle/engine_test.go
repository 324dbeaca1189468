package oracle_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
)

// flatTradingDayLookup treats every calendar day as its own nearest trading
// day, enough for a unit test that never straddles a weekend/holiday gap.
type flatTradingDayLookup struct{}

func (flatTradingDayLookup) NearestPriorTradingDay(d time.Time) time.Time { return d }

func TestProcessEvent_AlreadyBalancedStrategyTradesNothing(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	input := oracle.StrategyInput{
		StrategyID:       "balanced",
		OptimizationType: "TAX_AWARE",
		CurrentDate:      now,
		Cash:             1000,
		MinNotional:      1,
		TradeRounding:    2,
		Targets: []oracle.AssetClassTarget{
			{AssetClass: "cash", TargetWeight: 1.0, Identifiers: []string{oracle.CashIdentifier}},
		},
	}

	event := oracle.Event{Strategies: []oracle.StrategyInput{input}, NettingTradeRounding: 2}
	resp := oracle.ProcessEvent(event, oracle.DefaultSolverConfig(), flatTradingDayLookup{}, zerolog.Nop())

	require.Len(t, resp.StrategyResults, 1)
	result := resp.StrategyResults[0]
	require.NoError(t, result.Err)
	assert.Equal(t, "balanced", result.StrategyID)
	assert.Empty(t, result.Trades, "an all-cash strategy with an all-cash target has nothing to trade")
	assert.Empty(t, resp.NettedTrades)
}

func TestProcessEvent_RejectsInvalidTargets(t *testing.T) {
	input := oracle.StrategyInput{
		StrategyID:       "broken",
		OptimizationType: "TAX_AWARE",
		CurrentDate:      time.Now().UTC(),
		Cash:             1000,
		Targets: []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 0.2, Identifiers: []string{"AAPL"}},
		},
	}

	event := oracle.Event{Strategies: []oracle.StrategyInput{input}}
	resp := oracle.ProcessEvent(event, oracle.DefaultSolverConfig(), flatTradingDayLookup{}, zerolog.Nop())

	require.Len(t, resp.StrategyResults, 1)
	assert.Error(t, resp.StrategyResults[0].Err)
	assert.NotEmpty(t, resp.Diagnostics)
}

var _ constraints.TradingDayLookup = flatTradingDayLookup{}
