package tradeio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestApply(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	t.Run("a full sell removes the lot and credits cash", func(t *testing.T) {
		lots := []oracle.TaxLot{
			{TaxLotID: "lot_1", Identifier: "AAPL", Quantity: 10, CostBasis: 1000, Date: now.AddDate(-1, 0, 0)},
		}
		trades := []oracle.NettedTrade{
			{Identifier: "AAPL", TaxLotID: "lot_1", Action: oracle.ActionSell, Quantity: 10, Price: 150},
		}

		result := Apply(lots, trades, 0, now)
		assert.Empty(t, result.TaxLots)
		assert.InDelta(t, 1500, result.Cash, 1e-9)
		require.Len(t, result.ClosedLots, 1)
		assert.InDelta(t, 500, result.ClosedLots[0].RealizedGain, 1e-9)
	})

	t.Run("a partial sell reduces quantity and cost basis proportionally", func(t *testing.T) {
		lots := []oracle.TaxLot{
			{TaxLotID: "lot_1", Identifier: "AAPL", Quantity: 10, CostBasis: 1000, Date: now.AddDate(-1, 0, 0)},
		}
		trades := []oracle.NettedTrade{
			{Identifier: "AAPL", TaxLotID: "lot_1", Action: oracle.ActionSell, Quantity: 4, Price: 150},
		}

		result := Apply(lots, trades, 0, now)
		require.Len(t, result.TaxLots, 1)
		assert.InDelta(t, 6, result.TaxLots[0].Quantity, 1e-9)
		assert.InDelta(t, 600, result.TaxLots[0].CostBasis, 1e-9)
		assert.InDelta(t, 600, result.Cash, 1e-9)
	})

	t.Run("a buy opens a new lot and debits cash", func(t *testing.T) {
		trades := []oracle.NettedTrade{
			{Identifier: "MSFT", Action: oracle.ActionBuy, Quantity: 5, Price: 200},
		}

		result := Apply(nil, trades, 2000, now)
		require.Len(t, result.TaxLots, 1)
		assert.Equal(t, "MSFT", result.TaxLots[0].Identifier)
		assert.InDelta(t, 5, result.TaxLots[0].Quantity, 1e-9)
		assert.InDelta(t, 1000, result.TaxLots[0].CostBasis, 1e-9)
		assert.InDelta(t, 1000, result.Cash, 1e-9)
	})

	t.Run("a sell referencing a missing lot is skipped rather than erroring", func(t *testing.T) {
		trades := []oracle.NettedTrade{
			{Identifier: "AAPL", TaxLotID: "does_not_exist", Action: oracle.ActionSell, Quantity: 1, Price: 100},
		}
		result := Apply(nil, trades, 500, now)
		assert.Empty(t, result.TaxLots)
		assert.Empty(t, result.ClosedLots)
		assert.InDelta(t, 500, result.Cash, 1e-9)
	})
}

func TestApplyToStrategy(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	s := &oracle.Strategy{
		StrategyID:  "s1",
		CurrentDate: now,
		TaxLots: []oracle.TaxLot{
			{TaxLotID: "lot_1", Identifier: "AAPL", Quantity: 10, CostBasis: 1000, Date: now.AddDate(-1, 0, 0)},
		},
		Prices: map[string]oracle.Price{
			"AAPL":               {Identifier: "AAPL", Price: 150},
			oracle.CashIdentifier: {Identifier: oracle.CashIdentifier, Price: 1},
		},
		Targets: []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 0.9, Identifiers: []string{"AAPL"}},
			{AssetClass: "cash", TargetWeight: 0.1, Identifiers: []string{oracle.CashIdentifier}},
		},
		TaxRates:         map[oracle.GainType]oracle.TaxRate{},
		Cash:             100,
		WithdrawalAmount: 5000,
	}

	trades := []oracle.NettedTrade{
		{Identifier: "AAPL", TaxLotID: "lot_1", Action: oracle.ActionSell, Quantity: 5, Price: 150},
	}

	next := ApplyToStrategy(s, trades)

	assert.Zero(t, next.WithdrawalAmount, "withdrawal amount must reset after a solve is applied")
	assert.InDelta(t, 850, next.Cash, 1e-9)
	require.Len(t, next.TaxLots, 1)
	assert.InDelta(t, 5, next.TaxLots[0].Quantity, 1e-9)
	assert.NotEmpty(t, next.ActualsReport)
	assert.NotEmpty(t, next.DriftReport)

	// The original Strategy is untouched.
	assert.InDelta(t, 10, s.TaxLots[0].Quantity, 1e-9)
	assert.InDelta(t, 100, s.Cash, 1e-9)
	assert.InDelta(t, 5000, s.WithdrawalAmount, 1e-9)
}
