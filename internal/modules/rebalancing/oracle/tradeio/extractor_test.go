package tradeio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

func TestExtract(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	s := &oracle.Strategy{
		StrategyID:  "s1",
		CurrentDate: now,
		TaxLots: []oracle.TaxLot{
			{TaxLotID: "lot_1", Identifier: "AAPL", Quantity: 10, CostBasis: 1000, Date: now.AddDate(-1, 0, 0)},
		},
		Targets: []oracle.AssetClassTarget{
			{AssetClass: "us_equity", TargetWeight: 0.9, Identifiers: []string{"AAPL", "MSFT"}},
			{AssetClass: "cash", TargetWeight: 0.1, Identifiers: []string{oracle.CashIdentifier}},
		},
		Prices: map[string]oracle.Price{
			"AAPL":                {Identifier: "AAPL", Price: 150},
			"MSFT":                {Identifier: "MSFT", Price: 200},
			oracle.CashIdentifier: {Identifier: oracle.CashIdentifier, Price: 1},
		},
		Spreads: map[string]oracle.Spread{
			"AAPL":                {Identifier: "AAPL", SpreadFrac: 0.001},
			"MSFT":                {Identifier: "MSFT", SpreadFrac: 0.001},
			oracle.CashIdentifier: {Identifier: oracle.CashIdentifier, SpreadFrac: 0},
		},
		GainLossReport: []oracle.GainLossRow{
			{
				TaxLotID: "lot_1", Identifier: "AAPL",
				CostPerShare: 100, CurrentPrice: 150,
				GainType: oracle.GainTypeLongTerm, PerShareTaxLiability: 2,
			},
		},
	}

	p := milp.NewProblem(true)
	vars := decisionvars.Build(p, s)

	sol := milp.Solution{Values: map[string]float64{
		decisionvars.BuyVarName("MSFT"): 5,
		decisionvars.SellVarName("lot_1"): 4,
	}}

	t.Run("produces a buy trade with per-share transaction cost", func(t *testing.T) {
		trades := Extract(s, sol, vars, nil)
		var buy *oracle.Trade
		for i := range trades {
			if trades[i].Action == oracle.ActionBuy {
				buy = &trades[i]
			}
		}
		require.NotNil(t, buy)
		assert.Equal(t, "MSFT", buy.Identifier)
		assert.InDelta(t, 5, buy.Quantity, 1e-9)
		assert.InDelta(t, 5*200*0.001, buy.Transaction.Cost, 1e-9)
		assert.Nil(t, buy.GainLoss, "buys must never populate GainLoss")
	})

	t.Run("produces a sell trade with lot-specific gain/loss", func(t *testing.T) {
		trades := Extract(s, sol, vars, nil)
		var sell *oracle.Trade
		for i := range trades {
			if trades[i].Action == oracle.ActionSell {
				sell = &trades[i]
			}
		}
		require.NotNil(t, sell)
		require.NotNil(t, sell.GainLoss)
		assert.InDelta(t, 4*100, sell.GainLoss.CostBasis, 1e-9)
		assert.InDelta(t, 4*50, sell.GainLoss.RealizedGain, 1e-9)
		assert.InDelta(t, 4*2, sell.GainLoss.TaxCost, 1e-9)
	})

	t.Run("flags both legs of a TLH pair", func(t *testing.T) {
		pairs := []TLHPair{{Sold: "AAPL", Replacement: "MSFT"}}
		trades := Extract(s, sol, vars, pairs)
		for _, tr := range trades {
			assert.True(t, tr.IsTLH, "identifier %s should be flagged as a TLH leg", tr.Identifier)
		}
	})

	t.Run("skips dust below the trade quantity floor", func(t *testing.T) {
		dustSol := milp.Solution{Values: map[string]float64{
			decisionvars.BuyVarName("MSFT"):   1e-12,
			decisionvars.SellVarName("lot_1"): 1e-12,
		}}
		trades := Extract(s, dustSol, vars, nil)
		assert.Empty(t, trades)
	})
}
