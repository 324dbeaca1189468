package tradeio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func gainLossTrade(identifier, taxLotID string, action oracle.TradeAction, qty, price, realizedGain float64, gainType oracle.GainType) oracle.Trade {
	t := oracle.Trade{
		Identifier: identifier,
		TaxLotID:   taxLotID,
		Action:     action,
		Quantity:   qty,
		Price:      price,
	}
	if action == oracle.ActionSell {
		t.GainLoss = &oracle.TradeGainLoss{RealizedGain: realizedGain, GainType: gainType}
	}
	return t
}

func TestNet(t *testing.T) {
	t.Run("a buy and sell of equal quantity net to nothing", func(t *testing.T) {
		trades := []oracle.Trade{
			gainLossTrade("AAPL", "", oracle.ActionBuy, 10, 100, 0, ""),
			gainLossTrade("AAPL", "lot_1", oracle.ActionSell, 10, 100, 50, oracle.GainTypeLongTerm),
		}
		out := Net(trades, 2)
		assert.Empty(t, out)
	})

	t.Run("net buy across strategies emits a single buy row", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 5, Price: 100},
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 3, Price: 100},
		}
		out := Net(trades, 2)
		require.Len(t, out, 1)
		assert.Equal(t, oracle.ActionBuy, out[0].Action)
		assert.InDelta(t, 8, out[0].Quantity, 1e-9)
	})

	t.Run("buy +10 against sells -3,-4,-5 nets to -2, only the largest sell lot contributes", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 10, Price: 100},
			gainLossTrade("AAPL", "lot_a", oracle.ActionSell, 3, 100, 30, oracle.GainTypeLongTerm),
			gainLossTrade("AAPL", "lot_b", oracle.ActionSell, 4, 100, 40, oracle.GainTypeLongTerm),
			gainLossTrade("AAPL", "lot_c", oracle.ActionSell, 5, 100, 50, oracle.GainTypeLongTerm),
		}
		out := Net(trades, 2)
		require.Len(t, out, 1)
		assert.Equal(t, oracle.ActionSell, out[0].Action)
		assert.Equal(t, "lot_c", out[0].TaxLotID)
		assert.InDelta(t, 2, out[0].Quantity, 1e-9)
		// Only 2 of lot_c's 5 shares survive netting: 2/5 of its gain.
		assert.InDelta(t, 20, out[0].LongTermGain, 1e-9)
	})

	t.Run("buy +2 against sells -3,-4,-10 nets to -15, smallest lot partially absorbed", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 2, Price: 100},
			gainLossTrade("AAPL", "lot_a", oracle.ActionSell, 3, 100, 30, oracle.GainTypeLongTerm),
			gainLossTrade("AAPL", "lot_b", oracle.ActionSell, 4, 100, -40, oracle.GainTypeShortTerm),
			gainLossTrade("AAPL", "lot_c", oracle.ActionSell, 10, 100, 100, oracle.GainTypeLongTerm),
		}
		out := Net(trades, 2)
		require.Len(t, out, 3)

		byLot := make(map[string]oracle.NettedTrade)
		for _, nt := range out {
			byLot[nt.TaxLotID] = nt
		}

		partial, ok := byLot["lot_a"]
		require.True(t, ok)
		assert.InDelta(t, 1, partial.Quantity, 1e-9)
		assert.InDelta(t, 10, partial.LongTermGain, 1e-9)

		middle, ok := byLot["lot_b"]
		require.True(t, ok)
		assert.InDelta(t, 4, middle.Quantity, 1e-9)
		assert.InDelta(t, 40, middle.ShortTermLoss, 1e-9)

		full, ok := byLot["lot_c"]
		require.True(t, ok)
		assert.InDelta(t, 10, full.Quantity, 1e-9)
		assert.InDelta(t, 100, full.LongTermGain, 1e-9)
	})

	t.Run("short-term loss buckets into ShortTermLoss", func(t *testing.T) {
		trades := []oracle.Trade{
			gainLossTrade("AAPL", "lot_1", oracle.ActionSell, 5, 90, -50, oracle.GainTypeShortTerm),
		}
		out := Net(trades, 2)
		require.Len(t, out, 1)
		assert.InDelta(t, 50, out[0].ShortTermLoss, 1e-9)
		assert.Zero(t, out[0].ShortTermGain)
	})
}
