package tradeio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestSmartRound(t *testing.T) {
	t.Run("rounds down to the configured precision", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 3.14159, Price: 100},
		}
		out := SmartRound(trades, 2, 0)
		assert.Len(t, out, 1)
		assert.InDelta(t, 3.14, out[0].Quantity, 1e-9)
	})

	t.Run("rounds a below-min-notional group up rather than dropping it", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 0.5, Price: 100},
		}
		out := SmartRound(trades, 2, 100)
		assert.Len(t, out, 1)
		assert.GreaterOrEqual(t, out[0].Quantity*out[0].Price, 100.0)
	})

	t.Run("drops a trade whose group cannot reach min notional", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 0, Price: 100},
		}
		out := SmartRound(trades, 2, 100)
		assert.Empty(t, out)
	})

	t.Run("drops non-positive quantities up front", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 0, Price: 100},
			{Identifier: "MSFT", Action: oracle.ActionSell, Quantity: -1, Price: 200},
		}
		out := SmartRound(trades, 2, 0)
		assert.Empty(t, out)
	})

	t.Run("preserves total notional value within one increment's worth", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "AAPL", Action: oracle.ActionBuy, Quantity: 3.333, Price: 100},
			{Identifier: "MSFT", Action: oracle.ActionBuy, Quantity: 6.667, Price: 50},
		}
		originalValue := 0.0
		for _, tr := range trades {
			originalValue += tr.Quantity * tr.Price
		}

		out := SmartRound(trades, 2, 0)
		newValue := 0.0
		for _, tr := range out {
			newValue += tr.Quantity * tr.Price
		}
		assert.InDelta(t, originalValue, newValue, 1.0)
	})

	t.Run("sorts output descending by trade value", func(t *testing.T) {
		trades := []oracle.Trade{
			{Identifier: "SMALL", Action: oracle.ActionBuy, Quantity: 1, Price: 10},
			{Identifier: "BIG", Action: oracle.ActionBuy, Quantity: 10, Price: 100},
		}
		out := SmartRound(trades, 2, 0)
		assert.Len(t, out, 2)
		assert.Equal(t, "BIG", out[0].Identifier)
	})
}

func TestRoundTo(t *testing.T) {
	assert.InDelta(t, 3.14, roundTo(3.14159, 2), 1e-9)
	assert.InDelta(t, 3.0, roundTo(3.14159, 0), 1e-9)
}
