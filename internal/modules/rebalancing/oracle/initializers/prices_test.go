package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestInitPrices(t *testing.T) {
	t.Run("forces CASH to 1.0 even if supplied otherwise", func(t *testing.T) {
		out, err := InitPrices([]oracle.Price{{Identifier: "CASH", Price: 1.5}}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1.0, out[oracle.CashIdentifier].Price)
	})

	t.Run("adds CASH@1.0 when absent", func(t *testing.T) {
		out, err := InitPrices(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1.0, out[oracle.CashIdentifier].Price)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := InitPrices([]oracle.Price{{Identifier: "AAPL", Price: -1}}, nil)
		require.Error(t, err)
	})

	t.Run("errors when a referenced identifier has no price", func(t *testing.T) {
		_, err := InitPrices(nil, []string{"AAPL"})
		require.Error(t, err)
	})

	t.Run("succeeds when every referenced identifier has a price", func(t *testing.T) {
		out, err := InitPrices([]oracle.Price{{Identifier: "AAPL", Price: 150}}, []string{"AAPL"})
		require.NoError(t, err)
		assert.Equal(t, 150.0, out["AAPL"].Price)
	})
}
