package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestInitTaxRates(t *testing.T) {
	t.Run("falls back to defaults when empty", func(t *testing.T) {
		out, err := InitTaxRates(nil)
		require.NoError(t, err)
		assert.Len(t, out, 3)
		assert.Equal(t, 0.41, out[oracle.GainTypeShortTerm].Total)
	})

	t.Run("rejects a rate outside [0,1]", func(t *testing.T) {
		raw := oracle.DefaultTaxRates()
		raw[0].Federal = 1.5
		_, err := InitTaxRates(raw)
		require.Error(t, err)
	})

	t.Run("rejects a missing gain type", func(t *testing.T) {
		raw := []oracle.TaxRate{
			{GainType: oracle.GainTypeShortTerm, Federal: 0.35, State: 0.06, Total: 0.41},
			{GainType: oracle.GainTypeLongTerm, Federal: 0.2, State: 0.06, Total: 0.26},
		}
		_, err := InitTaxRates(raw)
		require.Error(t, err)
	})

	t.Run("rejects an unexpected extra gain type", func(t *testing.T) {
		raw := append(oracle.DefaultTaxRates(), oracle.TaxRate{GainType: "made_up", Federal: 0.1, State: 0, Total: 0.1})
		_, err := InitTaxRates(raw)
		require.Error(t, err)
	})
}
