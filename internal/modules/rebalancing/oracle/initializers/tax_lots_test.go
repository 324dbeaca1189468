package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

func TestInitTaxLots(t *testing.T) {
	tests := []struct {
		name      string
		raw       []oracle.TaxLot
		wantErr   bool
		wantCount int
	}{
		{
			name: "canonicalizes identifiers and synthesizes missing IDs",
			raw: []oracle.TaxLot{
				{Identifier: "aapl", Quantity: 10, CostBasis: 1000},
				{Identifier: "cash", Quantity: 500, CostBasis: 500},
			},
			wantCount: 2,
		},
		{
			name: "rejects negative quantity",
			raw: []oracle.TaxLot{
				{Identifier: "AAPL", Quantity: -1, CostBasis: 100},
			},
			wantErr: true,
		},
		{
			name: "rejects negative cost basis",
			raw: []oracle.TaxLot{
				{Identifier: "AAPL", Quantity: 1, CostBasis: -100},
			},
			wantErr: true,
		},
		{
			name: "rejects duplicate tax lot IDs",
			raw: []oracle.TaxLot{
				{TaxLotID: "lot_1", Identifier: "AAPL", Quantity: 1, CostBasis: 100},
				{TaxLotID: "lot_1", Identifier: "MSFT", Quantity: 1, CostBasis: 100},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := InitTaxLots(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, out, tt.wantCount)
			for _, lot := range out {
				assert.NotEmpty(t, lot.TaxLotID)
				assert.Equal(t, lot.Identifier, canonicalIdentifier(lot.Identifier))
			}
		})
	}
}

func TestCanonicalIdentifier(t *testing.T) {
	assert.Equal(t, oracle.CashIdentifier, canonicalIdentifier("cash"))
	assert.Equal(t, oracle.CashIdentifier, canonicalIdentifier("USD"))
	assert.Equal(t, oracle.CashIdentifier, canonicalIdentifier(" $$$ "))
	assert.Equal(t, "AAPL", canonicalIdentifier("aapl"))
}
