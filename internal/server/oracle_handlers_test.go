package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
)

type flatTradingDayLookup struct{}

func (flatTradingDayLookup) NearestPriorTradingDay(d time.Time) time.Time { return d }

var _ constraints.TradingDayLookup = flatTradingDayLookup{}

func TestHandleProcessEvent_RejectsEmptyStrategies(t *testing.T) {
	h := NewOracleHandler(oracle.DefaultSolverConfig(), flatTradingDayLookup{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/rebalance/", bytes.NewReader([]byte(`{"strategies":[]}`)))
	rec := httptest.NewRecorder()

	h.HandleProcessEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleProcessEvent_SolvesAnAllCashStrategy(t *testing.T) {
	h := NewOracleHandler(oracle.DefaultSolverConfig(), flatTradingDayLookup{}, zerolog.Nop())

	event := oracle.Event{
		Strategies: []oracle.StrategyInput{
			{
				StrategyID:       "balanced",
				OptimizationType: "TAX_AWARE",
				CurrentDate:      time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
				Cash:             1000,
				MinNotional:      1,
				TradeRounding:    2,
				Targets: []oracle.AssetClassTarget{
					{AssetClass: "cash", TargetWeight: 1.0, Identifiers: []string{oracle.CashIdentifier}},
				},
			},
		},
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/rebalance/", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleProcessEvent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp oracle.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.StrategyResults, 1)
	assert.NoError(t, resp.StrategyResults[0].Err)
}
