package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
)

// OracleHandler exposes the rebalancing oracle over HTTP.
type OracleHandler struct {
	solverConfig oracle.SolverConfig
	tradingDays  constraints.TradingDayLookup
	log          zerolog.Logger
}

// NewOracleHandler creates a new oracle handler.
func NewOracleHandler(solverConfig oracle.SolverConfig, tradingDays constraints.TradingDayLookup, log zerolog.Logger) *OracleHandler {
	return &OracleHandler{
		solverConfig: solverConfig,
		tradingDays:  tradingDays,
		log:          log.With().Str("handler", "oracle").Logger(),
	}
}

// HandleProcessEvent handles POST /api/rebalance/: it decodes an
// oracle.Event, solves every strategy in it, and returns the resulting
// oracle.Response verbatim as JSON.
func (h *OracleHandler) HandleProcessEvent(w http.ResponseWriter, r *http.Request) {
	var event oracle.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.log.Error().Err(err).Msg("failed to decode rebalance event")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(event.Strategies) == 0 {
		http.Error(w, "strategies is required and must not be empty", http.StatusBadRequest)
		return
	}

	resp := oracle.ProcessEvent(event, h.solverConfig, h.tradingDays, h.log)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *OracleHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
