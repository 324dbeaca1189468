package constraints

import (
	"fmt"
	"time"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// HoldingTimeDelta is how far back from the strategy's current date a lot
// must have been acquired to be sellable. Zero or negative disables the
// constraint entirely, matching the original's `holding_time_delta is None
// or <= timedelta(days=0)` short-circuit.
type HoldingTimeDelta = time.Duration

// HoldingTimeValidator implements spec.md §4.4d: lots acquired on or after
// `before_date = current_date - holding_delta`, snapped to the nearest
// prior trading day, have their sell variable pinned to 0. Grounded on
// original_source/oracle/src/service/constraints/holding_time/holding_time_validator.py.
type HoldingTimeValidator struct {
	Strategy    *oracle.Strategy
	TradingDays TradingDayLookup
	Delta       HoldingTimeDelta
}

func (h *HoldingTimeValidator) Name() string { return "holding_time" }

func (h *HoldingTimeValidator) beforeDate() (time.Time, bool) {
	if h.Delta <= 0 {
		return time.Time{}, false
	}
	target := h.Strategy.CurrentDate.Add(-h.Delta)
	if h.TradingDays == nil {
		return target, true
	}
	return h.TradingDays.NearestPriorTradingDay(target), true
}

func (h *HoldingTimeValidator) ValidateBuy(string, float64) (bool, string, error) {
	return true, "", nil
}

func (h *HoldingTimeValidator) ValidateSell(taxLotID string, qty float64) (bool, string, error) {
	before, active := h.beforeDate()
	if !active {
		return true, "", nil
	}
	for _, lot := range h.Strategy.TaxLots {
		if lot.TaxLotID != taxLotID {
			continue
		}
		if !lot.Date.Before(before) {
			remaining := h.Delta - h.Strategy.CurrentDate.Sub(lot.Date)
			days := int(remaining.Hours()/24) + 1
			return false, fmt.Sprintf("tax lot must be held for %d more days", days), nil
		}
		return true, "", nil
	}
	return true, "", nil
}

func (h *HoldingTimeValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	before, active := h.beforeDate()
	if !active {
		return nil
	}
	for _, lot := range h.Strategy.TaxLots {
		if lot.Date.Before(before) {
			continue
		}
		idx, ok := vars.SellIndex[lot.TaxLotID]
		if !ok {
			continue
		}
		p.AddConstraint(
			fmt.Sprintf("no_sell_recently_bought[%s]", lot.TaxLotID),
			map[int]float64{idx: 1}, milp.EQ, 0,
		)
	}
	return nil
}
