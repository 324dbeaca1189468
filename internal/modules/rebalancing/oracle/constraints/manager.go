// Package constraints composes the validators spec.md §4.4 describes —
// cash, withdrawal, drift range, holding time, restrictions, min notional,
// no-simultaneous, and no-buy — into one MILP constraint set, and exposes
// the per-trade predicate form each validator also supports. Grounded on
// original_source/oracle/src/service/helpers/constraints/*.py's one-
// validator-per-file layout and constraints/manager.py's composition order.
package constraints

import (
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// BigM is the Big-M constant used by every binary-indicator constraint
// (min notional, no-simultaneous, wash-sale liquidation). Chosen well above
// any plausible single-identifier trade notional or share count.
const BigM = 1e6

// PerTradeValidator is the predicate form spec.md §4.4 requires of every
// validator: a yes/no admissibility check for one proposed trade in
// isolation. Validators whose admissibility genuinely depends on the whole
// trade set (cash, withdrawal, drift range, no-simultaneous) implement this
// by always returning a NotSupportedAloneError, per spec.md's "declare this
// via a 'not supported alone' error" instruction.
type PerTradeValidator interface {
	ValidateBuy(identifier string, qty float64) (bool, string, error)
	ValidateSell(taxLotID string, qty float64) (bool, string, error)
}

// ProblemBuilder is the constraint-contribution form every validator
// implements: given the problem and its decision variables, add whatever
// linear constraints (and, where needed, binary variables) encode this
// validator's rule.
type ProblemBuilder interface {
	Name() string
	Build(p *milp.Problem, vars *decisionvars.Set) error
}

// Manager composes the enabled validators in spec.md §4.4's fixed order
// and applies them all to one problem.
type Manager struct {
	validators []ProblemBuilder
	log        zerolog.Logger
}

// NewManager builds the validator chain for strategy s. Order matches
// spec.md §4.4: cash, withdrawal, drift range, holding time, restrictions,
// min notional, no-simultaneous, no-sell (BUY_ONLY and HOLD), no-buy (HOLD,
// or when forbidBuys is set). forbidBuys forces the
// no-buy validator independent of the strategy's own optimization type,
// e.g. for the max-withdrawal driver (spec.md §4.7).
func NewManager(s *oracle.Strategy, tradingDays TradingDayLookup, forbidBuys bool, log zerolog.Logger) *Manager {
	sub := log.With().Str("component", "constraints.manager").Str("strategy_id", s.StrategyID).Logger()

	setup := s.OptimizationType.SetupOptimization()

	m := &Manager{log: sub}
	m.validators = append(m.validators,
		&CashValidator{Strategy: s},
	)
	if s.WithdrawalAmount > 0 {
		m.validators = append(m.validators, &WithdrawalValidator{Strategy: s})
	}
	m.validators = append(m.validators,
		&DriftRangeValidator{Strategy: s},
		&HoldingTimeValidator{Strategy: s, TradingDays: tradingDays, Delta: s.HoldingTimeDelta},
		&RestrictionValidator{Strategy: s},
		&MinNotionalValidator{Strategy: s},
		&NoSimultaneousValidator{Strategy: s},
	)
	if setup.ForbidSells || setup.PinAllZero {
		m.validators = append(m.validators, &NoSellValidator{Strategy: s})
	}
	if forbidBuys || setup.PinAllZero {
		m.validators = append(m.validators, &NoBuyValidator{Strategy: s})
	}
	return m
}

// Apply runs every composed validator's Build against p in order, wrapping
// any failure with the validator's name for diagnosis.
func (m *Manager) Apply(p *milp.Problem, vars *decisionvars.Set) error {
	for _, v := range m.validators {
		m.log.Debug().Str("validator", v.Name()).Msg("applying constraint")
		if err := v.Build(p, vars); err != nil {
			return &oracle.TradeRejectedError{Validator: v.Name(), Reason: err.Error()}
		}
	}
	return nil
}
