// Package maxwithdrawal implements spec.md §4.7's max-withdrawal solver
// variant: the same MILP machinery as an ordinary rebalance, but with
// buying forbidden and the objective replaced by "maximize cash raised".
// Grounded on
// original_source/oracle/src/service/helpers/max_withdrawal.py's
// calculate_max_withdrawal.
package maxwithdrawal

import (
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/reports"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/tradeio"
)

// Result is the outcome of a max-withdrawal solve.
type Result struct {
	MaxWithdrawal float64
	Trades        []oracle.Trade
	Solution      milp.Solution
}

// Calculate builds and solves the liquidation variant of s's MILP and
// returns the largest cash amount that can be raised (net of transaction
// cost, above s.MinCash — or, when preserveTargets, above the strategy's
// own min-cash floor) along with the trades that raise it.
//
// When preserveTargets is false, every asset class's target weight is
// rewritten to 0 and cash's to 1.0 (full liquidation); when true, targets
// are left untouched and the solve simply sells as much as the existing
// drift-range/restriction/holding-time constraints allow. Holding-time
// constraints ARE enforced either way — SPEC_FULL.md §D.1 resolves this
// against the original, which silently drops them for this call.
//
// The original's headline figure sums raw Σsell_qty·price, ignoring the
// transaction cost the same sells would actually incur; this computes
// Σsell_qty·(price − per_share_cost) instead, so the reported amount is
// cash actually realizable, consistent with spec.md §4.7's "subject to
// spreads" qualifier on the withdrawable amount.
func Calculate(
	s *oracle.Strategy,
	tradingDays constraints.TradingDayLookup,
	preserveTargets bool,
	solveOpts milp.Options,
	log zerolog.Logger,
) (Result, error) {
	if s.TotalValue() <= 0 {
		return Result{}, nil
	}

	liquidation := *s
	liquidation.WithdrawalAmount = 0

	if !preserveTargets {
		targets := make([]oracle.AssetClassTarget, len(s.Targets))
		copy(targets, s.Targets)
		for i, t := range targets {
			isCash := t.AssetClass == oracle.CashIdentifier
			for _, id := range t.Identifiers {
				if id == oracle.CashIdentifier {
					isCash = true
				}
			}
			if isCash {
				targets[i].TargetWeight = 1.0
			} else {
				targets[i].TargetWeight = 0.0
			}
		}
		liquidation.Targets = targets
		liquidation.DriftReport = reports.GenerateDriftReport(targets, liquidation.ActualsReport)
		liquidation.MinCash = 0
	}

	p := milp.NewProblem(true)
	vars := decisionvars.Build(p, &liquidation)

	lots := make(map[string]oracle.TaxLot, len(liquidation.TaxLots))
	for _, lot := range liquidation.TaxLots {
		lots[lot.TaxLotID] = lot
	}
	for taxLotID, idx := range vars.SellIndex {
		lot := lots[taxLotID]
		price := liquidation.Prices[lot.Identifier].Price
		perShareCost := liquidation.Spreads[lot.Identifier].PerShareCost(price)
		p.AddObjectiveTerm(idx, -(price - perShareCost))
	}

	mgr := constraints.NewManager(&liquidation, tradingDays, true, log)
	if err := mgr.Apply(p, vars); err != nil {
		return Result{}, err
	}

	if err := milp.Validate(p); err != nil {
		return Result{}, err
	}
	sol := milp.Solve(p, solveOpts)
	if sol.Status != milp.StatusOptimal {
		log.Warn().Str("status", statusString(sol.Status)).Msg("max withdrawal solve did not reach optimality")
		return Result{}, nil
	}

	var cashGenerated float64
	for taxLotID, idx := range vars.SellIndex {
		lot := lots[taxLotID]
		qty := sol.Values[p.Vars[idx].Name]
		if qty <= 0 {
			continue
		}
		price := liquidation.Prices[lot.Identifier].Price
		perShareCost := liquidation.Spreads[lot.Identifier].PerShareCost(price)
		cashGenerated += qty * (price - perShareCost)
	}

	maxWithdrawal := cashGenerated + liquidation.Cash - s.MinCash

	trades := tradeio.Extract(&liquidation, sol, vars, nil)
	trades = tradeio.SmartRound(trades, liquidation.TradeRounding, liquidation.MinNotional)

	return Result{MaxWithdrawal: maxWithdrawal, Trades: trades, Solution: sol}, nil
}

func statusString(s milp.Status) string {
	switch s {
	case milp.StatusOptimal:
		return "optimal"
	case milp.StatusInfeasible:
		return "infeasible"
	case milp.StatusTimeLimit:
		return "time_limit"
	case milp.StatusNodeLimit:
		return "node_limit"
	case milp.StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}
