package oracle

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/initializers"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/maxwithdrawal"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/objectives"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/reports"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/tradeio"
)

// StrategyInput is one strategy's raw, pre-validation request data, spec.md
// §6's per-strategy event payload.
type StrategyInput struct {
	StrategyID                string
	OptimizationType          string
	CurrentDate               time.Time
	WithdrawalAmount          float64
	MinCash                   float64
	MinNotional               float64
	TradeRounding             int
	HoldingTimeDelta          time.Duration
	EnforceWashSalePrevention bool
	RangeMinWeightMultiplier  float64
	RangeMaxWeightMultiplier  float64
	Weights                   ObjectiveWeights

	TaxLots           []TaxLot
	Targets           []AssetClassTarget
	Prices            []Price
	Spreads           []Spread
	StockRestrictions []StockRestriction
	TaxRates          []TaxRate
	FactorModel       *FactorModel // nil when not supplied
	ClosedLots        []ClosedLot
	WashSale          WashSaleRestrictions // nil defaults to NoWashSaleRestrictions{}
	Cash              float64

	// ComputeMaxWithdrawal, when set, additionally runs the max-withdrawal
	// driver (spec.md §4.7) for this strategy alongside its ordinary solve.
	ComputeMaxWithdrawal          bool
	PreserveTargetsOnMaxWithdrawal bool
}

// Event is the single external request shape, spec.md §6: one or more
// strategies to solve, plus a shared netting precision for the
// cross-strategy trade-netting pass.
type Event struct {
	Strategies           []StrategyInput
	NettingTradeRounding int
}

// MaxWithdrawalOutcome carries the max-withdrawal driver's result for one
// strategy, when StrategyInput.ComputeMaxWithdrawal was set.
type MaxWithdrawalOutcome struct {
	MaxWithdrawal float64
	Trades        []Trade
}

// StrategyResult is one strategy's solve outcome.
type StrategyResult struct {
	StrategyID     string
	Status         milp.Status
	ObjectiveValue float64
	Trades         []Trade

	DriftComparison []reports.DriftComparisonRow
	DriftSummary    reports.DriftComparisonSummary
	FactorComparison []reports.FactorComparisonRow
	FactorSummary    reports.FactorComparisonSummary

	MaxWithdrawal *MaxWithdrawalOutcome

	Err error // non-nil on a validation failure, solver error, or similar (spec.md §7)
}

// Response is ProcessEvent's single return value: spec.md §6's
// `{strategy_results, netted_trades, diagnostics}`.
type Response struct {
	StrategyResults []StrategyResult
	NettedTrades    []NettedTrade
	Diagnostics     []string
}

// ProcessEvent is the engine's sole external entry point (spec.md §6),
// grounded in shape on lambda_function.py's lambda_handler /
// Oracle.process_lambda_event, with the AWS Lambda runtime wrapper
// dropped — only the pure function is in scope.
//
// Every strategy is solved independently (spec.md §5: "coarse-grained,
// across independent strategies"); a failure on one strategy is recorded
// in its own StrategyResult and never aborts the others. Rounded trades
// from every strategy that solved are then netted once across the shared
// ledger.
func ProcessEvent(event Event, cfg SolverConfig, tradingDays constraints.TradingDayLookup, log zerolog.Logger) Response {
	resp := Response{}
	var allTrades []Trade

	for _, input := range event.Strategies {
		sub := log.With().Str("strategy_id", input.StrategyID).Logger()
		result := StrategyResult{StrategyID: input.StrategyID}

		strategy, err := buildStrategy(input)
		if err != nil {
			result.Err = err
			resp.Diagnostics = append(resp.Diagnostics, input.StrategyID+": "+err.Error())
			resp.StrategyResults = append(resp.StrategyResults, result)
			continue
		}

		p := milp.NewProblem(true)
		vars := decisionvars.Build(p, strategy)

		if err := objectives.Build(p, strategy, vars); err != nil {
			result.Err = err
			resp.Diagnostics = append(resp.Diagnostics, input.StrategyID+": "+err.Error())
			resp.StrategyResults = append(resp.StrategyResults, result)
			continue
		}

		mgr := constraints.NewManager(strategy, tradingDays, false, sub)
		if err := mgr.Apply(p, vars); err != nil {
			result.Err = err
			resp.Diagnostics = append(resp.Diagnostics, input.StrategyID+": "+err.Error())
			resp.StrategyResults = append(resp.StrategyResults, result)
			continue
		}

		if err := milp.Validate(p); err != nil {
			result.Err = err
			resp.Diagnostics = append(resp.Diagnostics, input.StrategyID+": "+err.Error())
			resp.StrategyResults = append(resp.StrategyResults, result)
			continue
		}

		sol := milp.Solve(p, milp.Options{
			TimeLimit: time.Duration(cfg.TimeLimitSeconds) * time.Second,
			GapRel:    cfg.GapRel,
			MaxNodes:  cfg.MaxNodes,
		})
		result.Status = sol.Status
		result.ObjectiveValue = sol.Objective

		if sol.Status != milp.StatusOptimal {
			result.Err = &SolveError{StrategyID: input.StrategyID, Status: statusString(sol.Status)}
			resp.Diagnostics = append(resp.Diagnostics, result.Err.Error())
			resp.StrategyResults = append(resp.StrategyResults, result)
			continue
		}

		tlhPairs := tlhPairsFor(strategy)
		trades := tradeio.Extract(strategy, sol, vars, tlhPairs)
		trades = tradeio.SmartRound(trades, strategy.TradeRounding, strategy.MinNotional)
		result.Trades = trades

		post := tradeio.ApplyToStrategy(strategy, tradesToNetted(trades))
		result.DriftComparison, result.DriftSummary = reports.GenerateDriftComparisonReport(strategy.DriftReport, post.DriftReport)
		if strategy.FactorModel != nil {
			result.FactorComparison, result.FactorSummary = reports.GenerateFactorComparisonReport(
				strategy.FactorModel.Factors, strategy.FactorModelActual, post.FactorModelActual, strategy.FactorModelTarget,
			)
		}

		if input.ComputeMaxWithdrawal {
			mw, err := maxwithdrawal.Calculate(strategy, tradingDays, input.PreserveTargetsOnMaxWithdrawal, milp.Options{
				TimeLimit: time.Duration(cfg.TimeLimitSeconds) * time.Second,
				GapRel:    cfg.GapRel,
				MaxNodes:  cfg.MaxNodes,
			}, sub)
			if err != nil {
				resp.Diagnostics = append(resp.Diagnostics, input.StrategyID+" (max withdrawal): "+err.Error())
			} else {
				result.MaxWithdrawal = &MaxWithdrawalOutcome{MaxWithdrawal: mw.MaxWithdrawal, Trades: mw.Trades}
			}
		}

		allTrades = append(allTrades, trades...)
		resp.StrategyResults = append(resp.StrategyResults, result)
	}

	resp.NettedTrades = tradeio.Net(allTrades, event.NettingTradeRounding)
	return resp
}

// buildStrategy runs every initializer over input's raw tables, derives the
// read-only reports, and assembles the immutable Strategy, in the order
// spec.md §4.1/§4.2 describes.
func buildStrategy(input StrategyInput) (*Strategy, error) {
	taxLots, err := initializers.InitTaxLots(input.TaxLots)
	if err != nil {
		return nil, err
	}

	allIdentifiers := collectIdentifiers(taxLots, input.Targets)

	prices, err := initializers.InitPrices(input.Prices, allIdentifiers)
	if err != nil {
		return nil, err
	}

	totalValueEstimate := input.Cash
	for _, lot := range taxLots {
		totalValueEstimate += lot.Quantity * prices[lot.Identifier].Price
	}
	withdrawalFraction := 0.0
	if totalValueEstimate > 0 {
		withdrawalFraction = input.WithdrawalAmount / totalValueEstimate
	}

	targets, err := initializers.InitTargets(input.Targets, withdrawalFraction)
	if err != nil {
		return nil, err
	}

	spreads := initializers.InitSpreads(input.Spreads, allIdentifiers)

	stockRestrictions, err := initializers.InitStockRestrictions(input.StockRestrictions)
	if err != nil {
		return nil, err
	}

	taxRates, err := initializers.InitTaxRates(input.TaxRates)
	if err != nil {
		return nil, err
	}

	closedLots, err := initializers.InitClosedLots(input.ClosedLots)
	if err != nil {
		return nil, err
	}

	actualsReport := reports.GenerateActualsReport(taxLots, prices, input.Cash)
	driftReport := reports.GenerateDriftReport(targets, actualsReport)
	gainLossReport := reports.GenerateGainLossReport(taxLots, prices, input.CurrentDate, taxRates)

	optType, err := ParseOptimizationType(input.OptimizationType)
	if err != nil {
		return nil, err
	}

	washSale := input.WashSale
	if washSale == nil {
		washSale = NoWashSaleRestrictions{}
	}

	var factorModel *FactorModel
	var factorTarget, factorActual map[string]float64
	if input.FactorModel != nil && len(input.FactorModel.Factors) > 0 {
		actualWeights := make(map[string]float64, len(actualsReport))
		for _, row := range actualsReport {
			actualWeights[row.Identifier] = row.ActualWeight
		}
		fm, target, actual, err := initializers.InitFactorModel(*input.FactorModel, targets, actualWeights)
		if err != nil {
			return nil, err
		}
		factorModel = &fm
		factorTarget = target
		factorActual = actual
	}

	return &Strategy{
		StrategyID:                input.StrategyID,
		CurrentDate:               input.CurrentDate,
		TaxLots:                   taxLots,
		Targets:                   targets,
		Prices:                    prices,
		Spreads:                   spreads,
		StockRestrictions:         stockRestrictions,
		WashSale:                  washSale,
		TaxRates:                  taxRates,
		FactorModel:               factorModel,
		ClosedLots:                closedLots,
		Cash:                      input.Cash,
		OptimizationType:          optType,
		WithdrawalAmount:          input.WithdrawalAmount,
		MinCash:                   input.MinCash,
		MinNotional:               input.MinNotional,
		TradeRounding:             input.TradeRounding,
		HoldingTimeDelta:          input.HoldingTimeDelta,
		EnforceWashSalePrevention: input.EnforceWashSalePrevention,
		RangeMinWeightMultiplier:  input.RangeMinWeightMultiplier,
		RangeMaxWeightMultiplier:  input.RangeMaxWeightMultiplier,
		Weights:                   input.Weights,
		ActualsReport:             actualsReport,
		DriftReport:               driftReport,
		GainLossReport:            gainLossReport,
		FactorModelTarget:         factorTarget,
		FactorModelActual:         factorActual,
	}, nil
}

func collectIdentifiers(taxLots []TaxLot, targets []AssetClassTarget) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, lot := range taxLots {
		add(lot.Identifier)
	}
	for _, t := range targets {
		for _, id := range t.Identifiers {
			add(id)
		}
	}
	return out
}

// tlhPairsFor derives the Sold/Replacement identifier pairs tradeio.Extract
// uses to flag TLH trades: every asset class carrying two identifiers, for
// a strategy type that pursues tax-loss harvesting (spec.md's glossary
// entry on TLH; enums.go's ShouldTLH).
func tlhPairsFor(s *Strategy) []tradeio.TLHPair {
	if !s.OptimizationType.ShouldTLH() {
		return nil
	}
	var pairs []tradeio.TLHPair
	for _, t := range s.Targets {
		if len(t.Identifiers) == 2 {
			pairs = append(pairs, tradeio.TLHPair{Sold: t.Identifiers[0], Replacement: t.Identifiers[1]})
			pairs = append(pairs, tradeio.TLHPair{Sold: t.Identifiers[1], Replacement: t.Identifiers[0]})
		}
	}
	return pairs
}

func tradesToNetted(trades []Trade) []NettedTrade {
	out := make([]NettedTrade, len(trades))
	for i, t := range trades {
		out[i] = NettedTrade{
			Identifier: t.Identifier,
			Action:     t.Action,
			Quantity:   t.Quantity,
			Price:      t.Price,
			TaxLotID:   t.TaxLotID,
		}
	}
	return out
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
