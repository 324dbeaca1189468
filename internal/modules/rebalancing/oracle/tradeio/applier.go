package tradeio

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/initializers"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/reports"
)

// zeroQuantityTolerance is the residual below which a lot is considered
// fully consumed and dropped rather than kept at a near-zero quantity.
const zeroQuantityTolerance = 1e-6

// ApplyResult carries the raw portfolio-level outputs of applying a trade
// set: the updated tax lots, updated cash, and the lots closed (fully or
// partially) by this application.
type ApplyResult struct {
	TaxLots    []oracle.TaxLot
	Cash       float64
	ClosedLots []oracle.ClosedLot
}

// Apply consumes sell trades against their referenced tax lots and opens a
// new lot for every buy, returning the updated raw portfolio state. Grounded
// on trade_applier.py's apply_trades_to_portfolio (tax_lots/cash/
// recently_closed_lots branch).
//
// A sell trade with no TaxLotID, or one referencing a lot not present in
// taxLots, is skipped rather than erroring — the original logs a warning and
// continues, treating it as a stale reference rather than fatal input.
func Apply(taxLots []oracle.TaxLot, trades []oracle.NettedTrade, cash float64, currentDate time.Time) ApplyResult {
	byID := make(map[string]int, len(taxLots))
	lots := make([]oracle.TaxLot, len(taxLots))
	copy(lots, taxLots)
	for i, lot := range lots {
		byID[lot.TaxLotID] = i
	}

	var closed []oracle.ClosedLot
	var newLots []oracle.TaxLot
	removed := make(map[string]bool)
	newLotSeq := 0

	for _, t := range trades {
		tradeValue := t.Quantity * t.Price

		switch t.Action {
		case oracle.ActionSell:
			if t.TaxLotID == "" {
				continue
			}
			idx, ok := byID[t.TaxLotID]
			if !ok {
				continue
			}
			lot := lots[idx]
			if lot.Quantity == 0 {
				continue
			}

			proceeds := tradeValue
			costPerShare := lot.CostBasis / lot.Quantity
			soldCostBasis := costPerShare * t.Quantity
			realizedGain := proceeds - soldCostBasis

			closed = append(closed, oracle.ClosedLot{
				Identifier:   lot.Identifier,
				Quantity:     t.Quantity,
				CostBasis:    soldCostBasis,
				DateAcquired: lot.Date,
				DateSold:     currentDate,
				Proceeds:     proceeds,
				RealizedGain: realizedGain,
			})

			newQuantity := lot.Quantity - t.Quantity
			if newQuantity < zeroQuantityTolerance {
				removed[t.TaxLotID] = true
			} else {
				lot.CostBasis = lot.CostBasis * (newQuantity / lot.Quantity)
				lot.Quantity = newQuantity
				lots[idx] = lot
			}
			cash += tradeValue

		case oracle.ActionBuy:
			newLots = append(newLots, oracle.TaxLot{
				TaxLotID:   fmt.Sprintf("lot_%s_%s_%d", t.Identifier, uuid.NewString(), newLotSeq),
				Identifier: t.Identifier,
				Quantity:   t.Quantity,
				CostBasis:  tradeValue,
				Date:       currentDate,
			})
			newLotSeq++
			cash -= tradeValue
		}
	}

	final := make([]oracle.TaxLot, 0, len(lots)+len(newLots))
	for _, lot := range lots {
		if removed[lot.TaxLotID] {
			continue
		}
		final = append(final, lot)
	}
	final = append(final, newLots...)

	return ApplyResult{TaxLots: final, Cash: cash, ClosedLots: closed}
}

// ApplyToStrategy applies trades to s and returns a new, independently
// valid post-trade Strategy with its derived reports recomputed from the
// updated tax lots and cash. Grounded on trade_applier.py's
// strategy-returning branch.
//
// Unlike the original, which copies WithdrawalAmount onto the returned
// Strategy unchanged, this resets it to 0: a withdrawal is a one-time
// instruction for the solve that produced these trades, not a standing
// property of the resulting portfolio (SPEC_FULL.md §D.5).
func ApplyToStrategy(s *oracle.Strategy, trades []oracle.NettedTrade) *oracle.Strategy {
	result := Apply(s.TaxLots, trades, s.Cash, s.CurrentDate)

	next := *s
	next.TaxLots = result.TaxLots
	next.Cash = result.Cash
	next.ClosedLots = append(append([]oracle.ClosedLot{}, s.ClosedLots...), result.ClosedLots...)
	next.WithdrawalAmount = 0

	next.ActualsReport = reports.GenerateActualsReport(next.TaxLots, next.Prices, next.Cash)
	next.DriftReport = reports.GenerateDriftReport(next.Targets, next.ActualsReport)
	next.GainLossReport = reports.GenerateGainLossReport(next.TaxLots, next.Prices, next.CurrentDate, next.TaxRates)

	if next.FactorModel != nil {
		actualWeights := make(map[string]float64, len(next.ActualsReport))
		for _, row := range next.ActualsReport {
			actualWeights[row.Identifier] = row.ActualWeight
		}
		next.FactorModelActual = initializers.ActualExposure(*next.FactorModel, actualWeights)
	}

	return &next
}
