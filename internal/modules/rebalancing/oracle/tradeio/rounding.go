package tradeio

import (
	"math"
	"sort"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

type groupKey struct {
	identifier string
	action     oracle.TradeAction
}

// SmartRound rounds each trade's quantity to a 10^(-tradeRounding) increment
// in three passes — floor, round up below-min-notional groups, then
// distribute the residual cash delta largest-value-first — so the rounded
// trade set preserves total notional value and respects min_notional after
// rounding. Grounded on trade_extractor.py's smart_round_trades.
//
// Realized-gain, tax-cost, and transaction-cost fields on each Trade are
// left as computed from the pre-rounding solved quantity, matching the
// original: the rounding pass only ever touches Quantity.
func SmartRound(trades []oracle.Trade, tradeRounding int, minNotional float64) []oracle.Trade {
	scale := math.Pow(10, float64(tradeRounding))
	minIncrement := 1.0 / scale

	working := make([]oracle.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Quantity > 0 {
			working = append(working, t)
		}
	}
	if len(working) == 0 {
		return working
	}

	originalTotalValue := 0.0
	for _, t := range working {
		originalTotalValue += t.Quantity * t.Price
	}

	// Pass 1: round down.
	for i := range working {
		working[i].Quantity = math.Floor(working[i].Quantity*scale) / scale
	}

	// Pass 2: round up (identifier, action) groups below min_notional.
	if minNotional > 0 {
		groupValue := make(map[groupKey]float64)
		for _, t := range working {
			groupValue[groupKey{t.Identifier, t.Action}] += t.Quantity * t.Price
		}
		for i := range working {
			key := groupKey{working[i].Identifier, working[i].Action}
			if groupValue[key] >= minNotional {
				continue
			}
			price := working[i].Price
			currentValue := working[i].Quantity * price
			neededValue := minNotional - currentValue
			neededIncrements := math.Ceil(neededValue / (price * minIncrement))
			newQuantity := working[i].Quantity + neededIncrements*minIncrement
			working[i].Quantity = roundTo(newQuantity, tradeRounding)
		}
	}

	newTotalValue := 0.0
	for _, t := range working {
		newTotalValue += t.Quantity * t.Price
	}
	valueDifference := roundTo(originalTotalValue-newTotalValue, tradeRounding)

	// Pass 3: distribute the residual, largest trade value first.
	if valueDifference != 0 {
		sort.SliceStable(working, func(i, j int) bool {
			return working[i].Quantity*working[i].Price > working[j].Quantity*working[j].Price
		})

		minPrice := math.Inf(1)
		for _, t := range working {
			if t.Price < minPrice {
				minPrice = t.Price
			}
		}
		minIncrementValue := minPrice * minIncrement

		if math.Abs(valueDifference) >= minIncrementValue {
			addValue := valueDifference > 0
			groupValue := make(map[groupKey]float64)
			for _, t := range working {
				groupValue[groupKey{t.Identifier, t.Action}] += t.Quantity * t.Price
			}
			for i := range working {
				if valueDifference == 0 {
					break
				}
				price := working[i].Price
				valuePerUnit := price * minIncrement
				if valuePerUnit > math.Abs(valueDifference) {
					continue
				}
				if addValue {
					working[i].Quantity = roundTo(working[i].Quantity+minIncrement, tradeRounding)
					valueDifference = roundTo(valueDifference-valuePerUnit, tradeRounding)
				} else {
					// Never undo pass 2 by pushing a group back below min_notional.
					key := groupKey{working[i].Identifier, working[i].Action}
					if minNotional > 0 && groupValue[key]-valuePerUnit < minNotional {
						continue
					}
					working[i].Quantity = roundTo(working[i].Quantity-minIncrement, tradeRounding)
					groupValue[key] -= valuePerUnit
					valueDifference = roundTo(valueDifference+valuePerUnit, tradeRounding)
				}
			}
		}
	}

	// Drop zero-quantity trades.
	filtered := working[:0]
	for _, t := range working {
		if t.Quantity > 0 {
			filtered = append(filtered, t)
		}
	}
	working = filtered

	// Drop trades whose (identifier, action) group still falls short of min_notional.
	if minNotional > 0 {
		groupValue := make(map[groupKey]float64)
		for _, t := range working {
			groupValue[groupKey{t.Identifier, t.Action}] += t.Quantity * t.Price
		}
		filtered = working[:0]
		for _, t := range working {
			if groupValue[groupKey{t.Identifier, t.Action}] >= minNotional {
				filtered = append(filtered, t)
			}
		}
		working = filtered
	}

	sort.SliceStable(working, func(i, j int) bool {
		return working[i].Quantity*working[i].Price > working[j].Quantity*working[j].Price
	})
	return working
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
