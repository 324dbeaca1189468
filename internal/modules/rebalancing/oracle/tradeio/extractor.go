// Package tradeio turns a solved MILP's variable values into Trade rows,
// rounds them to tradeable lot units while preserving cash balance and
// minimum notional, and nets opposite-direction trades across strategies
// sharing a ledger. Grounded on
// original_source/oracle/src/service/helpers/trade_extractor.py,
// trade_netting.py, and trade_applier.py.
package tradeio

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// TLHPair identifies one tax-loss-harvesting replacement relationship: a
// buy of Replacement is considered the TLH leg paired with selling Sold.
type TLHPair struct {
	Sold        string
	Replacement string
}

// Extract reads buy[id] and sell[lot] values out of sol and emits one Trade
// per var whose solved value exceeds min, annotated with realized-gain,
// transaction-cost, and tax-cost metadata. Grounded on trade_extractor.py's
// extract_trades.
//
// Unlike the original, which looks up per_share_tax_liability by the
// *first* gain_loss row matching the sold identifier — silently wrong for
// any identifier held across multiple lots with different liabilities —
// this looks up the specific lot's own GainLossRow (SPEC_FULL.md §D.3).
// It also prices the buy-side transaction cost via per_share_cost
// consistently with the sell side, rather than the raw spread fraction
// (SPEC_FULL.md §D.4).
func Extract(s *oracle.Strategy, sol milp.Solution, vars *decisionvars.Set, tlhPairs []TLHPair) []oracle.Trade {
	replacementIdentifiers := make(map[string]bool, len(tlhPairs))
	soldIdentifiers := make(map[string]bool, len(tlhPairs))
	for _, pair := range tlhPairs {
		replacementIdentifiers[pair.Replacement] = true
		soldIdentifiers[pair.Sold] = true
	}

	gainLossByLot := s.GainLossByLot()
	var trades []oracle.Trade

	for identifier := range vars.BuyIndex {
		if identifier == oracle.CashIdentifier {
			continue
		}
		qty := sol.Values[decisionvars.BuyVarName(identifier)]
		if qty <= minTradeQuantity {
			continue
		}
		price := s.Prices[identifier].Price
		spread := s.Spreads[identifier]
		perShareCost := spread.PerShareCost(price)

		trades = append(trades, oracle.Trade{
			Identifier: identifier,
			Action:     oracle.ActionBuy,
			Quantity:   qty,
			Price:      price,
			IsTLH:      replacementIdentifiers[identifier],
			Transaction: oracle.TradeTransaction{
				Spread: spread.SpreadFrac,
				Cost:   qty * perShareCost,
			},
		})
	}

	for _, lot := range s.TaxLots {
		qty := sol.Values[decisionvars.SellVarName(lot.TaxLotID)]
		if qty <= minTradeQuantity {
			continue
		}
		row, ok := gainLossByLot[lot.TaxLotID]
		if !ok {
			continue
		}
		price := s.Prices[lot.Identifier].Price
		spread := s.Spreads[lot.Identifier]
		perShareCost := spread.PerShareCost(price)

		trades = append(trades, oracle.Trade{
			Identifier: lot.Identifier,
			TaxLotID:   lot.TaxLotID,
			Action:     oracle.ActionSell,
			Quantity:   qty,
			Price:      price,
			IsTLH:      soldIdentifiers[lot.Identifier],
			GainLoss: &oracle.TradeGainLoss{
				CostBasis:    qty * row.CostPerShare,
				RealizedGain: qty * (row.CurrentPrice - row.CostPerShare),
				GainType:     row.GainType,
				TaxCost:      qty * row.PerShareTaxLiability,
			},
			Transaction: oracle.TradeTransaction{
				Spread: spread.SpreadFrac,
				Cost:   qty * perShareCost,
			},
		})
	}

	return trades
}

// minTradeQuantity filters out numerical noise left by the simplex/B&B
// solve (values like 1e-13 that should be exact zero).
const minTradeQuantity = 1e-9
