package tradeio

import (
	"math"
	"sort"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// Net sums signed quantities per identifier across every strategy's rounded
// trade set (buys positive, sells negative), drops identifiers that net to
// zero, and for identifiers that net to a sell apportions each contributing
// lot's realized gain/loss into its short/long x gain/loss quadrant,
// weighted by the fraction of that lot actually consumed by the net sell
// once offsetting buys are absorbed. Grounded on
// trade_netting.py's net_trades_across_strategies.
func Net(allTrades []oracle.Trade, tradeRounding int) []oracle.NettedTrade {
	type signedTrade struct {
		oracle.Trade
		signedQty float64
	}

	byIdentifier := make(map[string][]signedTrade)
	var order []string
	for _, t := range allTrades {
		qty := roundTo(t.Quantity, tradeRounding)
		if t.Action == oracle.ActionSell {
			qty = -qty
		}
		if _, ok := byIdentifier[t.Identifier]; !ok {
			order = append(order, t.Identifier)
		}
		byIdentifier[t.Identifier] = append(byIdentifier[t.Identifier], signedTrade{Trade: t, signedQty: qty})
	}

	var out []oracle.NettedTrade

	for _, identifier := range order {
		rows := byIdentifier[identifier]

		net := 0.0
		for _, r := range rows {
			net += r.signedQty
		}
		if net == 0 {
			continue
		}

		if net > 0 {
			out = append(out, oracle.NettedTrade{
				Identifier: identifier,
				Action:     oracle.ActionBuy,
				Quantity:   net,
				Price:      rows[0].Price,
			})
			continue
		}

		// Net sell: sort descending by signed quantity (buys first, then
		// sells from least- to most-negative), running-sum, and keep only
		// the portion of each sell lot not absorbed by offsetting buys.
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].signedQty > rows[j].signedQty
		})

		cum := 0.0
		for i := range rows {
			cum += rows[i].signedQty
			if rows[i].Action != oracle.ActionSell || cum >= 0 {
				continue
			}
			netQty := rows[i].signedQty
			if netQty < cum {
				netQty = cum
			}
			if netQty >= 0 {
				continue
			}

			pct := netQty / rows[i].signedQty
			realizedGain := 0.0
			isLongTerm := false
			if rows[i].GainLoss != nil {
				realizedGain = rows[i].GainLoss.RealizedGain * pct
				isLongTerm = rows[i].GainLoss.GainType == oracle.GainTypeLongTerm
			}

			nt := oracle.NettedTrade{
				Identifier: identifier,
				Action:     oracle.ActionSell,
				Quantity:   -netQty,
				Price:      rows[i].Price,
				TaxLotID:   rows[i].TaxLotID,
			}
			switch {
			case isLongTerm && realizedGain >= 0:
				nt.LongTermGain = realizedGain
			case isLongTerm && realizedGain < 0:
				nt.LongTermLoss = math.Abs(realizedGain)
			case !isLongTerm && realizedGain >= 0:
				nt.ShortTermGain = realizedGain
			default:
				nt.ShortTermLoss = math.Abs(realizedGain)
			}
			out = append(out, nt)
		}
	}

	return out
}
