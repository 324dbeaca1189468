package constraints

import (
	"fmt"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/initializers"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// RestrictionValidator implements spec.md §4.4e: stock restrictions zero-pin
// buys or sells per flag, the wash-sale buy restriction zero-pins the buy,
// and the wash-sale sell restriction forces any restricted lot to be sold
// only as part of a full liquidation of the identifier via a binary
// `liquidate[id]` indicator. Grounded on
// original_source/oracle/src/service/constraints/restriction/restriction_validator.py.
type RestrictionValidator struct {
	Strategy *oracle.Strategy
}

func (r *RestrictionValidator) Name() string { return "restriction" }

func (r *RestrictionValidator) ValidateBuy(identifier string, qty float64) (bool, string, error) {
	s := r.Strategy
	if !initializers.CanBuy(s.StockRestrictions, identifier) {
		return false, fmt.Sprintf("security %s is restricted from buying", identifier), nil
	}
	if s.EnforceWashSalePrevention && s.WashSale != nil && s.WashSale.IsRestrictedFromBuying(identifier) {
		return false, fmt.Sprintf("security %s is restricted due to wash sale rules", identifier), nil
	}
	return true, "", nil
}

func (r *RestrictionValidator) ValidateSell(taxLotID string, qty float64) (bool, string, error) {
	s := r.Strategy
	var identifier string
	found := false
	for _, lot := range s.TaxLots {
		if lot.TaxLotID == taxLotID {
			identifier = lot.Identifier
			found = true
			break
		}
	}
	if !found {
		return true, "", nil
	}

	if !initializers.CanSell(s.StockRestrictions, identifier) {
		return false, fmt.Sprintf("security %s is restricted from selling", identifier), nil
	}
	if s.EnforceWashSalePrevention && s.WashSale != nil {
		for _, restricted := range s.WashSale.RestrictedLots(identifier) {
			if restricted == taxLotID {
				return false, fmt.Sprintf("tax lot %s is restricted due to wash sale rules", taxLotID), nil
			}
		}
	}
	return true, "", nil
}

func (r *RestrictionValidator) Build(p *milp.Problem, vars *decisionvars.Set) error {
	s := r.Strategy

	for identifier, restriction := range s.StockRestrictions {
		if !restriction.CanBuy {
			if idx, ok := vars.BuyIndex[identifier]; ok {
				p.AddConstraint(fmt.Sprintf("no_buy[%s]", identifier), map[int]float64{idx: 1}, milp.EQ, 0)
			}
		}
		if !restriction.CanSell {
			for _, idx := range vars.SellLotsByIdentifier[identifier] {
				p.AddConstraint(fmt.Sprintf("no_sell[%s][%d]", identifier, idx), map[int]float64{idx: 1}, milp.EQ, 0)
			}
		}
	}

	if !s.EnforceWashSalePrevention || s.WashSale == nil {
		return nil
	}

	lotQuantityByIdentifier := make(map[string]float64)
	for _, lot := range s.TaxLots {
		lotQuantityByIdentifier[lot.Identifier] += lot.Quantity
	}

	for _, identifier := range s.CandidateIdentifiers() {
		if s.WashSale.IsRestrictedFromBuying(identifier) {
			if idx, ok := vars.BuyIndex[identifier]; ok {
				p.AddConstraint(fmt.Sprintf("wash_sale_buy[%s]", identifier), map[int]float64{idx: 1}, milp.EQ, 0)
			}
		}

		restrictedLots := s.WashSale.RestrictedLots(identifier)
		if len(restrictedLots) == 0 {
			continue
		}

		liquidateIdx := p.AddVar(fmt.Sprintf("liquidate[%s]", identifier), milp.Binary, 0, 1)

		totalSellCoeffs := make(map[int]float64)
		for _, idx := range vars.SellLotsByIdentifier[identifier] {
			totalSellCoeffs[idx] = 1
		}
		totalSellCoeffs[liquidateIdx] = -lotQuantityByIdentifier[identifier]
		p.AddConstraint(fmt.Sprintf("wash_sale_liquidate[%s]", identifier), totalSellCoeffs, milp.GE, 0)

		lotQuantity := make(map[string]float64, len(s.TaxLots))
		for _, lot := range s.TaxLots {
			lotQuantity[lot.TaxLotID] = lot.Quantity
		}
		for _, taxLotID := range restrictedLots {
			idx, ok := vars.SellIndex[taxLotID]
			if !ok {
				continue
			}
			p.AddConstraint(
				fmt.Sprintf("wash_sale_sell[%s]", taxLotID),
				map[int]float64{idx: 1, liquidateIdx: -lotQuantity[taxLotID]},
				milp.EQ, 0,
			)
		}
	}

	return nil
}
