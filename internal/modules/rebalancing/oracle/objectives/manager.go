package objectives

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/decisionvars"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/milp"
)

// Build composes the weighted objective spec.md §4.5 describes:
// w_tax·tax + w_drift·drift + w_tx·transaction + w_factor·factor +
// w_cash·cash_deployment, with weights already remapped by the strategy's
// OptimizationType (oracle.OptimizationType.AdjustWeights). The tax,
// drift, transaction and cash terms are always built, and contribute
// nothing when their weight is zero; the factor term is built only for
// DIRECT_INDEX.
// Grounded on original_source/oracle/src/service/objective_manager.py
// (referenced by spec.md §2 but not retrieved; composition order follows
// spec.md §4.5's table directly).
func Build(p *milp.Problem, s *oracle.Strategy, vars *decisionvars.Set) error {
	weights := s.OptimizationType.AdjustWeights(s.Weights)

	taxTerm, err := AddTaxTerm(p, s, vars)
	if err != nil {
		return err
	}
	transactionTerm := AddTransactionTerm(p, s, vars)
	driftTerm := AddDriftTerm(p, s, vars)
	cashTerm := AddCashDeploymentTerm(p, s, vars)

	p.AddObjectiveTerm(taxTerm, weights.Tax)
	p.AddObjectiveTerm(driftTerm, weights.Drift)
	p.AddObjectiveTerm(transactionTerm, weights.Transaction)
	p.AddObjectiveTerm(cashTerm, weights.Cash)

	if s.OptimizationType == oracle.OptimizationDirectIndex {
		factorTerm := AddFactorTerm(p, s, vars)
		p.AddObjectiveTerm(factorTerm, weights.Factor)
	}

	return nil
}
