package oracle

import "fmt"

// ValidationError is returned by initializers when an input table fails
// canonicalization. It lists every offending row/column so the caller never
// has to re-run validation to find the next issue (spec.md §7 layer 1).
type ValidationError struct {
	Entity string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: validation failed", e.Entity)
	}
	msg := fmt.Sprintf("%s: validation failed (%d issue(s)): ", e.Entity, len(e.Issues))
	for i, issue := range e.Issues {
		if i > 0 {
			msg += "; "
		}
		msg += issue
	}
	return msg
}

// TradeRejectedError is returned by a validator's per-trade predicate when
// a single proposed trade is inadmissible (spec.md §7 layer 2). Validators
// whose admissibility depends on the whole trade set return
// NotSupportedAloneError instead.
type TradeRejectedError struct {
	Validator string
	Reason    string
}

func (e *TradeRejectedError) Error() string {
	return fmt.Sprintf("%s rejected trade: %s", e.Validator, e.Reason)
}

// NotSupportedAloneError is returned by per-trade predicates of validators
// that only contribute problem-level constraints (cash, drift, withdrawal,
// no-simultaneous) — calling them in isolation is a programmer error, not a
// trade rejection.
type NotSupportedAloneError struct {
	Validator string
}

func (e *NotSupportedAloneError) Error() string {
	return fmt.Sprintf("%s: per-trade validation not supported in isolation; this validator only contributes problem-level constraints", e.Validator)
}

// SolveError wraps a non-optimal solver outcome (spec.md §7 layer 3).
type SolveError struct {
	StrategyID string
	Status     string
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("strategy %s: solver returned non-optimal status %q", e.StrategyID, e.Status)
}
