package initializers

import (
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
)

// DefaultSpreadFullyAbsent is the default spread fraction applied to every
// identifier when no spreads table is supplied at all.
const DefaultSpreadFullyAbsent = 0.0003

// DefaultSpreadPartialTable is the default spread fraction applied to
// identifiers missing from an otherwise-provided spreads table. This is the
// dual-default behavior documented in SPEC_FULL.md §C.3, grounded on
// initializers/spreads.py.
const DefaultSpreadPartialTable = 0.0001

// InitSpreads validates and canonicalizes the spread table, filling in
// defaults for any identifier in allIdentifiers that's missing a spread.
func InitSpreads(raw []oracle.Spread, allIdentifiers []string) map[string]oracle.Spread {
	out := make(map[string]oracle.Spread, len(allIdentifiers))

	defaultFrac := DefaultSpreadFullyAbsent
	if len(raw) > 0 {
		defaultFrac = DefaultSpreadPartialTable
	}

	for _, s := range raw {
		s.Identifier = canonicalIdentifier(s.Identifier)
		if s.Identifier == oracle.CashIdentifier {
			s.SpreadFrac = 0
		}
		out[s.Identifier] = s
	}

	for _, id := range allIdentifiers {
		id = canonicalIdentifier(id)
		if _, ok := out[id]; ok {
			continue
		}
		frac := defaultFrac
		if id == oracle.CashIdentifier {
			frac = 0
		}
		out[id] = oracle.Spread{Identifier: id, SpreadFrac: frac}
	}

	return out
}
