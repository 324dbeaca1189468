// Package di wires the rebalancing oracle's dependencies into a single
// container, mirroring the step-numbered orchestration the portfolio
// manager's original container used for its much larger 8-database
// graph (internal/di/wire.go in the teacher app), scaled down to what
// the oracle actually needs: no databases, no repositories, just a
// solver config and a trading-day calendar, both loaded once at
// startup and held for the life of the process.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
)

// Container holds everything cmd/server needs to serve oracle requests.
type Container struct {
	SolverConfig oracle.SolverConfig
	TradingDays  constraints.TradingDayLookup
	Log          zerolog.Logger
}

// Wire initializes the container's dependencies in order:
//  1. Load the solver's resource limits from the environment.
//  2. Load the NYSE trading-day calendar the constraint package needs
//     to snap the holding-period cutoff date to a trading day.
//
// Either step can fail on a malformed environment variable or a missing
// embedded calendar asset; Wire returns the first error rather than
// falling back to a partially-built container.
func Wire(log zerolog.Logger) (*Container, error) {
	solverCfg, err := oracle.LoadSolverConfig()
	if err != nil {
		return nil, fmt.Errorf("loading solver config: %w", err)
	}

	tradingDays, err := constraints.NewTradingDayLookup()
	if err != nil {
		return nil, fmt.Errorf("loading trading day calendar: %w", err)
	}

	return &Container{
		SolverConfig: solverCfg,
		TradingDays:  tradingDays,
		Log:          log,
	}, nil
}
