package oracle

import (
	"fmt"
	"os"
	"strconv"
)

// SolverConfig controls the branch-and-bound MILP solver's resource limits.
// Loaded once at construction time from environment variables with
// defaults, matching internal/config's env-var-with-default convention
// (SPEC_FULL.md §A.3); never re-read mid-solve.
type SolverConfig struct {
	TimeLimitSeconds int
	GapRel           float64
	MaxNodes         int
	WarmStart        bool
}

// DefaultSolverConfig returns the defaults documented in
// original_source/oracle/src/solvers/solver.py.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		TimeLimitSeconds: 60,
		GapRel:           0.01,
		MaxNodes:         10000,
		WarmStart:        true,
	}
}

// LoadSolverConfig loads a SolverConfig from environment variables,
// falling back to DefaultSolverConfig for any unset value; a set but
// unparsable value is returned as an error.
func LoadSolverConfig() (SolverConfig, error) {
	cfg := DefaultSolverConfig()

	if v := os.Getenv("ORACLE_SOLVER_TIME_LIMIT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing ORACLE_SOLVER_TIME_LIMIT_SECONDS: %w", err)
		}
		cfg.TimeLimitSeconds = n
	}

	if v := os.Getenv("ORACLE_SOLVER_GAP_REL"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("parsing ORACLE_SOLVER_GAP_REL: %w", err)
		}
		cfg.GapRel = f
	}

	if v := os.Getenv("ORACLE_SOLVER_MAX_NODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing ORACLE_SOLVER_MAX_NODES: %w", err)
		}
		cfg.MaxNodes = n
	}

	if v := os.Getenv("ORACLE_SOLVER_WARM_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing ORACLE_SOLVER_WARM_START: %w", err)
		}
		cfg.WarmStart = b
	}

	return cfg, nil
}
