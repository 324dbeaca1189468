// Package main is a standalone dev harness for the rebalancing oracle: it
// reads a JSON event off disk, runs it through oracle.ProcessEvent, and
// prints the resulting trades and diagnostics. There is no HTTP server and
// no database wiring here — the oracle engine is a pure function over its
// event payload, so the harness only needs flags, logging, and a solver
// config (cmd/server/main.go's startup shape, scaled down to match).
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle"
	"github.com/aristath/sentinel/internal/modules/rebalancing/oracle/constraints"
)

// rawEvent mirrors oracle.Event/oracle.StrategyInput field-for-field as its
// JSON wire shape, so an event fixture on disk can be unmarshaled directly.
type rawEvent struct {
	NettingTradeRounding int                    `json:"netting_trade_rounding"`
	Strategies           []oracle.StrategyInput `json:"strategies"`
}

func main() {
	var eventPath string
	var logLevel string
	flag.StringVar(&eventPath, "event", "", "path to a JSON event file (oracle.Event wire shape)")
	flag.StringVar(&logLevel, "log-level", "info", "zerolog log level")
	flag.Parse()

	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if eventPath == "" {
		log.Fatal().Msg("missing required -event flag")
	}

	raw, err := os.ReadFile(eventPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", eventPath).Msg("failed to read event file")
	}

	var re rawEvent
	if err := json.Unmarshal(raw, &re); err != nil {
		log.Fatal().Err(err).Msg("failed to parse event file")
	}

	cfg, err := oracle.LoadSolverConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load solver config")
	}

	tradingDays, err := constraints.NewTradingDayLookup()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load trading day calendar")
	}

	event := oracle.Event{
		Strategies:           re.Strategies,
		NettingTradeRounding: re.NettingTradeRounding,
	}

	resp := oracle.ProcessEvent(event, cfg, tradingDays, log)

	for _, result := range resp.StrategyResults {
		sub := log.With().Str("strategy_id", result.StrategyID).Logger()
		if result.Err != nil {
			sub.Error().Err(result.Err).Msg("strategy solve failed")
			continue
		}
		sub.Info().
			Str("status", string(result.Status)).
			Float64("objective", result.ObjectiveValue).
			Int("trade_count", len(result.Trades)).
			Msg("strategy solved")
	}

	for _, d := range resp.Diagnostics {
		log.Warn().Msg(d)
	}

	out, err := json.MarshalIndent(resp.NettedTrades, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal netted trades")
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
