// Package main is the entry point for the rebalancing oracle's HTTP
// server. It follows the same startup/shutdown shape as the portfolio
// manager's original entrypoint (flags, env-backed config, structured
// logging, DI wiring, graceful shutdown on SIGINT/SIGTERM), scaled down
// to the oracle's single dependency graph: no databases, no work
// processor, no LED monitors, just a solver config, a trading-day
// calendar, and an HTTP handler wrapping oracle.ProcessEvent.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel/internal/di"
	"github.com/aristath/sentinel/internal/server"
)

func main() {
	var addr string
	var logLevel string
	flag.StringVar(&addr, "addr", ":8080", "HTTP listen address (overrides ORACLE_ADDR environment variable)")
	flag.StringVar(&logLevel, "log-level", "info", "zerolog log level")
	flag.Parse()

	// Configuration is loaded from environment variables (.env file), same
	// precedence as cmd/oracle-bench: CLI flags beat env vars, env vars beat
	// defaults.
	_ = godotenv.Load()
	if v := os.Getenv("ORACLE_ADDR"); v != "" && addr == ":8080" {
		addr = v
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	log.Info().Msg("starting rebalancing oracle")

	// Wire all dependencies using the DI container: loads the solver's
	// resource limits and the NYSE trading-day calendar.
	container, err := di.Wire(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire dependencies")
	}

	oracleHandler := server.NewOracleHandler(container.SolverConfig, container.TradingDays, log)
	router := server.New(oracleHandler, log)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().Str("addr", addr).Msg("server started")

	// Block until SIGINT/SIGTERM, then give in-flight requests up to 10
	// seconds to finish before forcing shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
