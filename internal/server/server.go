// Package server provides the HTTP server and routing for the
// rebalancing oracle, following the same chi-router-plus-handler-struct
// shape as the portfolio manager's per-module handlers (e.g.
// internal/modules/allocation/handlers), scaled down to the oracle's
// single operation instead of a whole REST surface.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Config controls the HTTP listener. Addr follows net/http's ListenAndServe
// convention (":8080", "localhost:8080", ...).
type Config struct {
	Addr string
}

// New builds a chi router exposing the rebalancing oracle over HTTP and
// wraps it with the timeout and logging middleware the teacher app's
// routers apply uniformly across modules.
func New(oracleHandler *OracleHandler, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(timeout(30 * time.Second))

	r.Route("/api/rebalance", func(r chi.Router) {
		r.Post("/", oracleHandler.HandleProcessEvent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("elapsed", time.Since(start)).
				Msg("handled request")
		})
	}
}
