// Package http wires the HTTP surface: routing, middleware and the
// request/response mapping around the ledger engine and the ingestion
// runner.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chronos-erp/flowledger/internal/adapter/http/handler"
	"github.com/chronos-erp/flowledger/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	TransferHandler  *handler.TransferHandler
	SaleHandler      *handler.SaleHandler
	DebtHandler      *handler.DebtHandler
	IngestionHandler *handler.IngestionHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore middleware.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.AccountHandler.ListEntries)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/", cfg.TransferHandler.List)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", cfg.SaleHandler.Create)
			r.Get("/", cfg.SaleHandler.List)
			r.Get("/{id}", cfg.SaleHandler.Get)
			r.Post("/{id}/settle", cfg.SaleHandler.Settle)
			r.Post("/{id}/cancel", cfg.SaleHandler.Cancel)
		})

		// Debts and clients
		r.Route("/debts", func(r chi.Router) {
			r.Get("/{id}", cfg.DebtHandler.Get)
			r.Post("/{id}/payments", cfg.DebtHandler.RecordPayment)
		})
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", cfg.DebtHandler.ListClients)
			r.Get("/{id}/debts", cfg.DebtHandler.ListByClient)
		})

		// Ingestion
		r.Route("/ingestions", func(r chi.Router) {
			r.Post("/", cfg.IngestionHandler.Create)
			r.Get("/", cfg.IngestionHandler.List)
			r.Get("/{id}", cfg.IngestionHandler.Get)
		})
	})

	return r
}
