package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	httphandlers "networth/internal/interfaces/http"
	"networth/internal/shared/config"
	"networth/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Accounts
	mux.HandleFunc("/api/accounts", deps.AccountHandler.HandleListAccounts)
	mux.HandleFunc("/api/accounts/{id}", deps.AccountHandler.HandleAccountByID)
	mux.HandleFunc("/api/accounts/{id}/nickname", deps.AccountHandler.HandleUpdateNickname)
	mux.HandleFunc("/api/accounts/{id}/toggle-visibility", deps.AccountHandler.HandleToggleVisibility)

	// Balances
	mux.HandleFunc("/api/accounts/{id}/refresh-balance", deps.BalanceHandler.HandleRefresh)
	mux.HandleFunc("/api/accounts/{id}/balances", deps.BalanceHandler.HandleHistory)
	mux.HandleFunc("/api/accounts/{id}/balances/{balanceId}", deps.BalanceHandler.HandleDeleteRecord)
	mux.HandleFunc("/api/accounts/{id}/backfill-balances", deps.BalanceHandler.HandleBackfill)
	mux.HandleFunc("/api/accounts/{id}/clean-balances/daily", deps.BalanceHandler.HandleCleanDaily)
	mux.HandleFunc("/api/accounts/{id}/clean-balances/monthly", deps.BalanceHandler.HandleCleanMonthly)

	// Transactions and sync
	mux.HandleFunc("/api/accounts/{id}/transactions", deps.SyncHandler.HandleListTransactions)
	mux.HandleFunc("/api/accounts/{id}/sync-transactions", deps.SyncHandler.HandleSync)
	mux.HandleFunc("/api/accounts/{id}/downloads", deps.SyncHandler.HandleListDownloads)

	// Provider onboarding
	mux.HandleFunc("/api/simplefin/claim", deps.SimpleFINHandler.HandleClaim)

	// Apply global middleware
	handler := middleware.Logging(middleware.Tracing(middleware.CORS(mux)))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
