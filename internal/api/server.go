package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, portfolios PortfolioService, adminAPIKey string) *http.Server {
	handler := NewHandler(portfolios)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/balances", handler.GetBalances)
		r.Get("/accounts/{id}/holdings", handler.GetAccountHoldings)
		r.Get("/accounts/{id}/value", handler.GetAccountValue)
		r.Get("/portfolio/history", handler.GetHistory)
		r.Get("/portfolio/values", handler.GetDailyValues)
		r.Get("/portfolio/summary", handler.GetSummary)

		generate := http.HandlerFunc(handler.GenerateSnapshot)
		if adminAPIKey != "" {
			r.Method(http.MethodPost, "/snapshots/generate", requireAuth(adminAPIKey, generate))
		} else {
			r.Method(http.MethodPost, "/snapshots/generate", generate)
		}
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
