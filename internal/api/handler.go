// Package api exposes the portfolio read model over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/portfolio"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/summary"
)

// defaultHistoryDays is the history window used when ?days= is absent.
const defaultHistoryDays = 30

// maxHistoryDays caps the history window a single request may ask for.
const maxHistoryDays = 3650

// PortfolioService is the read model the handlers serve. Both the plain and
// the cached portfolio service satisfy it.
type PortfolioService interface {
	Balances(ctx context.Context, asOf domain.Day) ([]portfolio.AccountBalance, error)
	AccountHoldings(ctx context.Context, accountID string) ([]domain.Holding, error)
	AccountValue(ctx context.Context, accountID string) (domain.Valuation, error)
	History(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error)
	DailyValues(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error)
	Summary(ctx context.Context) (summary.Summary, error)
	GenerateSnapshot(ctx context.Context, day domain.Day) (decimal.Decimal, error)
}

// Handler provides the HTTP endpoints of the tracker API.
type Handler struct {
	portfolios PortfolioService
}

// NewHandler creates a new API handler.
func NewHandler(portfolios PortfolioService) *Handler {
	return &Handler{portfolios: portfolios}
}

// GetBalances handles GET /api/v1/balances?asOf=YYYY-MM-DD.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	asOf := domain.Today()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := domain.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid asOf date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	balances, err := h.portfolios.Balances(r.Context(), asOf)
	if err != nil {
		slog.Error("failed to compute balances", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"asOf":     asOf,
		"balances": balanceResponses(balances),
	})
}

// GetAccountHoldings handles GET /api/v1/accounts/{id}/holdings.
func (h *Handler) GetAccountHoldings(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	holdings, err := h.portfolios.AccountHoldings(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, portfolio.ErrNotInvestment):
			writeError(w, http.StatusBadRequest, "account is not an investment account")
		default:
			slog.Error("failed to compute holdings", "account", accountID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if holdings == nil {
		holdings = []domain.Holding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"holdings": holdings})
}

// valueResponse renders a resolved valuation. A valuation without a source
// carries value null, never 0, so clients can show "no data" instead of $0.
type valueResponse struct {
	Value  *string                `json:"value"`
	Source domain.ValuationSource `json:"source"`
}

// GetAccountValue handles GET /api/v1/accounts/{id}/value.
func (h *Handler) GetAccountValue(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	v, err := h.portfolios.AccountValue(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		slog.Error("failed to resolve account value", "account", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := valueResponse{Source: v.Source}
	if v.HasSource() {
		amount := domain.FormatMoney(v.Amount)
		resp.Value = &amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// windowDaysParam parses ?days=N with the shared default and cap. ok is
// false when the value is rejected and an error response has been written.
func windowDaysParam(w http.ResponseWriter, r *http.Request) (days int, ok bool) {
	days = defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid days, expected a non-negative integer")
			return 0, false
		}
		days = min(n, maxHistoryDays)
	}
	return days, true
}

// GetHistory handles GET /api/v1/portfolio/history?days=N.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	days, ok := windowDaysParam(w, r)
	if !ok {
		return
	}

	points, err := h.portfolios.History(r.Context(), days)
	if err != nil {
		slog.Error("failed to compute history", "days", days, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "points": points})
}

// GetDailyValues handles GET /api/v1/portfolio/values?days=N. It serves the
// totals recorded by snapshot runs (cash included), so the series is sparse:
// only days a snapshot actually ran appear.
func (h *Handler) GetDailyValues(w http.ResponseWriter, r *http.Request) {
	days, ok := windowDaysParam(w, r)
	if !ok {
		return
	}

	points, err := h.portfolios.DailyValues(r.Context(), days)
	if err != nil {
		slog.Error("failed to load daily values", "days", days, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if points == nil {
		points = []domain.HistoricalPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "points": points})
}

// GetSummary handles GET /api/v1/portfolio/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.portfolios.Summary(r.Context())
	if err != nil {
		slog.Error("failed to compute summary", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GenerateSnapshot handles POST /api/v1/snapshots/generate.
func (h *Handler) GenerateSnapshot(w http.ResponseWriter, r *http.Request) {
	day := domain.Today()
	total, err := h.portfolios.GenerateSnapshot(r.Context(), day)
	if err != nil {
		slog.Error("failed to generate snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate snapshot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": day, "total": domain.FormatMoney(total)})
}

type balanceResponse struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

func balanceResponses(balances []portfolio.AccountBalance) []balanceResponse {
	result := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		result = append(result, balanceResponse{
			AccountID: b.Account.ID,
			Name:      b.Account.Name,
			Type:      string(b.Account.Type),
			Currency:  b.Account.Currency,
			Balance:   domain.FormatMoney(b.Balance),
		})
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
