package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/portfolio"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/summary"
)

type stubService struct {
	balances    []portfolio.AccountBalance
	holdings    map[string][]domain.Holding
	values      map[string]domain.Valuation
	points      []domain.HistoricalPoint
	dailyPoints []domain.HistoricalPoint
	summary     summary.Summary
	lastAsOf    domain.Day
	lastDays    int
	generated   bool
}

func (s *stubService) Balances(_ context.Context, asOf domain.Day) ([]portfolio.AccountBalance, error) {
	s.lastAsOf = asOf
	return s.balances, nil
}

func (s *stubService) AccountHoldings(_ context.Context, accountID string) ([]domain.Holding, error) {
	hs, ok := s.holdings[accountID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return hs, nil
}

func (s *stubService) AccountValue(_ context.Context, accountID string) (domain.Valuation, error) {
	v, ok := s.values[accountID]
	if !ok {
		return domain.Valuation{}, store.ErrNotFound
	}
	return v, nil
}

func (s *stubService) History(_ context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	s.lastDays = windowDays
	return s.points, nil
}

func (s *stubService) DailyValues(_ context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	s.lastDays = windowDays
	return s.dailyPoints, nil
}

func (s *stubService) Summary(_ context.Context) (summary.Summary, error) {
	return s.summary, nil
}

func (s *stubService) GenerateSnapshot(_ context.Context, _ domain.Day) (decimal.Decimal, error) {
	s.generated = true
	return decimal.NewFromInt(5000), nil
}

func serveRequest(t *testing.T, svc PortfolioService, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	server := NewServer("0", svc, "")
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	return w
}

func TestGetBalancesDefaultsToToday(t *testing.T) {
	stub := &stubService{
		balances: []portfolio.AccountBalance{
			{
				Account: domain.Account{ID: "chk", Name: "Checking", Type: domain.AccountTypeChecking, Currency: "USD"},
				Balance: decimal.RequireFromString("1250.50"),
			},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/balances")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !stub.lastAsOf.Equal(domain.Today()) {
		t.Errorf("asOf = %s, want today", stub.lastAsOf)
	}

	var resp struct {
		Balances []balanceResponse `json:"balances"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if len(resp.Balances) != 1 {
		t.Fatalf("balance count = %d, want 1", len(resp.Balances))
	}
	if resp.Balances[0].Balance != "1250.5" {
		t.Errorf("balance = %q, want 1250.5", resp.Balances[0].Balance)
	}
}

func TestGetBalancesWithAsOf(t *testing.T) {
	stub := &stubService{}
	w := serveRequest(t, stub, http.MethodGet, "/api/v1/balances?asOf=2026-03-15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stub.lastAsOf.String() != "2026-03-15" {
		t.Errorf("asOf = %s, want 2026-03-15", stub.lastAsOf)
	}
}

func TestGetBalancesBadAsOf(t *testing.T) {
	w := serveRequest(t, &stubService{}, http.MethodGet, "/api/v1/balances?asOf=15.03.2026")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetAccountHoldings(t *testing.T) {
	stub := &stubService{
		holdings: map[string][]domain.Holding{
			"inv": {{SecurityID: "sec-voo", Symbol: "VOO", Quantity: decimal.NewFromInt(10)}},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/accounts/inv/holdings")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Holdings []domain.Holding `json:"holdings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if len(resp.Holdings) != 1 || resp.Holdings[0].Symbol != "VOO" {
		t.Errorf("holdings = %+v, want single VOO row", resp.Holdings)
	}
}

func TestGetAccountHoldingsNotFound(t *testing.T) {
	w := serveRequest(t, &stubService{}, http.MethodGet, "/api/v1/accounts/ghost/holdings")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetAccountValueWithSource(t *testing.T) {
	stub := &stubService{
		values: map[string]domain.Valuation{
			"inv": {Amount: decimal.RequireFromString("42500.00"), Source: domain.ValuationSourceBrokerageEquity},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/accounts/inv/value")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp valueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Value == nil || *resp.Value != "42500" {
		t.Errorf("value = %v, want 42500", resp.Value)
	}
	if resp.Source != domain.ValuationSourceBrokerageEquity {
		t.Errorf("source = %q, want brokerage_equity", resp.Source)
	}
}

func TestGetAccountValueNoSourceRendersNull(t *testing.T) {
	stub := &stubService{
		values: map[string]domain.Valuation{
			"inv": {Source: domain.ValuationSourceNone},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/accounts/inv/value")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp["value"] != nil {
		t.Errorf("value = %v, want null", resp["value"])
	}
	if resp["source"] != "none" {
		t.Errorf("source = %v, want none", resp["source"])
	}
}

func TestGetHistoryDefaultsAndCaps(t *testing.T) {
	stub := &stubService{}

	if w := serveRequest(t, stub, http.MethodGet, "/api/v1/portfolio/history"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stub.lastDays != defaultHistoryDays {
		t.Errorf("days = %d, want default %d", stub.lastDays, defaultHistoryDays)
	}

	if w := serveRequest(t, stub, http.MethodGet, "/api/v1/portfolio/history?days=999999"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stub.lastDays != maxHistoryDays {
		t.Errorf("days = %d, want cap %d", stub.lastDays, maxHistoryDays)
	}
}

func TestGetBalancesRoundsToCents(t *testing.T) {
	stub := &stubService{
		balances: []portfolio.AccountBalance{
			{
				Account: domain.Account{ID: "chk", Name: "Checking", Type: domain.AccountTypeChecking, Currency: "USD"},
				Balance: decimal.RequireFromString("1250.505"),
			},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/balances")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Balances []balanceResponse `json:"balances"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Balances[0].Balance != "1250.51" {
		t.Errorf("balance = %q, want 1250.51", resp.Balances[0].Balance)
	}
}

func TestGetDailyValues(t *testing.T) {
	stub := &stubService{
		dailyPoints: []domain.HistoricalPoint{
			{Date: domain.MustParseDay("2026-08-29"), Value: decimal.NewFromInt(2500)},
		},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/portfolio/values?days=7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stub.lastDays != 7 {
		t.Errorf("days = %d, want 7", stub.lastDays)
	}

	var resp struct {
		Days   int                      `json:"days"`
		Points []domain.HistoricalPoint `json:"points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Days != 7 {
		t.Errorf("days = %d, want 7", resp.Days)
	}
	if len(resp.Points) != 1 || !resp.Points[0].Value.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("points = %+v, want single 2500 point", resp.Points)
	}
}

func TestGetDailyValuesEmptyRendersArray(t *testing.T) {
	w := serveRequest(t, &stubService{}, http.MethodGet, "/api/v1/portfolio/values")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"points":[]`) {
		t.Errorf("body = %s, want empty points array", body)
	}
}

func TestGetHistoryRejectsNegativeDays(t *testing.T) {
	w := serveRequest(t, &stubService{}, http.MethodGet, "/api/v1/portfolio/history?days=-1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetSummary(t *testing.T) {
	stub := &stubService{
		summary: summary.Summary{HoldingCount: 3, TotalMarketValue: decimal.NewFromInt(9000)},
	}

	w := serveRequest(t, stub, http.MethodGet, "/api/v1/portfolio/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp summary.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.HoldingCount != 3 {
		t.Errorf("holding count = %d, want 3", resp.HoldingCount)
	}
}

func TestGenerateSnapshotOpenWhenNoKey(t *testing.T) {
	stub := &stubService{}
	w := serveRequest(t, stub, http.MethodPost, "/api/v1/snapshots/generate")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !stub.generated {
		t.Error("snapshot was not generated")
	}
}

func TestGenerateSnapshotRequiresKey(t *testing.T) {
	stub := &stubService{}
	server := NewServer("0", stub, "hunter2")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots/generate", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if stub.generated {
		t.Error("snapshot generated without credentials")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/snapshots/generate", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid key", w.Code)
	}
}
