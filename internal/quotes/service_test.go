package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pennywise-app/pennywise/internal/domain"
)

type fakeSecurityStore struct {
	securities []domain.Security
	saved      map[string]string // securityID -> price
}

func (f *fakeSecurityStore) ListSecurities(_ context.Context) ([]domain.Security, error) {
	return f.securities, nil
}

func (f *fakeSecurityStore) SavePrice(_ context.Context, securityID string, _ domain.Day, price string) error {
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[securityID] = price
	return nil
}

func TestRefreshPricesStoresKnownSymbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quotes": [
				{"symbol": "VOO", "date": "2026-08-28", "close": 412.5},
				{"symbol": "DELISTED", "date": "2026-08-28", "close": 1}
			]
		}`))
	}))
	defer server.Close()

	store := &fakeSecurityStore{
		securities: []domain.Security{
			{ID: "sec-voo", Symbol: "VOO", Name: "Vanguard S&P 500"},
		},
	}
	svc := NewService(NewClient(server.URL, 0, 1), store)

	if err := svc.RefreshPrices(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("stored price count = %d, want 1", len(store.saved))
	}
	if store.saved["sec-voo"] != "412.5" {
		t.Errorf("stored price = %q, want 412.5", store.saved["sec-voo"])
	}
}

func TestRefreshPricesSkipsUnusableCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quotes": [
				{"symbol": "VOO", "date": "2026-08-28", "close": 0},
				{"symbol": "AAPL", "date": "2026-08-28", "close": -5}
			]
		}`))
	}))
	defer server.Close()

	store := &fakeSecurityStore{
		securities: []domain.Security{
			{ID: "sec-voo", Symbol: "VOO"},
			{ID: "sec-aapl", Symbol: "AAPL"},
		},
	}
	svc := NewService(NewClient(server.URL, 0, 1), store)

	if err := svc.RefreshPrices(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("stored price count = %d, want 0", len(store.saved))
	}
}

func TestRefreshPricesNoSecuritiesNoFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("feed should not be called when no securities exist")
	}))
	defer server.Close()

	svc := NewService(NewClient(server.URL, 0, 1), &fakeSecurityStore{})
	if err := svc.RefreshPrices(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
