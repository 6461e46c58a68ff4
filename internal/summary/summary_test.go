package summary

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

func h(symbol, class, sector, market, book string) domain.Holding {
	return domain.Holding{
		Symbol:      symbol,
		AssetClass:  class,
		Sector:      sector,
		MarketValue: decimal.RequireFromString(market),
		BookValue:   decimal.RequireFromString(book),
	}
}

func TestSummarizeTotals(t *testing.T) {
	s := Summarize([]domain.Holding{
		h("AAPL", "equity", "Technology", "6000", "5000"),
		h("VOO", "etf", "Diversified", "4000", "3000"),
	})

	if s.HoldingCount != 2 {
		t.Errorf("holdingCount = %d, want 2", s.HoldingCount)
	}
	if !s.TotalMarketValue.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("totalMarketValue = %v, want 10000", s.TotalMarketValue)
	}
	if !s.TotalBookValue.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("totalBookValue = %v, want 8000", s.TotalBookValue)
	}
	if !s.UnrealizedPnL.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("unrealizedPnl = %v, want 2000", s.UnrealizedPnL)
	}
	if !s.UnrealizedPnLPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("unrealizedPnlPercent = %v, want 25", s.UnrealizedPnLPercent)
	}
}

func TestAllocationBucketsSortedByValue(t *testing.T) {
	s := Summarize([]domain.Holding{
		h("A", "equity", "Technology", "1000", "900"),
		h("B", "etf", "Diversified", "7000", "6000"),
		h("C", "equity", "Energy", "2000", "1500"),
	})

	if len(s.ByAssetClass) != 2 {
		t.Fatalf("asset class buckets = %d, want 2", len(s.ByAssetClass))
	}
	if s.ByAssetClass[0].Bucket != "etf" {
		t.Errorf("largest bucket = %s, want etf", s.ByAssetClass[0].Bucket)
	}
	if !s.ByAssetClass[1].Value.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("equity bucket = %v, want 3000", s.ByAssetClass[1].Value)
	}
	if !s.ByAssetClass[0].Percent.Equal(decimal.NewFromInt(70)) {
		t.Errorf("etf percent = %v, want 70", s.ByAssetClass[0].Percent)
	}
}

func TestMissingSectorBucketedAsOther(t *testing.T) {
	s := Summarize([]domain.Holding{
		h("X", "crypto", "", "500", "400"),
	})

	if len(s.BySector) != 1 || s.BySector[0].Bucket != "other" {
		t.Fatalf("sector buckets = %+v, want single \"other\"", s.BySector)
	}
}

func TestEmptyHoldings(t *testing.T) {
	s := Summarize(nil)
	if s.HoldingCount != 0 || !s.TotalMarketValue.IsZero() || !s.UnrealizedPnLPercent.IsZero() {
		t.Errorf("empty summary = %+v, want zeros", s)
	}
}
