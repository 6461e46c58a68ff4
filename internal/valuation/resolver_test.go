package valuation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

func strPtr(s string) *string { return &s }

func holdingsWorth(values ...string) []domain.Holding {
	hs := make([]domain.Holding, 0, len(values))
	for _, v := range values {
		hs = append(hs, domain.Holding{MarketValue: decimal.RequireFromString(v)})
	}
	return hs
}

func TestBrokerageEquityWinsOverEverything(t *testing.T) {
	snapshot := &domain.BrokerageSnapshot{
		TotalEquity: strPtr("50000"),
		MarketValue: strPtr("1"),
		Cash:        strPtr("1"),
	}

	got := ResolveAccountValue(snapshot, strPtr("99999"), holdingsWorth("123"))
	if got.Source != domain.ValuationSourceBrokerageEquity {
		t.Fatalf("source = %s, want brokerage_equity", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("amount = %v, want the brokerage equity, not an average", got.Amount)
	}
}

func TestComponentsWhenEquityMissing(t *testing.T) {
	snapshot := &domain.BrokerageSnapshot{
		MarketValue: strPtr("40000"),
		Cash:        strPtr("2500"),
	}

	got := ResolveAccountValue(snapshot, strPtr("99999"), nil)
	if got.Source != domain.ValuationSourceBrokerageComponents {
		t.Fatalf("source = %s, want brokerage_components", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(42500)) {
		t.Errorf("amount = %v, want 42500", got.Amount)
	}
}

func TestManualWhenNoSnapshot(t *testing.T) {
	got := ResolveAccountValue(nil, strPtr("12345.67"), holdingsWorth("1"))
	if got.Source != domain.ValuationSourceManual {
		t.Fatalf("source = %s, want manual", got.Source)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12345.67")) {
		t.Errorf("amount = %v, want 12345.67", got.Amount)
	}
}

func TestHoldingsSumAsLastResort(t *testing.T) {
	got := ResolveAccountValue(nil, nil, holdingsWorth("100.50", "200.25"))
	if got.Source != domain.ValuationSourceHoldings {
		t.Fatalf("source = %s, want holdings", got.Source)
	}
	if !got.Amount.Equal(decimal.RequireFromString("300.75")) {
		t.Errorf("amount = %v, want 300.75", got.Amount)
	}
}

func TestNoSourceIsTaggedNotZero(t *testing.T) {
	got := ResolveAccountValue(nil, nil, nil)
	if got.Source != domain.ValuationSourceNone {
		t.Fatalf("source = %s, want none", got.Source)
	}
	if got.HasSource() {
		t.Error("HasSource should be false when precedence is exhausted")
	}
	if !got.Amount.IsZero() {
		t.Errorf("amount = %v, want 0", got.Amount)
	}
}

func TestEmptySnapshotIsNotASource(t *testing.T) {
	got := ResolveAccountValue(&domain.BrokerageSnapshot{}, strPtr("800"), nil)
	if got.Source != domain.ValuationSourceManual {
		t.Fatalf("source = %s, want manual (empty snapshot must fall through)", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("amount = %v, want 800", got.Amount)
	}
}

func TestZeroHoldingsSumIsDistinctFromNoSource(t *testing.T) {
	got := ResolveAccountValue(nil, nil, holdingsWorth("0"))
	if got.Source != domain.ValuationSourceHoldings {
		t.Fatalf("source = %s, want holdings", got.Source)
	}
	if !got.HasSource() {
		t.Error("a legitimately-zero portfolio still has a source")
	}
}
