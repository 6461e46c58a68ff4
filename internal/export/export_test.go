package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/portfolio"
	"github.com/pennywise-app/pennywise/internal/summary"
)

type fakeSource struct {
	balances []portfolio.AccountBalance
	holdings []domain.Holding
	history  []domain.HistoricalPoint
	err      error
}

func (f *fakeSource) Balances(_ context.Context, _ domain.Day) ([]portfolio.AccountBalance, error) {
	return f.balances, f.err
}

func (f *fakeSource) Holdings(_ context.Context) ([]domain.Holding, error) {
	return f.holdings, f.err
}

func (f *fakeSource) Summary(_ context.Context) (summary.Summary, error) {
	return summary.Summarize(f.holdings), f.err
}

func (f *fakeSource) History(_ context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	return f.history, f.err
}

type recordingWriter struct {
	reports []Report
	err     error
}

func (w *recordingWriter) Write(_ context.Context, report Report) error {
	w.reports = append(w.reports, report)
	return w.err
}

func testSource() *fakeSource {
	return &fakeSource{
		balances: []portfolio.AccountBalance{
			{
				Account: domain.Account{ID: "chk", Name: "Checking", Type: domain.AccountTypeChecking, Currency: "USD"},
				Balance: decimal.NewFromInt(1500),
			},
		},
		holdings: []domain.Holding{
			{
				SecurityID: "sec-voo", AccountID: "inv", Symbol: "VOO", Name: "Vanguard S&P 500",
				AssetClass: "etf", Quantity: decimal.NewFromInt(10),
				AvgPrice: decimal.NewFromInt(100), BookValue: decimal.NewFromInt(1000),
				LastPrice: decimal.NewFromInt(120), MarketValue: decimal.NewFromInt(1200),
				UnrealizedPnL: decimal.NewFromInt(200), UnrealizedPnLPercent: decimal.NewFromInt(20),
			},
		},
		history: []domain.HistoricalPoint{
			{Date: domain.MustParseDay("2026-08-28"), Value: decimal.NewFromInt(1100)},
			{Date: domain.MustParseDay("2026-08-29"), Value: decimal.NewFromInt(1200)},
		},
	}
}

func TestBuildReport(t *testing.T) {
	svc := NewService(testSource(), 30)

	report, err := svc.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Balances) != 1 {
		t.Errorf("balance count = %d, want 1", len(report.Balances))
	}
	if len(report.Holdings) != 1 {
		t.Errorf("holding count = %d, want 1", len(report.Holdings))
	}
	if !report.Summary.TotalMarketValue.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("summary market value = %s, want 1200", report.Summary.TotalMarketValue)
	}
	if len(report.History) != 2 {
		t.Errorf("history count = %d, want 2", len(report.History))
	}
}

func TestExportWritesToAllWriters(t *testing.T) {
	first := &recordingWriter{}
	second := &recordingWriter{}
	svc := NewService(testSource(), 30, first, second)

	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.reports) != 1 || len(second.reports) != 1 {
		t.Errorf("writer calls = %d/%d, want 1/1", len(first.reports), len(second.reports))
	}
}

func TestExportFailingWriterDoesNotStopOthers(t *testing.T) {
	failing := &recordingWriter{err: errors.New("sheet unavailable")}
	healthy := &recordingWriter{}
	svc := NewService(testSource(), 30, failing, healthy)

	err := svc.Export(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error from failing writer")
	}
	if len(healthy.reports) != 1 {
		t.Errorf("healthy writer calls = %d, want 1", len(healthy.reports))
	}
}

func TestExcelWriterProducesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	svc := NewService(testSource(), 30)
	report, err := svc.BuildReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := NewExcelWriter(path).Write(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Balances", "Holdings", "Summary", "History"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("sheet %s missing from workbook", sheet)
		}
	}

	symbol, err := f.GetCellValue("Holdings", "A2")
	if err != nil {
		t.Fatalf("reading holdings cell: %v", err)
	}
	if symbol != "VOO" {
		t.Errorf("holdings A2 = %q, want VOO", symbol)
	}
}

func TestChartWriterSkipsShortSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	report := Report{History: []domain.HistoricalPoint{
		{Date: domain.MustParseDay("2026-08-29"), Value: decimal.NewFromInt(100)},
	}}

	if err := NewChartWriter(path).Write(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChartWriterRendersPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	src := testSource()

	if err := NewChartWriter(path).Write(context.Background(), Report{History: src.history}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	png, err := renderHistoryChart(src.history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(png) == 0 {
		t.Error("rendered chart is empty")
	}
}
