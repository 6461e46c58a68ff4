// Package export assembles portfolio reports and writes them to external
// destinations: an xlsx workbook, a Google Sheets spreadsheet or a PNG chart.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/portfolio"
	"github.com/pennywise-app/pennywise/internal/summary"
)

// Report is one fully assembled portfolio report.
type Report struct {
	GeneratedAt time.Time
	Balances    []portfolio.AccountBalance
	Holdings    []domain.Holding
	Summary     summary.Summary
	History     []domain.HistoricalPoint
}

// ReportSource is the read surface the report builder needs.
type ReportSource interface {
	Balances(ctx context.Context, asOf domain.Day) ([]portfolio.AccountBalance, error)
	Holdings(ctx context.Context) ([]domain.Holding, error)
	Summary(ctx context.Context) (summary.Summary, error)
	History(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error)
}

// ReportWriter writes an assembled report to one destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Service builds reports and delegates writing to the configured writers.
type Service struct {
	source     ReportSource
	windowDays int
	writers    []ReportWriter
}

// NewService creates an export service. windowDays controls the history
// window included in reports.
func NewService(source ReportSource, windowDays int, writers ...ReportWriter) *Service {
	return &Service{
		source:     source,
		windowDays: windowDays,
		writers:    writers,
	}
}

// BuildReport assembles a report from the current portfolio state.
func (s *Service) BuildReport(ctx context.Context) (Report, error) {
	report := Report{GeneratedAt: time.Now().UTC()}

	balances, err := s.source.Balances(ctx, domain.Today())
	if err != nil {
		return Report{}, fmt.Errorf("building report balances: %w", err)
	}
	report.Balances = balances

	holdings, err := s.source.Holdings(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("building report holdings: %w", err)
	}
	report.Holdings = holdings

	sum, err := s.source.Summary(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("building report summary: %w", err)
	}
	report.Summary = sum

	history, err := s.source.History(ctx, s.windowDays)
	if err != nil {
		return Report{}, fmt.Errorf("building report history: %w", err)
	}
	report.History = history

	return report, nil
}

// Export builds one report and writes it to every configured writer. A
// failing writer does not stop the others. Implements
// worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context) error {
	report, err := s.BuildReport(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			slog.Error("export: writer failed", "writer", fmt.Sprintf("%T", w), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// balanceHeader and the row builders below are shared by the xlsx and Sheets
// writers so both destinations carry identical tables.

func balanceHeader() []any {
	return []any{"Account", "Type", "Currency", "Balance"}
}

func balanceRow(b portfolio.AccountBalance) []any {
	return []any{b.Account.Name, string(b.Account.Type), b.Account.Currency, toFloat(b.Balance)}
}

func holdingHeader() []any {
	return []any{
		"Symbol", "Name", "Account", "Asset Class", "Sector",
		"Quantity", "Avg Price", "Book Value", "Last Price",
		"Market Value", "Unrealized P&L", "Unrealized P&L %",
	}
}

func holdingRow(h domain.Holding) []any {
	return []any{
		h.Symbol, h.Name, h.AccountID, h.AssetClass, h.Sector,
		toFloat(h.Quantity), toFloat(h.AvgPrice), toFloat(h.BookValue), toFloat(h.LastPrice),
		toFloat(h.MarketValue), toFloat(h.UnrealizedPnL), toFloat(h.UnrealizedPnLPercent),
	}
}

func historyHeader() []any {
	return []any{"Date", "Value"}
}

func historyRow(p domain.HistoricalPoint) []any {
	return []any{p.Date.String(), toFloat(p.Value)}
}

func summaryRows(s summary.Summary) [][]any {
	rows := [][]any{
		{"Holdings", float64(s.HoldingCount)},
		{"Total Market Value", toFloat(s.TotalMarketValue)},
		{"Total Book Value", toFloat(s.TotalBookValue)},
		{"Unrealized P&L", toFloat(s.UnrealizedPnL)},
		{"Unrealized P&L %", toFloat(s.UnrealizedPnLPercent)},
	}
	for _, a := range s.ByAssetClass {
		rows = append(rows, []any{"Allocation: " + a.Bucket, toFloat(a.Value)})
	}
	return rows
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
