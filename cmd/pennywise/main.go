package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/pennywise-app/pennywise/internal/api"
	"github.com/pennywise-app/pennywise/internal/config"
	"github.com/pennywise-app/pennywise/internal/database"
	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/export"
	"github.com/pennywise-app/pennywise/internal/portfolio"
	"github.com/pennywise-app/pennywise/internal/quotes"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "pennywise",
		Usage: "household finance tracker backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the API server and background workers",
				Action: runServe,
			},
			{
				Name:  "snapshot",
				Usage: "generate position snapshots and today's portfolio value, then exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "snapshot date (YYYY-MM-DD), defaults to today",
					},
				},
				Action: runSnapshot,
			},
			{
				Name:  "export",
				Usage: "write a one-shot portfolio report",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "xlsx", Usage: "write the xlsx workbook"},
					&cli.BoolFlag{Name: "chart", Usage: "write the history PNG chart"},
					&cli.BoolFlag{Name: "sheets", Usage: "write to the configured Google Sheets spreadsheet"},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap connects to the database, applies migrations and wires the
// portfolio service over the pgx repositories.
func bootstrap(ctx context.Context, cfg config.Config) (*pgxpool.Pool, *portfolio.Service, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	svc := portfolio.NewService(
		store.NewPgAccountRepository(pool),
		store.NewPgLedgerRepository(pool),
		store.NewPgInvestmentRepository(pool),
		store.NewPgSecurityRepository(pool),
		store.NewPgPositionRepository(pool),
		store.NewPgValuationRepository(pool),
	)
	return pool, svc, nil
}

// buildWriters assembles the report writers enabled by flags and config.
func buildWriters(ctx context.Context, cfg config.Config, xlsx, chart, sheets bool) ([]export.ReportWriter, error) {
	var writers []export.ReportWriter
	if xlsx {
		writers = append(writers, export.NewExcelWriter(cfg.ExportXLSXPath))
	}
	if chart {
		writers = append(writers, export.NewChartWriter(cfg.ExportChartPath))
	}
	if sheets {
		if cfg.SheetsSpreadsheetID == "" || cfg.SheetsCredentialsJSON == "" {
			return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID and SHEETS_CREDENTIALS_JSON are required for sheets export")
		}
		sw, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sw)
	}
	return writers, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	pool, svc, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	cached := portfolio.NewCachedService(svc, cfg.CacheTTL)

	// Quote worker: periodic price refresh from the feed
	feed := quotes.NewClient(cfg.PriceFeedURL, cfg.PriceFeedDelay, cfg.PriceFeedRetryMax)
	quoteSvc := quotes.NewService(feed, store.NewPgSecurityRepository(pool))
	go worker.NewQuoteWorker(quoteSvc, cfg.QuoteWorkerInterval).Run(ctx)

	// Snapshot worker: daily valuation + position regeneration, with an
	// export hook when a Sheets destination is configured
	var hook worker.AfterSnapshotHook
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsJSON != "" {
		writers, err := buildWriters(ctx, cfg, false, false, true)
		if err != nil {
			return err
		}
		hook = export.NewService(cached, cfg.HistoryWindowDays, writers...)
	}
	go worker.NewSnapshotWorker(cached, cfg.SnapshotWorkerInterval, hook).Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, cached, cfg.AdminAPIKey)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func runSnapshot(c *cli.Context) error {
	cfg := config.Load()
	pool, svc, err := bootstrap(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	day := domain.Today()
	if raw := c.String("date"); raw != "" {
		day, err = domain.ParseDay(raw)
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}
	}

	total, err := svc.GenerateSnapshot(c.Context, day)
	if err != nil {
		return err
	}
	slog.Info("snapshot generated", "date", day.String(), "total", total.String())
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()
	pool, svc, err := bootstrap(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	xlsx, chart, sheets := c.Bool("xlsx"), c.Bool("chart"), c.Bool("sheets")
	if !xlsx && !chart && !sheets {
		xlsx = true
	}

	writers, err := buildWriters(c.Context, cfg, xlsx, chart, sheets)
	if err != nil {
		return err
	}

	if err := export.NewService(svc, cfg.HistoryWindowDays, writers...).Export(c.Context); err != nil {
		return err
	}
	slog.Info("export complete")
	return nil
}
