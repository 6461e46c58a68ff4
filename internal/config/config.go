package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL       string
	HTTPPort          string
	AdminAPIKey       string
	CacheTTL          time.Duration
	PriceFeedURL      string
	PriceFeedDelay    time.Duration
	PriceFeedRetryMax int

	QuoteWorkerInterval    time.Duration
	SnapshotWorkerInterval time.Duration
	HistoryWindowDays      int

	ExportXLSXPath        string
	ExportChartPath       string
	SheetsSpreadsheetID   string
	SheetsCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:       envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:          envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:       envOrDefault("ADMIN_API_KEY", ""),
		CacheTTL:          envOrDefaultDuration("CACHE_TTL", 30*time.Second),
		PriceFeedURL:      envOrDefault("PRICE_FEED_URL", "https://eodfeed.example.com/api/v1"),
		PriceFeedDelay:    envOrDefaultDuration("PRICE_FEED_DELAY", 6*time.Second),
		PriceFeedRetryMax: envOrDefaultInt("PRICE_FEED_RETRY_MAX", 5),

		QuoteWorkerInterval:    envOrDefaultDuration("QUOTE_WORKER_INTERVAL", 1*time.Hour),
		SnapshotWorkerInterval: envOrDefaultDuration("SNAPSHOT_WORKER_INTERVAL", 24*time.Hour),
		HistoryWindowDays:      envOrDefaultInt("HISTORY_WINDOW_DAYS", 90),

		ExportXLSXPath:        envOrDefault("EXPORT_XLSX_PATH", "pennywise-report.xlsx"),
		ExportChartPath:       envOrDefault("EXPORT_CHART_PATH", "pennywise-history.png"),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsJSON: envOrDefault("SHEETS_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
