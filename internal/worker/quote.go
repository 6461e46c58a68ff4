// Package worker runs the periodic background jobs: price refresh and daily
// portfolio snapshots.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// PriceRefresher defines the interface for refreshing security prices.
type PriceRefresher interface {
	RefreshPrices(ctx context.Context) error
}

// QuoteWorker periodically pulls fresh closing prices from the feed.
type QuoteWorker struct {
	refresher PriceRefresher
	interval  time.Duration
}

// NewQuoteWorker creates a new QuoteWorker.
func NewQuoteWorker(refresher PriceRefresher, interval time.Duration) *QuoteWorker {
	return &QuoteWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run starts the quote worker loop. It blocks until the context is cancelled.
func (w *QuoteWorker) Run(ctx context.Context) {
	slog.Info("QuoteWorker: starting")

	// Refresh immediately on startup
	if err := w.refresher.RefreshPrices(ctx); err != nil {
		slog.Error("QuoteWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("QuoteWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("QuoteWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.refresher.RefreshPrices(ctx); err != nil {
				slog.Error("QuoteWorker: refresh failed", "error", err)
			} else {
				slog.Info("QuoteWorker: refresh completed")
			}
		}
	}
}
