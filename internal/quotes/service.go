package quotes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// SecurityStore is the persistence surface the quote refresher needs.
type SecurityStore interface {
	ListSecurities(ctx context.Context) ([]domain.Security, error)
	SavePrice(ctx context.Context, securityID string, day domain.Day, price string) error
}

// Service refreshes stored security prices from the external feed.
type Service struct {
	client *Client
	store  SecurityStore
}

// NewService creates a new quote refresh service.
func NewService(client *Client, store SecurityStore) *Service {
	return &Service{client: client, store: store}
}

// RefreshPrices fetches the latest close for every known security and upserts
// it into the price history. Quotes with unusable payloads are logged and
// skipped; a store failure aborts the run.
func (s *Service) RefreshPrices(ctx context.Context) error {
	securities, err := s.store.ListSecurities(ctx)
	if err != nil {
		return fmt.Errorf("loading securities: %w", err)
	}
	if len(securities) == 0 {
		return nil
	}

	bySymbol := lo.KeyBy(securities, func(sec domain.Security) string { return sec.Symbol })
	symbols := lo.Keys(bySymbol)

	fetched, err := s.client.FetchLatestCloses(ctx, symbols)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	stored := 0
	for _, quote := range fetched {
		sec, ok := bySymbol[quote.Symbol]
		if !ok {
			slog.Warn("quotes: feed returned unknown symbol, skipping", "symbol", quote.Symbol)
			continue
		}

		price, err := domain.ParseAmount(quote.Close.String())
		if err != nil || !price.IsPositive() {
			slog.Warn("quotes: unusable close price, skipping",
				"symbol", quote.Symbol, "close", quote.Close.String())
			continue
		}

		if err := s.store.SavePrice(ctx, sec.ID, quote.Date, price.String()); err != nil {
			return fmt.Errorf("storing price for %s: %w", quote.Symbol, err)
		}
		stored++
	}

	slog.Info("quotes refreshed", "requested", len(symbols), "stored", stored)
	return nil
}
