// Package holdings derives current per-security holdings from position
// snapshots or, when none exist, from a replay of the raw buy/sell history.
package holdings

import (
	"log/slog"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

type groupKey struct {
	securityID string
	accountID  string
}

// Compute produces the current holdings for one account (or for all accounts
// when accountID is empty).
//
// Precedence: when position snapshots exist for the requested scope they are
// authoritative and are mapped directly onto holdings; the transaction replay
// runs only as a fallback, never merged with snapshot data. The replay
// processes buys and sells in ascending (date, id) order under the
// average-cost method and drops fully liquidated positions.
func Compute(
	accountID string,
	positions []domain.Position,
	txs []domain.InvestmentTransaction,
	securities []domain.Security,
	accounts []domain.Account,
) []domain.Holding {
	securitiesByID := domain.SecuritiesByID(securities)

	scoped := lo.Filter(positions, func(p domain.Position, _ int) bool {
		return accountID == "" || p.AccountID == accountID
	})
	if len(scoped) > 0 {
		return fromPositions(scoped, securitiesByID)
	}

	return fromTransactions(accountID, txs, securitiesByID, accounts)
}

// fromPositions maps snapshot rows directly onto holdings, enriched with
// security reference data.
func fromPositions(positions []domain.Position, securitiesByID map[string]domain.Security) []domain.Holding {
	result := make([]domain.Holding, 0, len(positions))
	for _, p := range positions {
		qty := domain.SafeParse(p.OpenQuantity)
		if !qty.IsPositive() {
			continue
		}

		avg := domain.SafeParse(p.AverageEntryPrice)
		book := domain.SafeParse(p.TotalCost)
		if book.IsZero() {
			book = qty.Mul(avg)
		}
		last := domain.SafeParse(p.CurrentPrice)
		market := domain.SafeParse(p.CurrentMarketValue)
		if market.IsZero() && !last.IsZero() {
			market = qty.Mul(last)
		}
		pnl := domain.SafeParse(p.OpenPnL)
		if p.OpenPnL == "" {
			pnl = market.Sub(book)
		}

		h := domain.Holding{
			SecurityID:    p.SecurityID,
			AccountID:     p.AccountID,
			Quantity:      qty,
			AvgPrice:      avg,
			BookValue:     book,
			LastPrice:     last,
			MarketValue:   market,
			UnrealizedPnL: pnl,
		}
		if book.IsPositive() {
			h.UnrealizedPnLPercent = pnl.Div(book).Mul(decimal.NewFromInt(100))
		}
		enrich(&h, securitiesByID)
		result = append(result, h)
	}

	sortHoldings(result)
	return result
}

// fromTransactions rebuilds holdings from scratch by replaying buys and sells
// per security+account group.
func fromTransactions(
	accountID string,
	txs []domain.InvestmentTransaction,
	securitiesByID map[string]domain.Security,
	accounts []domain.Account,
) []domain.Holding {
	knownAccounts := domain.AccountsByID(accounts)

	relevant := lo.Filter(txs, func(tx domain.InvestmentTransaction, _ int) bool {
		if accountID != "" && tx.AccountID != accountID {
			return false
		}
		return tx.AffectsQuantity() && tx.SecurityID != nil
	})

	// Chronological order is mandatory here: the average cost after a sell
	// depends on every event before it. Re-sort regardless of input order.
	sort.SliceStable(relevant, func(i, j int) bool {
		if !relevant[i].Date.Equal(relevant[j].Date) {
			return relevant[i].Date.Before(relevant[j].Date)
		}
		return relevant[i].ID < relevant[j].ID
	})

	books := make(map[groupKey]*CostBook)
	lastPrices := make(map[groupKey]decimal.Decimal)
	order := make([]groupKey, 0)

	for _, tx := range relevant {
		if len(knownAccounts) > 0 {
			if _, ok := knownAccounts[tx.AccountID]; !ok {
				slog.Warn("holdings: transaction references unknown account, skipping",
					"transaction", tx.ID, "account", tx.AccountID)
				continue
			}
		}

		qty := domain.SafeParsePtr(tx.Quantity)
		if !qty.IsPositive() {
			slog.Warn("holdings: buy/sell without positive quantity, skipping",
				"transaction", tx.ID, "type", tx.Type)
			continue
		}
		price := domain.SafeParsePtr(tx.Price)

		key := groupKey{securityID: *tx.SecurityID, accountID: tx.AccountID}
		book, ok := books[key]
		if !ok {
			book = &CostBook{}
			books[key] = book
			order = append(order, key)
		}

		switch tx.Type {
		case domain.InvestmentBuy:
			book.ApplyBuy(qty, price)
		case domain.InvestmentSell:
			book.ApplySell(qty)
		}

		// Best market-value approximation without a live feed: the price of
		// the most recent transaction that carried one.
		if price.IsPositive() {
			lastPrices[key] = price
		}
	}

	result := make([]domain.Holding, 0, len(books))
	for _, key := range order {
		book := books[key]
		if !book.Quantity.IsPositive() {
			continue
		}

		market := book.Quantity.Mul(lastPrices[key])
		pnl := market.Sub(book.BookValue)

		h := domain.Holding{
			SecurityID:    key.securityID,
			AccountID:     key.accountID,
			Quantity:      book.Quantity,
			AvgPrice:      book.AvgPrice,
			BookValue:     book.BookValue,
			LastPrice:     lastPrices[key],
			MarketValue:   market,
			UnrealizedPnL: pnl,
		}
		if book.BookValue.IsPositive() {
			h.UnrealizedPnLPercent = pnl.Div(book.BookValue).Mul(decimal.NewFromInt(100))
		}
		enrich(&h, securitiesByID)
		result = append(result, h)
	}

	sortHoldings(result)
	return result
}

// enrich attaches security reference data, degrading to a placeholder name
// when the security is missing rather than erroring.
func enrich(h *domain.Holding, securitiesByID map[string]domain.Security) {
	sec, ok := securitiesByID[h.SecurityID]
	if !ok {
		h.Symbol = h.SecurityID
		h.Name = domain.UnknownSecurityName
		return
	}
	h.Symbol = sec.Symbol
	h.Name = sec.Name
	h.AssetClass = sec.AssetClass
	h.Sector = sec.Sector
}

// TotalMarketValue sums the market value of a set of holdings.
func TotalMarketValue(hs []domain.Holding) decimal.Decimal {
	return lo.Reduce(hs, func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
		return acc.Add(h.MarketValue)
	}, decimal.Zero)
}

func sortHoldings(hs []domain.Holding) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Symbol != hs[j].Symbol {
			return hs[i].Symbol < hs[j].Symbol
		}
		return hs[i].AccountID < hs[j].AccountID
	})
}
