// Package history reconstructs a day-by-day series of total portfolio value.
package history

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/holdings"
)

type groupKey struct {
	securityID string
	accountID  string
}

type groupState struct {
	book holdings.CostBook
}

// ComputeSeries reconstructs the portfolio value for every day of the window
// ending at today, returning exactly windowDays+1 points in ascending date
// order.
//
// Seeding: the working holdings map starts from currentHoldings, is unwound
// back to the window-start state by reversing every in-window buy/sell in
// descending date order, and is then replayed forward one day at a time.
// Unwinding a sell that had fully liquidated a position rebuilds the lost
// book value from the sell's own price; this approximation is inherent to
// seeding from current holdings rather than from all-time history.
//
// Pricing per day prefers an exact historical price and degrades to the
// position's average cost — never a gap, never an error. Values are floored
// at zero, and the final (today) point is pinned to currentTotal, the live
// authoritative valuation, so the chart always agrees with the headline
// number. When no transactions exist for the window at all the series is an
// explicit flat line at currentTotal extended backward.
//
// A negative windowDays is a contract violation and is the only rejected
// call.
func ComputeSeries(
	today domain.Day,
	windowDays int,
	txs []domain.InvestmentTransaction,
	prices []domain.SecurityPrice,
	currentHoldings []domain.Holding,
	currentTotal decimal.Decimal,
) ([]domain.HistoricalPoint, error) {
	if windowDays < 0 {
		return nil, fmt.Errorf("windowDays must be >= 0, got %d", windowDays)
	}

	windowStart := today.AddDays(-windowDays)

	replayable := collectReplayable(txs, windowStart, today)
	if len(replayable) == 0 {
		return flatSeries(windowStart, today, currentTotal), nil
	}

	states := seedFromHoldings(currentHoldings)
	unwind(states, replayable)

	priceIndex := indexPrices(prices)
	byDay := lo.GroupBy(replayable, func(tx domain.InvestmentTransaction) domain.Day { return tx.Date })

	series := make([]domain.HistoricalPoint, 0, windowDays+1)
	for day := windowStart; !day.After(today); day = day.AddDays(1) {
		for _, tx := range byDay[day] {
			apply(states, tx)
		}

		var value decimal.Decimal
		if day.Equal(today) {
			value = currentTotal
		} else {
			value = valueOn(states, priceIndex, day)
		}
		series = append(series, domain.HistoricalPoint{
			Date:  day,
			Value: decimal.Max(decimal.Zero, value),
		})
	}

	return series, nil
}

// collectReplayable filters to in-window buys/sells with a security and a
// positive quantity, sorted ascending by (date, id). Rows dated after today
// are ignored entirely.
func collectReplayable(txs []domain.InvestmentTransaction, windowStart, today domain.Day) []domain.InvestmentTransaction {
	relevant := lo.Filter(txs, func(tx domain.InvestmentTransaction, _ int) bool {
		if !tx.AffectsQuantity() || tx.SecurityID == nil {
			return false
		}
		if tx.Date.Before(windowStart) || tx.Date.After(today) {
			return false
		}
		if !domain.SafeParsePtr(tx.Quantity).IsPositive() {
			slog.Warn("history: buy/sell without positive quantity, skipping", "transaction", tx.ID)
			return false
		}
		return true
	})

	sort.SliceStable(relevant, func(i, j int) bool {
		if !relevant[i].Date.Equal(relevant[j].Date) {
			return relevant[i].Date.Before(relevant[j].Date)
		}
		return relevant[i].ID < relevant[j].ID
	})
	return relevant
}

func seedFromHoldings(currentHoldings []domain.Holding) map[groupKey]*groupState {
	states := make(map[groupKey]*groupState, len(currentHoldings))
	for _, h := range currentHoldings {
		states[groupKey{securityID: h.SecurityID, accountID: h.AccountID}] = &groupState{
			book: holdings.CostBook{
				Quantity:  h.Quantity,
				AvgPrice:  h.AvgPrice,
				BookValue: h.Quantity.Mul(h.AvgPrice),
			},
		}
	}
	return states
}

// unwind reverses the in-window transactions in descending (date, id) order,
// leaving states at the holdings as of the day before the window starts.
func unwind(states map[groupKey]*groupState, replayable []domain.InvestmentTransaction) {
	for i := len(replayable) - 1; i >= 0; i-- {
		tx := replayable[i]
		state := stateFor(states, tx)
		qty := domain.SafeParsePtr(tx.Quantity)
		price := domain.SafeParsePtr(tx.Price)

		switch tx.Type {
		case domain.InvestmentBuy:
			state.book.UnwindBuy(qty, price)
		case domain.InvestmentSell:
			state.book.UnwindSell(qty, price)
		}
	}
}

func apply(states map[groupKey]*groupState, tx domain.InvestmentTransaction) {
	state := stateFor(states, tx)
	qty := domain.SafeParsePtr(tx.Quantity)
	price := domain.SafeParsePtr(tx.Price)

	switch tx.Type {
	case domain.InvestmentBuy:
		state.book.ApplyBuy(qty, price)
	case domain.InvestmentSell:
		state.book.ApplySell(qty)
	}
}

func stateFor(states map[groupKey]*groupState, tx domain.InvestmentTransaction) *groupState {
	key := groupKey{securityID: *tx.SecurityID, accountID: tx.AccountID}
	state, ok := states[key]
	if !ok {
		state = &groupState{}
		states[key] = state
	}
	return state
}

// valueOn prices every held security for one day: exact historical price
// when one exists, the blended average cost otherwise.
func valueOn(states map[groupKey]*groupState, priceIndex map[string]map[domain.Day]decimal.Decimal, day domain.Day) decimal.Decimal {
	total := decimal.Zero
	for key, state := range states {
		if !state.book.Quantity.IsPositive() {
			continue
		}
		price, ok := priceIndex[key.securityID][day]
		if !ok {
			price = state.book.AvgPrice
		}
		total = total.Add(state.book.Quantity.Mul(price))
	}
	return total
}

func indexPrices(prices []domain.SecurityPrice) map[string]map[domain.Day]decimal.Decimal {
	index := make(map[string]map[domain.Day]decimal.Decimal)
	for _, p := range prices {
		parsed, err := domain.ParseAmount(p.Price)
		if err != nil {
			slog.Warn("history: unreadable historical price, skipping",
				"security", p.SecurityID, "date", p.Date, "error", err)
			continue
		}
		byDay, ok := index[p.SecurityID]
		if !ok {
			byDay = make(map[domain.Day]decimal.Decimal)
			index[p.SecurityID] = byDay
		}
		byDay[p.Date] = parsed
	}
	return index
}

func flatSeries(windowStart, today domain.Day, currentTotal decimal.Decimal) []domain.HistoricalPoint {
	value := decimal.Max(decimal.Zero, currentTotal)
	series := make([]domain.HistoricalPoint, 0, windowStart.DaysUntil(today)+1)
	for day := windowStart; !day.After(today); day = day.AddDays(1) {
		series = append(series, domain.HistoricalPoint{Date: day, Value: value})
	}
	return series
}
