// Package valuation resolves a single authoritative value for an investment
// account from competing sources.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/holdings"
)

// ResolveAccountValue picks the account value by strict precedence, first
// available source winning outright:
//
//  1. brokerage-reported total equity
//  2. brokerage market value + cash, when the snapshot lacks total equity
//  3. user-entered manual total, when no brokerage snapshot exists
//  4. sum of market values across the derived holdings
//
// When every source is absent the result is tagged ValuationSourceNone so
// callers can distinguish "no data" from a portfolio that is genuinely worth
// zero. Averaging or mixing sources is intentionally impossible: competing
// systems (brokerage sync, manual entry, transaction math) all claim to know
// the value, and anything but a fixed order produces unstable balances.
func ResolveAccountValue(snapshot *domain.BrokerageSnapshot, manualValue *string, accountHoldings []domain.Holding) domain.Valuation {
	if snapshot != nil {
		if snapshot.TotalEquity != nil {
			if equity, err := domain.ParseAmount(*snapshot.TotalEquity); err == nil {
				return domain.Valuation{Amount: equity, Source: domain.ValuationSourceBrokerageEquity}
			}
		}
		// A snapshot with no populated fields at all is not a valuation
		// source; fall through instead of reporting a silent zero.
		if snapshot.MarketValue != nil || snapshot.Cash != nil {
			value := domain.SafeParsePtr(snapshot.MarketValue).Add(domain.SafeParsePtr(snapshot.Cash))
			return domain.Valuation{Amount: value, Source: domain.ValuationSourceBrokerageComponents}
		}
	}

	if manualValue != nil {
		if manual, err := domain.ParseAmount(*manualValue); err == nil {
			return domain.Valuation{Amount: manual, Source: domain.ValuationSourceManual}
		}
	}

	if len(accountHoldings) > 0 {
		return domain.Valuation{
			Amount: holdings.TotalMarketValue(accountHoldings),
			Source: domain.ValuationSourceHoldings,
		}
	}

	return domain.Valuation{Amount: decimal.Zero, Source: domain.ValuationSourceNone}
}
