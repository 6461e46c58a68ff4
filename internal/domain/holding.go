package domain

import (
	"github.com/shopspring/decimal"
)

// UnknownSecurityName is the display name used when a holding references a
// security that is missing from the reference data.
const UnknownSecurityName = "Unknown"

// Holding is the derived state of one security in one account: quantity
// held, blended average cost and current market valuation. Holdings are
// recomputed on demand and never persisted by the engine itself.
type Holding struct {
	SecurityID           string          `json:"securityId"`
	AccountID            string          `json:"accountId"`
	Symbol               string          `json:"symbol"`
	Name                 string          `json:"name"`
	AssetClass           string          `json:"assetClass"`
	Sector               string          `json:"sector"`
	Quantity             decimal.Decimal `json:"quantity"`
	AvgPrice             decimal.Decimal `json:"avgPrice"`
	BookValue            decimal.Decimal `json:"bookValue"`
	LastPrice            decimal.Decimal `json:"lastPrice"`
	MarketValue          decimal.Decimal `json:"marketValue"`
	UnrealizedPnL        decimal.Decimal `json:"unrealizedPnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealizedPnlPercent"`
}

// HistoricalPoint is one day of the portfolio value series.
type HistoricalPoint struct {
	Date  Day             `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// ValuationSource tags which upstream source produced an account valuation.
type ValuationSource string

const (
	// ValuationSourceBrokerageEquity: the brokerage reported a total equity figure.
	ValuationSourceBrokerageEquity ValuationSource = "brokerage_equity"
	// ValuationSourceBrokerageComponents: market value + cash from a brokerage
	// snapshot that lacks a total equity figure.
	ValuationSourceBrokerageComponents ValuationSource = "brokerage_components"
	// ValuationSourceManual: a user-entered total value.
	ValuationSourceManual ValuationSource = "manual"
	// ValuationSourceHoldings: sum of market values of the derived holdings.
	ValuationSourceHoldings ValuationSource = "holdings"
	// ValuationSourceLedger: a cash account valued by ledger replay.
	ValuationSourceLedger ValuationSource = "ledger"
	// ValuationSourceNone: no source existed. Distinct from a portfolio whose
	// value is legitimately zero, so callers can render a dash instead of $0.00.
	ValuationSourceNone ValuationSource = "none"
)

// Valuation is a resolved account value tagged with its source.
type Valuation struct {
	Amount decimal.Decimal `json:"amount"`
	Source ValuationSource `json:"source"`
}

// HasSource reports whether any valuation source existed.
func (v Valuation) HasSource() bool { return v.Source != ValuationSourceNone }
