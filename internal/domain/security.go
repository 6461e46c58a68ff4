package domain

import (
	"time"

	"github.com/samber/lo"
)

// Security is immutable reference data describing a tradable instrument.
type Security struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	AssetClass string `json:"assetClass"`
	Sector     string `json:"sector"`
}

// SecuritiesByID indexes securities by identifier.
func SecuritiesByID(securities []Security) map[string]Security {
	return lo.KeyBy(securities, func(s Security) string { return s.ID })
}

// SecurityPrice is one closing price for a security on a calendar day.
// The price table is sparse: not every security has a price for every day.
type SecurityPrice struct {
	SecurityID string `json:"securityId"`
	Date       Day    `json:"date"`
	Price      string `json:"price"`
}

// Position is a precomputed per-security, per-account holding snapshot,
// maintained externally (brokerage sync or the snapshot worker). When present
// it is authoritative and the from-transactions replay is skipped entirely.
type Position struct {
	SecurityID         string    `json:"securityId"`
	AccountID          string    `json:"accountId"`
	OpenQuantity       string    `json:"openQuantity"`
	AverageEntryPrice  string    `json:"averageEntryPrice"`
	TotalCost          string    `json:"totalCost"`
	CurrentPrice       string    `json:"currentPrice"`
	CurrentMarketValue string    `json:"currentMarketValue"`
	OpenPnL            string    `json:"openPnl"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// BrokerageSnapshot is an account-level valuation reported by a connected
// brokerage. TotalEquity is preferred when present; otherwise the account
// value is MarketValue + Cash.
type BrokerageSnapshot struct {
	AccountID   string  `json:"accountId"`
	TotalEquity *string `json:"totalEquity,omitempty"`
	MarketValue *string `json:"marketValue,omitempty"`
	Cash        *string `json:"cash,omitempty"`
}
