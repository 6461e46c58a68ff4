// Package summary derives dashboard aggregates from a set of holdings.
package summary

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// Allocation is the share of total market value held in one bucket.
type Allocation struct {
	Bucket  string          `json:"bucket"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// Summary holds portfolio-level aggregates for the dashboard.
type Summary struct {
	HoldingCount         int             `json:"holdingCount"`
	TotalMarketValue     decimal.Decimal `json:"totalMarketValue"`
	TotalBookValue       decimal.Decimal `json:"totalBookValue"`
	UnrealizedPnL        decimal.Decimal `json:"unrealizedPnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealizedPnlPercent"`
	ByAssetClass         []Allocation    `json:"byAssetClass"`
	BySector             []Allocation    `json:"bySector"`
}

// Summarize computes portfolio aggregates from holdings. Holdings with no
// asset class or sector are bucketed under "other".
func Summarize(hs []domain.Holding) Summary {
	s := Summary{HoldingCount: len(hs)}

	s.TotalMarketValue = lo.Reduce(hs, func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
		return acc.Add(h.MarketValue)
	}, decimal.Zero)
	s.TotalBookValue = lo.Reduce(hs, func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
		return acc.Add(h.BookValue)
	}, decimal.Zero)
	s.UnrealizedPnL = s.TotalMarketValue.Sub(s.TotalBookValue)
	if s.TotalBookValue.IsPositive() {
		s.UnrealizedPnLPercent = s.UnrealizedPnL.Div(s.TotalBookValue).Mul(decimal.NewFromInt(100))
	}

	s.ByAssetClass = allocate(hs, s.TotalMarketValue, func(h domain.Holding) string { return h.AssetClass })
	s.BySector = allocate(hs, s.TotalMarketValue, func(h domain.Holding) string { return h.Sector })

	return s
}

func allocate(hs []domain.Holding, total decimal.Decimal, bucketOf func(domain.Holding) string) []Allocation {
	grouped := lo.GroupBy(hs, func(h domain.Holding) string {
		if b := bucketOf(h); b != "" {
			return b
		}
		return "other"
	})

	buckets := lo.Keys(grouped)
	allocations := make([]Allocation, 0, len(buckets))
	for _, bucket := range buckets {
		value := lo.Reduce(grouped[bucket], func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
			return acc.Add(h.MarketValue)
		}, decimal.Zero)

		a := Allocation{Bucket: bucket, Value: value}
		if total.IsPositive() {
			a.Percent = value.Div(total).Mul(decimal.NewFromInt(100))
		}
		allocations = append(allocations, a)
	}

	// Largest bucket first, name as tie-breaker for stable output.
	sort.Slice(allocations, func(i, j int) bool {
		if !allocations[i].Value.Equal(allocations[j].Value) {
			return allocations[i].Value.GreaterThan(allocations[j].Value)
		}
		return allocations[i].Bucket < allocations[j].Bucket
	})
	return allocations
}
