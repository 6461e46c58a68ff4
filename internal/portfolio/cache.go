package portfolio

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/summary"
)

// CachedService memoizes read results of a Service for a fixed TTL. The
// computations themselves stay cache-free; staleness lives only in this
// wrapper, so a write path can drop everything at once.
type CachedService struct {
	svc   *Service
	cache *gocache.Cache
}

// NewCachedService wraps the service with a TTL cache.
func NewCachedService(svc *Service, ttl time.Duration) *CachedService {
	return &CachedService{
		svc:   svc,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedService) Balances(ctx context.Context, asOf domain.Day) ([]AccountBalance, error) {
	key := fmt.Sprintf("balances:%s", asOf)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]AccountBalance), nil
	}
	balances, err := c.svc.Balances(ctx, asOf)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, balances)
	return balances, nil
}

func (c *CachedService) AccountHoldings(ctx context.Context, accountID string) ([]domain.Holding, error) {
	key := fmt.Sprintf("holdings:%s", accountID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]domain.Holding), nil
	}
	hs, err := c.svc.AccountHoldings(ctx, accountID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, hs)
	return hs, nil
}

func (c *CachedService) Holdings(ctx context.Context) ([]domain.Holding, error) {
	const key = "holdings:all"
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]domain.Holding), nil
	}
	hs, err := c.svc.Holdings(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, hs)
	return hs, nil
}

func (c *CachedService) AccountValue(ctx context.Context, accountID string) (domain.Valuation, error) {
	key := fmt.Sprintf("value:%s", accountID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(domain.Valuation), nil
	}
	v, err := c.svc.AccountValue(ctx, accountID)
	if err != nil {
		return domain.Valuation{}, err
	}
	c.cache.SetDefault(key, v)
	return v, nil
}

func (c *CachedService) History(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	key := fmt.Sprintf("history:%d:%s", windowDays, domain.Today())
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]domain.HistoricalPoint), nil
	}
	points, err := c.svc.History(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, points)
	return points, nil
}

func (c *CachedService) DailyValues(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	key := fmt.Sprintf("dailyvalues:%d:%s", windowDays, domain.Today())
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]domain.HistoricalPoint), nil
	}
	points, err := c.svc.DailyValues(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, points)
	return points, nil
}

func (c *CachedService) Summary(ctx context.Context) (summary.Summary, error) {
	const key = "summary"
	if cached, ok := c.cache.Get(key); ok {
		return cached.(summary.Summary), nil
	}
	s, err := c.svc.Summary(ctx)
	if err != nil {
		return summary.Summary{}, err
	}
	c.cache.SetDefault(key, s)
	return s, nil
}

// GenerateSnapshot is a write path: it never reads the cache and flushes it
// after the snapshot lands, so readers see the regenerated positions.
func (c *CachedService) GenerateSnapshot(ctx context.Context, day domain.Day) (decimal.Decimal, error) {
	total, err := c.svc.GenerateSnapshot(ctx, day)
	if err != nil {
		return decimal.Zero, err
	}
	c.cache.Flush()
	return total, nil
}
