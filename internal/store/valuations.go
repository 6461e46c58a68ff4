package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// PgValuationRepository stores brokerage snapshots, manual valuations and
// the daily portfolio value series.
type PgValuationRepository struct {
	pool *pgxpool.Pool
}

// NewPgValuationRepository creates a new PostgreSQL valuation repository.
func NewPgValuationRepository(pool *pgxpool.Pool) *PgValuationRepository {
	return &PgValuationRepository{pool: pool}
}

// GetBrokerageSnapshot returns the latest brokerage-reported valuation for
// the account, or nil when the account has no connected brokerage.
func (r *PgValuationRepository) GetBrokerageSnapshot(ctx context.Context, accountID string) (*domain.BrokerageSnapshot, error) {
	var s domain.BrokerageSnapshot
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, total_equity, market_value, cash
		 FROM brokerage_snapshots
		 WHERE account_id = $1
		 ORDER BY reported_at DESC
		 LIMIT 1`, accountID).Scan(&s.AccountID, &s.TotalEquity, &s.MarketValue, &s.Cash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting brokerage snapshot for %s: %w", accountID, err)
	}
	return &s, nil
}

// GetManualValue returns the user-entered total value for the account, or
// nil when none has been entered.
func (r *PgValuationRepository) GetManualValue(ctx context.Context, accountID string) (*string, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM manual_valuations WHERE account_id = $1`, accountID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting manual value for %s: %w", accountID, err)
	}
	return &value, nil
}

// SaveDailyValue upserts the computed total portfolio value for one day.
func (r *PgValuationRepository) SaveDailyValue(ctx context.Context, day domain.Day, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO daily_portfolio_values (date, value)
		 VALUES ($1, $2)
		 ON CONFLICT (date) DO UPDATE SET value = $2`,
		day.Time(), value)
	if err != nil {
		return fmt.Errorf("saving daily value for %s: %w", day, err)
	}
	return nil
}

// ListDailyValues returns saved portfolio values within [from, to] inclusive.
func (r *PgValuationRepository) ListDailyValues(ctx context.Context, from, to domain.Day) ([]domain.HistoricalPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, value
		 FROM daily_portfolio_values
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date`, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("listing daily values: %w", err)
	}
	defer rows.Close()

	var points []domain.HistoricalPoint
	for rows.Next() {
		var date time.Time
		var value string
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("scanning daily value: %w", err)
		}
		points = append(points, domain.HistoricalPoint{
			Date:  domain.DayOf(date),
			Value: domain.SafeParse(value),
		})
	}
	return points, rows.Err()
}
