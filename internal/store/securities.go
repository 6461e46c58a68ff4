package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// PgSecurityRepository stores security reference data and historical prices.
type PgSecurityRepository struct {
	pool *pgxpool.Pool
}

// NewPgSecurityRepository creates a new PostgreSQL security repository.
func NewPgSecurityRepository(pool *pgxpool.Pool) *PgSecurityRepository {
	return &PgSecurityRepository{pool: pool}
}

func (r *PgSecurityRepository) ListSecurities(ctx context.Context) ([]domain.Security, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, name, asset_class, sector
		 FROM securities
		 ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("listing securities: %w", err)
	}
	defer rows.Close()

	var securities []domain.Security
	for rows.Next() {
		var s domain.Security
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Name, &s.AssetClass, &s.Sector); err != nil {
			return nil, fmt.Errorf("scanning security: %w", err)
		}
		securities = append(securities, s)
	}
	return securities, rows.Err()
}

// ListPricesBetween returns the sparse price rows for all securities within
// [from, to] inclusive.
func (r *PgSecurityRepository) ListPricesBetween(ctx context.Context, from, to domain.Day) ([]domain.SecurityPrice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT security_id, date, price
		 FROM security_prices
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date, security_id`, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("listing prices between %s and %s: %w", from, to, err)
	}
	defer rows.Close()

	var prices []domain.SecurityPrice
	for rows.Next() {
		var p domain.SecurityPrice
		var date time.Time
		if err := rows.Scan(&p.SecurityID, &date, &p.Price); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		p.Date = domain.DayOf(date)
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// SavePrice upserts one closing price for a security and day.
func (r *PgSecurityRepository) SavePrice(ctx context.Context, securityID string, day domain.Day, price string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO security_prices (security_id, date, price)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (security_id, date) DO UPDATE SET price = $3`,
		securityID, day.Time(), price)
	if err != nil {
		return fmt.Errorf("saving price for %s on %s: %w", securityID, day, err)
	}
	return nil
}
