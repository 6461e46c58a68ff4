package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// PgPositionRepository stores precomputed position snapshots.
type PgPositionRepository struct {
	pool *pgxpool.Pool
}

// NewPgPositionRepository creates a new PostgreSQL position repository.
func NewPgPositionRepository(pool *pgxpool.Pool) *PgPositionRepository {
	return &PgPositionRepository{pool: pool}
}

func (r *PgPositionRepository) ListPositions(ctx context.Context, accountID string) ([]domain.Position, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT security_id, account_id, open_quantity, average_entry_price,
		        total_cost, current_price, current_market_value, open_pnl, updated_at
		 FROM positions
		 WHERE ($1 = '' OR account_id = $1)
		 ORDER BY account_id, security_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.SecurityID, &p.AccountID, &p.OpenQuantity, &p.AverageEntryPrice,
			&p.TotalCost, &p.CurrentPrice, &p.CurrentMarketValue, &p.OpenPnL, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ReplacePositions atomically swaps an account's position snapshots for a
// freshly computed set. An empty set clears the account's snapshots, which
// sends readers back to the transaction-replay path.
func (r *PgPositionRepository) ReplacePositions(ctx context.Context, accountID string, positions []domain.Position) error {
	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning position replace: %w", err)
	}
	defer dbtx.Rollback(ctx)

	if _, err := dbtx.Exec(ctx,
		`DELETE FROM positions WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("clearing positions for %s: %w", accountID, err)
	}

	for _, p := range positions {
		if _, err := dbtx.Exec(ctx,
			`INSERT INTO positions (security_id, account_id, open_quantity, average_entry_price,
			                        total_cost, current_price, current_market_value, open_pnl, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
			p.SecurityID, p.AccountID, p.OpenQuantity, p.AverageEntryPrice,
			p.TotalCost, p.CurrentPrice, p.CurrentMarketValue, p.OpenPnL); err != nil {
			return fmt.Errorf("inserting position %s/%s: %w", p.AccountID, p.SecurityID, err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("committing position replace: %w", err)
	}
	return nil
}
