package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// PgAccountRepository stores accounts in PostgreSQL.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPgAccountRepository creates a new PostgreSQL account repository.
func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

func (r *PgAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, type, initial_balance, currency
		 FROM accounts
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance, &a.Currency); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PgAccountRepository) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	var a domain.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, type, initial_balance, currency
		 FROM accounts
		 WHERE id = $1`, id).Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance, &a.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("getting account %s: %w", id, err)
	}
	return a, nil
}

// SaveAccount inserts or updates an account. A type change may null out
// type-specific fields; the caller passes the already-adjusted record.
func (r *PgAccountRepository) SaveAccount(ctx context.Context, a domain.Account) error {
	if !domain.ValidAccountType(a.Type) {
		return fmt.Errorf("unknown account type %q", a.Type)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, name, type, initial_balance, currency)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id)
		 DO UPDATE SET name = $2, type = $3, initial_balance = $4, currency = $5`,
		a.ID, a.Name, a.Type, a.InitialBalance, a.Currency)
	if err != nil {
		return fmt.Errorf("saving account %s: %w", a.ID, err)
	}
	return nil
}
