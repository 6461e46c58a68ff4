package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// PgLedgerRepository stores cash ledger transactions in PostgreSQL.
type PgLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPgLedgerRepository creates a new PostgreSQL ledger repository.
func NewPgLedgerRepository(pool *pgxpool.Pool) *PgLedgerRepository {
	return &PgLedgerRepository{pool: pool}
}

func (r *PgLedgerRepository) ListLedgerTransactions(ctx context.Context) ([]domain.LedgerTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, type, amount, date, transfer_to_id, transfer_from_id
		 FROM ledger_transactions
		 ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		var tx domain.LedgerTransaction
		var date time.Time
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount, &date, &tx.TransferToID, &tx.TransferFromID); err != nil {
			return nil, fmt.Errorf("scanning ledger transaction: %w", err)
		}
		tx.Date = domain.DayOf(date)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SaveTransaction inserts or updates a single income/expense row.
func (r *PgLedgerRepository) SaveTransaction(ctx context.Context, tx domain.LedgerTransaction) error {
	if !domain.ValidLedgerTransactionType(tx.Type) {
		return fmt.Errorf("unknown ledger transaction type %q", tx.Type)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ledger_transactions (id, account_id, type, amount, date, transfer_to_id, transfer_from_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id)
		 DO UPDATE SET account_id = $2, type = $3, amount = $4, date = $5, transfer_to_id = $6, transfer_from_id = $7`,
		tx.ID, tx.AccountID, tx.Type, tx.Amount, tx.Date.Time(), tx.TransferToID, tx.TransferFromID)
	if err != nil {
		return fmt.Errorf("saving ledger transaction %s: %w", tx.ID, err)
	}
	return nil
}

// SaveTransferPair atomically inserts both legs of a transfer: the outgoing
// row debiting the source account and the incoming row crediting the
// destination, cross-linked by id. The legs exist as a unit or not at all.
func (r *PgLedgerRepository) SaveTransferPair(ctx context.Context, outgoing, incoming domain.LedgerTransaction) error {
	if !outgoing.Outgoing() || !incoming.Incoming() {
		return fmt.Errorf("transfer pair %s/%s is not cross-linked", outgoing.ID, incoming.ID)
	}

	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transfer transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	const insert = `INSERT INTO ledger_transactions (id, account_id, type, amount, date, transfer_to_id, transfer_from_id)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, leg := range []domain.LedgerTransaction{outgoing, incoming} {
		if _, err := dbtx.Exec(ctx, insert,
			leg.ID, leg.AccountID, leg.Type, leg.Amount, leg.Date.Time(), leg.TransferToID, leg.TransferFromID); err != nil {
			return fmt.Errorf("inserting transfer leg %s: %w", leg.ID, err)
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transfer pair: %w", err)
	}
	return nil
}

// DeleteTransferPair atomically removes a transfer row and its linked leg.
func (r *PgLedgerRepository) DeleteTransferPair(ctx context.Context, id string) error {
	dbtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transfer delete: %w", err)
	}
	defer dbtx.Rollback(ctx)

	if _, err := dbtx.Exec(ctx,
		`DELETE FROM ledger_transactions
		 WHERE id = $1 OR transfer_to_id = $1 OR transfer_from_id = $1`, id); err != nil {
		return fmt.Errorf("deleting transfer pair %s: %w", id, err)
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transfer delete: %w", err)
	}
	return nil
}

// PgInvestmentRepository stores investment transactions in PostgreSQL.
type PgInvestmentRepository struct {
	pool *pgxpool.Pool
}

// NewPgInvestmentRepository creates a new PostgreSQL investment repository.
func NewPgInvestmentRepository(pool *pgxpool.Pool) *PgInvestmentRepository {
	return &PgInvestmentRepository{pool: pool}
}

func (r *PgInvestmentRepository) ListInvestmentTransactions(ctx context.Context, accountID string) ([]domain.InvestmentTransaction, error) {
	const query = `SELECT id, account_id, security_id, type, quantity, price, fees, date
	               FROM investment_transactions
	               WHERE ($1 = '' OR account_id = $1)
	               ORDER BY date, id`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing investment transactions: %w", err)
	}
	defer rows.Close()
	return scanInvestmentTransactions(rows)
}

// ListInvestmentTransactionsBetween returns all transactions dated within
// [from, to] inclusive, across all accounts.
func (r *PgInvestmentRepository) ListInvestmentTransactionsBetween(ctx context.Context, from, to domain.Day) ([]domain.InvestmentTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, security_id, type, quantity, price, fees, date
		 FROM investment_transactions
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date, id`, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("listing investment transactions between %s and %s: %w", from, to, err)
	}
	defer rows.Close()
	return scanInvestmentTransactions(rows)
}

// SaveInvestmentTransaction inserts or updates one investment event.
func (r *PgInvestmentRepository) SaveInvestmentTransaction(ctx context.Context, tx domain.InvestmentTransaction) error {
	if !domain.ValidInvestmentTransactionType(tx.Type) {
		return fmt.Errorf("unknown investment transaction type %q", tx.Type)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO investment_transactions (id, account_id, security_id, type, quantity, price, fees, date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id)
		 DO UPDATE SET account_id = $2, security_id = $3, type = $4, quantity = $5, price = $6, fees = $7, date = $8`,
		tx.ID, tx.AccountID, tx.SecurityID, tx.Type, tx.Quantity, tx.Price, tx.Fees, tx.Date.Time())
	if err != nil {
		return fmt.Errorf("saving investment transaction %s: %w", tx.ID, err)
	}
	return nil
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanInvestmentTransactions(rows pgRows) ([]domain.InvestmentTransaction, error) {
	var txs []domain.InvestmentTransaction
	for rows.Next() {
		var tx domain.InvestmentTransaction
		var date time.Time
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.SecurityID, &tx.Type, &tx.Quantity, &tx.Price, &tx.Fees, &date); err != nil {
			return nil, fmt.Errorf("scanning investment transaction: %w", err)
		}
		tx.Date = domain.DayOf(date)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
