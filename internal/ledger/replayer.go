// Package ledger turns an unordered set of dated cash transactions into
// point-in-time account balances.
package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// ComputeBalances replays all transactions dated on or before asOf onto the
// accounts' initial balances and returns the resulting balance per account.
//
// The computation is pure summation: it is deterministic, idempotent and
// independent of the input order. Rows that cannot be applied (malformed
// amount, unknown account, unrecognized type, directionless transfer leg) are
// logged and skipped so that one corrupt row never zeroes out an entire
// account. Balances are never clamped; negative results are valid for every
// account type.
func ComputeBalances(accounts []domain.Account, txs []domain.LedgerTransaction, asOf domain.Day) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = a.SeedBalance()
	}

	for _, tx := range txs {
		if tx.Date.After(asOf) {
			continue
		}

		current, ok := balances[tx.AccountID]
		if !ok {
			slog.Warn("ledger: transaction references unknown account, skipping",
				"transaction", tx.ID, "account", tx.AccountID)
			continue
		}

		amount, err := domain.ParseAmount(tx.Amount)
		if err != nil {
			slog.Warn("ledger: unreadable amount, skipping", "transaction", tx.ID, "error", err)
			continue
		}
		if amount.IsNegative() {
			// Amounts are signed-magnitude: always stored positive, sign
			// derived from the row type.
			slog.Warn("ledger: negative magnitude, skipping", "transaction", tx.ID)
			continue
		}

		sign, ok := rowSign(tx)
		if !ok {
			slog.Warn("ledger: cannot determine row direction, skipping",
				"transaction", tx.ID, "type", tx.Type)
			continue
		}

		balances[tx.AccountID] = current.Add(amount.Mul(sign))
	}

	return balances
}

// rowSign maps a ledger row to +1 or -1. A transfer leg is directed by its
// link fields: the outgoing leg debits its account like an expense, the
// incoming leg credits like income.
func rowSign(tx domain.LedgerTransaction) (decimal.Decimal, bool) {
	switch tx.Type {
	case domain.LedgerIncome:
		return decimal.NewFromInt(1), true
	case domain.LedgerExpense:
		return decimal.NewFromInt(-1), true
	case domain.LedgerTransfer:
		switch {
		case tx.Outgoing():
			return decimal.NewFromInt(-1), true
		case tx.Incoming():
			return decimal.NewFromInt(1), true
		}
	}
	return decimal.Zero, false
}

// AccountBalance is a convenience wrapper computing the balance of a single
// account from its own transactions.
func AccountBalance(account domain.Account, txs []domain.LedgerTransaction, asOf domain.Day) decimal.Decimal {
	return ComputeBalances([]domain.Account{account}, txs, asOf)[account.ID]
}
