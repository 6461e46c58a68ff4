package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AccountType classifies user accounts.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeInvestment:
		return true
	}
	return false
}

// Account represents a user account. InitialBalance is nil for credit
// accounts (they start from the sum of their transactions); for the other
// types a nil initial balance means zero.
type Account struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	InitialBalance *string     `json:"initialBalance,omitempty"`
	Currency       string      `json:"currency"`
}

// SeedBalance returns the balance an account starts from before any
// transactions are replayed onto it.
func (a Account) SeedBalance() decimal.Decimal {
	if a.InitialBalance == nil {
		return decimal.Zero
	}
	return SafeParse(*a.InitialBalance)
}

// IsInvestment reports whether the account holds securities.
func (a Account) IsInvestment() bool { return a.Type == AccountTypeInvestment }

// AccountsByID indexes accounts by their identifier.
func AccountsByID(accounts []Account) map[string]Account {
	return lo.KeyBy(accounts, func(a Account) string { return a.ID })
}

// InvestmentAccounts filters the investment-type accounts.
func InvestmentAccounts(accounts []Account) []Account {
	return lo.Filter(accounts, func(a Account, _ int) bool { return a.IsInvestment() })
}
