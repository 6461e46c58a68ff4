package domain

// LedgerTransactionType classifies cash movements on the ledger.
type LedgerTransactionType string

const (
	LedgerIncome   LedgerTransactionType = "income"
	LedgerExpense  LedgerTransactionType = "expense"
	LedgerTransfer LedgerTransactionType = "transfer"
)

// ValidLedgerTransactionType reports whether t is a known ledger type.
func ValidLedgerTransactionType(t LedgerTransactionType) bool {
	switch t {
	case LedgerIncome, LedgerExpense, LedgerTransfer:
		return true
	}
	return false
}

// LedgerTransaction is one dated cash movement against an account. Amount is
// always a positive magnitude; the direction is derived from Type. A transfer
// is stored as two rows linked bidirectionally: the outgoing leg carries
// TransferToID (the incoming row's id) and debits its account, the incoming
// leg carries TransferFromID and credits its account. The two legs are
// created and deleted as a unit by the persistence layer; the engine just
// consumes whatever rows it is given.
type LedgerTransaction struct {
	ID             string                `json:"id"`
	AccountID      string                `json:"accountId"`
	Type           LedgerTransactionType `json:"type"`
	Amount         string                `json:"amount"`
	Date           Day                   `json:"date"`
	TransferToID   *string               `json:"transferToId,omitempty"`
	TransferFromID *string               `json:"transferFromId,omitempty"`
}

// Outgoing reports whether a transfer row debits its account.
func (t LedgerTransaction) Outgoing() bool { return t.TransferToID != nil }

// Incoming reports whether a transfer row credits its account.
func (t LedgerTransaction) Incoming() bool { return t.TransferFromID != nil }

// InvestmentTransactionType classifies investment account events. Only buys
// and sells affect the quantity held; dividends and interest are cash-only
// and invisible to the holdings math.
type InvestmentTransactionType string

const (
	InvestmentBuy         InvestmentTransactionType = "buy"
	InvestmentSell        InvestmentTransactionType = "sell"
	InvestmentDividend    InvestmentTransactionType = "dividend"
	InvestmentInterest    InvestmentTransactionType = "interest"
	InvestmentTransferIn  InvestmentTransactionType = "transfer_in"
	InvestmentTransferOut InvestmentTransactionType = "transfer_out"
)

// ValidInvestmentTransactionType reports whether t is a known investment type.
func ValidInvestmentTransactionType(t InvestmentTransactionType) bool {
	switch t {
	case InvestmentBuy, InvestmentSell, InvestmentDividend,
		InvestmentInterest, InvestmentTransferIn, InvestmentTransferOut:
		return true
	}
	return false
}

// InvestmentTransaction is one dated event on an investment account.
// SecurityID is nil for pure cash movements (interest, cash transfers).
// Quantity is required for buys and sells; Price may be absent on records
// imported from sparse sources.
type InvestmentTransaction struct {
	ID         string                    `json:"id"`
	AccountID  string                    `json:"accountId"`
	SecurityID *string                   `json:"securityId,omitempty"`
	Type       InvestmentTransactionType `json:"type"`
	Quantity   *string                   `json:"quantity,omitempty"`
	Price      *string                   `json:"price,omitempty"`
	Fees       string                    `json:"fees"`
	Date       Day                       `json:"date"`
}

// AffectsQuantity reports whether the transaction changes the number of
// units held of its security.
func (t InvestmentTransaction) AffectsQuantity() bool {
	return t.Type == InvestmentBuy || t.Type == InvestmentSell
}
