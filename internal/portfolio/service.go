// Package portfolio orchestrates the pure computation packages over the
// persistence layer: it fetches records through repository interfaces, runs
// the ledger/holdings/valuation/history computations and returns the results.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/domain"
	"github.com/pennywise-app/pennywise/internal/history"
	"github.com/pennywise-app/pennywise/internal/holdings"
	"github.com/pennywise-app/pennywise/internal/ledger"
	"github.com/pennywise-app/pennywise/internal/summary"
	"github.com/pennywise-app/pennywise/internal/valuation"
)

// ErrNotInvestment is returned when a holdings-only operation is requested
// for a cash account.
var ErrNotInvestment = errors.New("not an investment account")

// AccountRepository provides account records.
type AccountRepository interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id string) (domain.Account, error)
}

// LedgerRepository provides cash ledger rows.
type LedgerRepository interface {
	ListLedgerTransactions(ctx context.Context) ([]domain.LedgerTransaction, error)
}

// InvestmentRepository provides investment transaction rows. An empty
// accountID lists across all accounts.
type InvestmentRepository interface {
	ListInvestmentTransactions(ctx context.Context, accountID string) ([]domain.InvestmentTransaction, error)
	ListInvestmentTransactionsBetween(ctx context.Context, from, to domain.Day) ([]domain.InvestmentTransaction, error)
}

// SecurityRepository provides security reference data and historical prices.
type SecurityRepository interface {
	ListSecurities(ctx context.Context) ([]domain.Security, error)
	ListPricesBetween(ctx context.Context, from, to domain.Day) ([]domain.SecurityPrice, error)
}

// PositionRepository provides precomputed position snapshots.
type PositionRepository interface {
	ListPositions(ctx context.Context, accountID string) ([]domain.Position, error)
	ReplacePositions(ctx context.Context, accountID string, positions []domain.Position) error
}

// ValuationRepository provides brokerage snapshots, manual values and the
// persisted daily value series.
type ValuationRepository interface {
	GetBrokerageSnapshot(ctx context.Context, accountID string) (*domain.BrokerageSnapshot, error)
	GetManualValue(ctx context.Context, accountID string) (*string, error)
	SaveDailyValue(ctx context.Context, day domain.Day, value string) error
	ListDailyValues(ctx context.Context, from, to domain.Day) ([]domain.HistoricalPoint, error)
}

// AccountBalance is one account with its replayed balance as of a day.
type AccountBalance struct {
	Account domain.Account  `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// Service is the read model of the tracker: balances, holdings, valuations,
// history and summary, all computed on demand from stored records.
type Service struct {
	accounts    AccountRepository
	ledger      LedgerRepository
	investments InvestmentRepository
	securities  SecurityRepository
	positions   PositionRepository
	valuations  ValuationRepository
}

// NewService creates a portfolio service over the given repositories.
func NewService(
	accounts AccountRepository,
	ledgerRepo LedgerRepository,
	investments InvestmentRepository,
	securities SecurityRepository,
	positions PositionRepository,
	valuations ValuationRepository,
) *Service {
	return &Service{
		accounts:    accounts,
		ledger:      ledgerRepo,
		investments: investments,
		securities:  securities,
		positions:   positions,
		valuations:  valuations,
	}
}

// Balances replays the cash ledger onto every account and returns the
// balances as of the given day, ordered by account name.
func (s *Service) Balances(ctx context.Context, asOf domain.Day) ([]AccountBalance, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	txs, err := s.ledger.ListLedgerTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger transactions: %w", err)
	}

	byID := ledger.ComputeBalances(accounts, txs, asOf)
	result := lo.Map(accounts, func(a domain.Account, _ int) AccountBalance {
		return AccountBalance{Account: a, Balance: byID[a.ID]}
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].Account.Name < result[j].Account.Name
	})
	return result, nil
}

// AccountHoldings derives the current holdings of one investment account.
func (s *Service) AccountHoldings(ctx context.Context, accountID string) ([]domain.Holding, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if !account.IsInvestment() {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotInvestment)
	}
	return s.holdingsFor(ctx, accountID)
}

// Holdings derives the current holdings across all investment accounts.
func (s *Service) Holdings(ctx context.Context) ([]domain.Holding, error) {
	return s.holdingsFor(ctx, "")
}

// AccountValue resolves the current value of one account. Cash accounts are
// valued by ledger replay; investment accounts go through the source
// precedence chain (brokerage, manual, derived holdings).
func (s *Service) AccountValue(ctx context.Context, accountID string) (domain.Valuation, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("loading account %s: %w", accountID, err)
	}

	if !account.IsInvestment() {
		txs, err := s.ledger.ListLedgerTransactions(ctx)
		if err != nil {
			return domain.Valuation{}, fmt.Errorf("loading ledger transactions: %w", err)
		}
		return domain.Valuation{
			Amount: ledger.AccountBalance(account, txs, domain.Today()),
			Source: domain.ValuationSourceLedger,
		}, nil
	}

	accountHoldings, err := s.holdingsFor(ctx, accountID)
	if err != nil {
		return domain.Valuation{}, err
	}
	return s.resolvedValue(ctx, accountID, accountHoldings)
}

// History reconstructs the daily investment value series over the trailing
// window ending today. The final point is pinned to the resolved live
// valuation summed over the investment accounts, so the series always agrees
// with the headline values AccountValue reports, even when a brokerage or
// manual source overrides the holdings math.
func (s *Service) History(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	today := domain.Today()
	from := today.AddDays(-windowDays)

	txs, err := s.investments.ListInvestmentTransactionsBetween(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("loading investment transactions: %w", err)
	}
	prices, err := s.securities.ListPricesBetween(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("loading security prices: %w", err)
	}
	current, err := s.holdingsFor(ctx, "")
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	currentTotal := decimal.Zero
	for _, account := range domain.InvestmentAccounts(accounts) {
		accountHoldings := lo.Filter(current, func(h domain.Holding, _ int) bool {
			return h.AccountID == account.ID
		})
		v, err := s.resolvedValue(ctx, account.ID, accountHoldings)
		if err != nil {
			return nil, err
		}
		if v.HasSource() {
			currentTotal = currentTotal.Add(v.Amount)
		}
	}

	return history.ComputeSeries(today, windowDays, txs, prices, current, currentTotal)
}

// DailyValues returns the end-of-day portfolio totals recorded by snapshot
// runs over the trailing window ending today. Unlike History this is the
// persisted series (cash included), not a fresh replay, so it only has points
// for days a snapshot actually ran.
func (s *Service) DailyValues(ctx context.Context, windowDays int) ([]domain.HistoricalPoint, error) {
	today := domain.Today()
	points, err := s.valuations.ListDailyValues(ctx, today.AddDays(-windowDays), today)
	if err != nil {
		return nil, fmt.Errorf("loading daily values: %w", err)
	}
	return points, nil
}

// Summary computes the dashboard totals and allocations over all holdings.
func (s *Service) Summary(ctx context.Context) (summary.Summary, error) {
	all, err := s.holdingsFor(ctx, "")
	if err != nil {
		return summary.Summary{}, err
	}
	return summary.Summarize(all), nil
}

// GenerateSnapshot regenerates position snapshots for every investment
// account from the raw transaction history and persists the total portfolio
// value (cash plus investments) for the given day. Returns the total.
func (s *Service) GenerateSnapshot(ctx context.Context, day domain.Day) (decimal.Decimal, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading accounts: %w", err)
	}
	securities, err := s.securities.ListSecurities(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading securities: %w", err)
	}
	ledgerTxs, err := s.ledger.ListLedgerTransactions(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading ledger transactions: %w", err)
	}

	total := decimal.Zero
	for _, account := range accounts {
		if !account.IsInvestment() {
			total = total.Add(ledger.AccountBalance(account, ledgerTxs, day))
			continue
		}

		txs, err := s.investments.ListInvestmentTransactions(ctx, account.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("loading investment transactions for %s: %w", account.ID, err)
		}

		// Replay from transactions only: the point of a snapshot run is to
		// refresh the stored positions, not to read them back.
		derived := holdings.Compute(account.ID, nil, txs, securities, accounts)
		if err := s.positions.ReplacePositions(ctx, account.ID, toPositions(derived)); err != nil {
			return decimal.Zero, fmt.Errorf("replacing positions for %s: %w", account.ID, err)
		}

		v, err := s.resolvedValue(ctx, account.ID, derived)
		if err != nil {
			return decimal.Zero, err
		}
		if v.HasSource() {
			total = total.Add(v.Amount)
		}
	}

	if err := s.valuations.SaveDailyValue(ctx, day, total.String()); err != nil {
		return decimal.Zero, fmt.Errorf("saving daily value: %w", err)
	}
	return total, nil
}

// resolvedValue runs the valuation source precedence for one investment
// account over its derived holdings.
func (s *Service) resolvedValue(ctx context.Context, accountID string, accountHoldings []domain.Holding) (domain.Valuation, error) {
	snapshot, err := s.valuations.GetBrokerageSnapshot(ctx, accountID)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("loading brokerage snapshot for %s: %w", accountID, err)
	}
	manual, err := s.valuations.GetManualValue(ctx, accountID)
	if err != nil {
		return domain.Valuation{}, fmt.Errorf("loading manual value for %s: %w", accountID, err)
	}
	return valuation.ResolveAccountValue(snapshot, manual, accountHoldings), nil
}

// holdingsFor derives holdings for one account, or across all accounts when
// accountID is empty, preferring stored position snapshots over replay.
func (s *Service) holdingsFor(ctx context.Context, accountID string) ([]domain.Holding, error) {
	positions, err := s.positions.ListPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading positions: %w", err)
	}
	txs, err := s.investments.ListInvestmentTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading investment transactions: %w", err)
	}
	securities, err := s.securities.ListSecurities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading securities: %w", err)
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return holdings.Compute(accountID, positions, txs, securities, accounts), nil
}

// toPositions converts derived holdings into persistable snapshot rows.
func toPositions(hs []domain.Holding) []domain.Position {
	return lo.Map(hs, func(h domain.Holding, _ int) domain.Position {
		return domain.Position{
			SecurityID:         h.SecurityID,
			AccountID:          h.AccountID,
			OpenQuantity:       h.Quantity.String(),
			AverageEntryPrice:  h.AvgPrice.String(),
			TotalCost:          h.BookValue.String(),
			CurrentPrice:       h.LastPrice.String(),
			CurrentMarketValue: h.MarketValue.String(),
			OpenPnL:            h.UnrealizedPnL.String(),
		}
	})
}
