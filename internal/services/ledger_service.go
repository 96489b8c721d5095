package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/ledger"
	"github.com/koloni/koloni-be/internal/models"
)

// reportLimit is how many trailing transactions a balance report includes.
const reportLimit = 10

// CheckResult is the outcome of a non-mutating balance check.
type CheckResult struct {
	Sufficient bool `json:"sufficient"`
	Balance    int  `json:"balance"`
	Required   int  `json:"required"`
}

// LedgerServiceProvider defines the interface for ledger operations. Every
// operation is atomic with respect to a single account.
type LedgerServiceProvider interface {
	Check(userID string, cost int) (CheckResult, error)
	Deduct(userID string, cost int) (int, error)
	Add(userID string, amount int) (int, error)
	Report(userID string) (models.BalanceReport, error)
}

// LedgerService provides the token accounting logic on top of a Store.
type LedgerService struct {
	store        ledger.Store
	eventService EventServiceProvider
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store ledger.Store, eventService EventServiceProvider) *LedgerService {
	return &LedgerService{store: store, eventService: eventService}
}

// Check reports whether the account can afford cost. It never mutates
// balance or history. A cost of 0 is valid and always sufficient.
func (s *LedgerService) Check(userID string, cost int) (CheckResult, error) {
	acc, err := s.store.Account(userID)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{
		Sufficient: acc.Balance >= cost,
		Balance:    acc.Balance,
		Required:   cost,
	}, nil
}

// Deduct removes cost tokens from the account and appends a transaction
// record. The balance check and the decrement happen under the same
// per-account lock, so the balance can never go negative. There is no
// partial deduction.
func (s *LedgerService) Deduct(userID string, cost int) (int, error) {
	if cost <= 0 {
		return 0, apperr.New(apperr.InvalidAmount, "Invalid cost amount")
	}

	acc, err := s.store.Apply(userID, func(acc *models.Account) error {
		if acc.Balance < cost {
			return apperr.Newf(apperr.InsufficientBalance, "Insufficient tokens: balance %d, required %d", acc.Balance, cost)
		}
		acc.Balance -= cost
		appendTransaction(acc, models.TransactionDeduct, cost)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.eventService.CreateEvent("token.deduct", "info",
		fmt.Sprintf("Deducted %d tokens, balance now %d.", cost, acc.Balance), &userID)
	return acc.Balance, nil
}

// Add credits amount tokens to the account and appends a transaction record.
func (s *LedgerService) Add(userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperr.New(apperr.InvalidAmount, "Invalid amount")
	}

	acc, err := s.store.Apply(userID, func(acc *models.Account) error {
		acc.Balance += amount
		appendTransaction(acc, models.TransactionAdd, amount)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.eventService.CreateEvent("token.add", "info",
		fmt.Sprintf("Added %d tokens, balance now %d.", amount, acc.Balance), &userID)
	return acc.Balance, nil
}

// Report returns the current balance and the last 10 transactions in
// insertion order (oldest of the window first).
func (s *LedgerService) Report(userID string) (models.BalanceReport, error) {
	acc, err := s.store.Account(userID)
	if err != nil {
		return models.BalanceReport{}, err
	}

	history := acc.Transactions
	if len(history) > reportLimit {
		history = history[len(history)-reportLimit:]
	}
	return models.BalanceReport{
		Balance:      acc.Balance,
		Transactions: history,
	}, nil
}

// appendTransaction stamps and appends a ledger entry reflecting the
// account's already-updated balance.
func appendTransaction(acc *models.Account, txType string, amount int) {
	now := time.Now().UTC()
	acc.LastUpdated = now
	acc.Transactions = append(acc.Transactions, models.Transaction{
		ID:           uuid.New().String(),
		Type:         txType,
		Amount:       amount,
		Timestamp:    now,
		BalanceAfter: acc.Balance,
	})
}
