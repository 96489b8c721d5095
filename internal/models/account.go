package models

import "time"

// Transaction types recorded against an account.
const (
	TransactionAdd    = "add"
	TransactionDeduct = "deduct"
)

// Account holds a user's token balance and transaction history.
// Accounts are created lazily on first reference and live for as long as the
// backing store does.
type Account struct {
	UserID       string        `json:"userId"`
	Balance      int           `json:"balance"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastUpdated  time.Time     `json:"lastUpdated"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a single append-only ledger entry. BalanceAfter records the
// account balance immediately after the entry was applied.
type Transaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"` // "add" or "deduct"
	Amount       int       `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
	BalanceAfter int       `json:"balanceAfter"`
}

// BalanceReport is the response shape for balance queries: the current
// balance plus the most recent transactions in insertion order.
type BalanceReport struct {
	Balance      int           `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}
