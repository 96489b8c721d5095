// Package ledger provides the token account store. The Store interface is the
// single contract shared by the volatile in-memory implementation and the
// SQLite-backed one; all balance mutation goes through Apply so the
// check-then-mutate sequence is atomic per account.
package ledger

import (
	"github.com/koloni/koloni-be/internal/models"
)

// DefaultBalance is the token allocation seeded into new accounts when no
// explicit value is configured.
const DefaultBalance = 100

// Store is the keyed account store. Accounts are created lazily with the
// store's default balance on first reference and are never deleted.
type Store interface {
	// Account returns a copy of the account for userID, creating it first if
	// it has not been seen before.
	Account(userID string) (models.Account, error)

	// Apply atomically runs fn against the account for userID and persists
	// the result. fn may adjust Balance and LastUpdated and append new
	// entries to Transactions; it must not rewrite existing entries. If fn
	// returns an error nothing is persisted and the error is returned as-is.
	Apply(userID string, fn func(*models.Account) error) (models.Account, error)
}

// copyAccount returns a deep copy so callers can't mutate stored state
// through the returned value.
func copyAccount(acc *models.Account) models.Account {
	out := *acc
	out.Transactions = make([]models.Transaction, len(acc.Transactions))
	copy(out.Transactions, acc.Transactions)
	return out
}
