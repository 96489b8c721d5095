package ledger

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/koloni/koloni-be/internal/models"
)

// SQLStore persists accounts in SQLite so balances survive restarts. The
// read-modify-write in Apply runs inside one SQL transaction; a store-level
// mutex keeps writers single-file, which is how SQLite wants to be driven
// anyway.
type SQLStore struct {
	db             *sql.DB
	mu             sync.Mutex
	defaultBalance int
}

// NewSQLStore creates a SQLite-backed store seeding new accounts with
// defaultBalance tokens. The schema is managed by database.Migrate.
func NewSQLStore(db *sql.DB, defaultBalance int) *SQLStore {
	return &SQLStore{db: db, defaultBalance: defaultBalance}
}

// ensure creates the account row if this is the first reference to userID.
func (s *SQLStore) ensure(tx *sql.Tx, userID string) error {
	now := time.Now().UTC()
	_, err := tx.Exec(`
		INSERT INTO ledger_accounts (user_id, balance, created_at, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, s.defaultBalance, now, now)
	return err
}

// load reads the account row plus its full transaction history in insertion
// order. The retention sweeper keeps the history bounded.
func (s *SQLStore) load(tx *sql.Tx, userID string) (models.Account, error) {
	var acc models.Account
	row := tx.QueryRow(`
		SELECT user_id, balance, created_at, last_updated
		FROM ledger_accounts WHERE user_id = ?`, userID)
	if err := row.Scan(&acc.UserID, &acc.Balance, &acc.CreatedAt, &acc.LastUpdated); err != nil {
		return models.Account{}, fmt.Errorf("load account %s: %w", userID, err)
	}

	rows, err := tx.Query(`
		SELECT id, type, amount, balance_after, created_at
		FROM ledger_transactions WHERE user_id = ? ORDER BY seq ASC`, userID)
	if err != nil {
		return models.Account{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.Transaction
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Amount, &entry.BalanceAfter, &entry.Timestamp); err != nil {
			return models.Account{}, err
		}
		acc.Transactions = append(acc.Transactions, entry)
	}
	return acc, rows.Err()
}

// Account returns a copy of the account for userID, creating it first if
// needed.
func (s *SQLStore) Account(userID string) (models.Account, error) {
	return s.Apply(userID, func(*models.Account) error { return nil })
}

// Apply loads the account inside a transaction, runs fn, and persists the
// balance change plus any appended transaction entries.
func (s *SQLStore) Apply(userID string, fn func(*models.Account) error) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return models.Account{}, err
	}
	defer tx.Rollback()

	if err := s.ensure(tx, userID); err != nil {
		return models.Account{}, err
	}

	acc, err := s.load(tx, userID)
	if err != nil {
		return models.Account{}, err
	}
	before := len(acc.Transactions)

	if err := fn(&acc); err != nil {
		return models.Account{}, err
	}

	_, err = tx.Exec(`
		UPDATE ledger_accounts SET balance = ?, last_updated = ? WHERE user_id = ?`,
		acc.Balance, acc.LastUpdated, userID)
	if err != nil {
		return models.Account{}, err
	}

	for _, entry := range acc.Transactions[before:] {
		_, err = tx.Exec(`
			INSERT INTO ledger_transactions (id, user_id, type, amount, balance_after, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ID, userID, entry.Type, entry.Amount, entry.BalanceAfter, entry.Timestamp)
		if err != nil {
			return models.Account{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Account{}, err
	}
	return acc, nil
}
