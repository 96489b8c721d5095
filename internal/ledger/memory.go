package ledger

import (
	"sync"
	"time"

	"github.com/koloni/koloni-be/internal/models"
)

// MemoryStore keeps accounts in process memory. It matches the demo
// deployment model: state is shared across requests within one process
// lifetime and lost on restart. Mutation on one account is serialized by a
// per-account mutex so two concurrent deducts can never both observe the
// same stale balance.
type MemoryStore struct {
	mu             sync.Mutex
	accounts       map[string]*memoryAccount
	defaultBalance int
}

type memoryAccount struct {
	mu  sync.Mutex
	acc models.Account
}

// NewMemoryStore creates an in-memory store seeding new accounts with
// defaultBalance tokens.
func NewMemoryStore(defaultBalance int) *MemoryStore {
	return &MemoryStore{
		accounts:       make(map[string]*memoryAccount),
		defaultBalance: defaultBalance,
	}
}

// lookup returns the entry for userID, creating it on first reference.
func (s *MemoryStore) lookup(userID string) *memoryAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.accounts[userID]
	if !ok {
		now := time.Now().UTC()
		entry = &memoryAccount{
			acc: models.Account{
				UserID:      userID,
				Balance:     s.defaultBalance,
				CreatedAt:   now,
				LastUpdated: now,
			},
		}
		s.accounts[userID] = entry
	}
	return entry
}

// Account returns a copy of the account for userID.
func (s *MemoryStore) Account(userID string) (models.Account, error) {
	entry := s.lookup(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return copyAccount(&entry.acc), nil
}

// Apply runs fn against a working copy of the account while holding its
// lock, then commits the copy if fn succeeded.
func (s *MemoryStore) Apply(userID string, fn func(*models.Account) error) (models.Account, error) {
	entry := s.lookup(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := copyAccount(&entry.acc)
	if err := fn(&working); err != nil {
		return models.Account{}, err
	}
	entry.acc = working
	return copyAccount(&working), nil
}
