package history

import (
	"sync"
	"time"
)

// maxEntries caps the per-user generation history; the oldest entry is
// evicted first.
const maxEntries = 20

// Entry is one remembered generation.
type Entry struct {
	Format    string    `json:"format"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Log keeps a bounded, most-recent-first generation history per user in
// process memory.
type Log struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewLog creates an empty history log.
func NewLog() *Log {
	return &Log{entries: make(map[string][]Entry)}
}

// Append records an entry for userID, evicting the oldest once the cap is
// reached.
func (l *Log) Append(userID string, entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	es := append([]Entry{entry}, l.entries[userID]...)
	if len(es) > maxEntries {
		es = es[:maxEntries]
	}
	l.entries[userID] = es
}

// Get returns the user's history, newest first. The returned slice is a copy.
func (l *Log) Get(userID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	es := l.entries[userID]
	out := make([]Entry, len(es))
	copy(out, es)
	return out
}

// Reset clears the history for userID.
func (l *Log) Reset(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, userID)
}
