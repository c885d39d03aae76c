// Package memory is the in-process ledger used when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"portfel/internal/core"
	"portfel/internal/ports"
)

var _ ports.LedgerWriter = (*Ledger)(nil)

type Ledger struct {
	mu      sync.Mutex
	entries []core.LedgerEntry
}

func New() *Ledger {
	return &Ledger{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if e.TransactionID == "" {
		return "", core.ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []core.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.LedgerEntry(nil), l.entries...)
}
