package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotVersion is the export format version written by this build.
const SnapshotVersion = 1

// Snapshot is the JSON backup of every user collection. Exchange rates are not
// part of it; they are re-fetched on the next sync.
type Snapshot struct {
	Wallets      []Wallet      `json:"wallets"`
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories,omitempty"`
	ExportDate   time.Time     `json:"exportDate"`
	Version      int           `json:"version"`
}

// BalancePoint is a wallet's running balance right after a transaction.
type BalancePoint struct {
	TransactionID string
	Date          time.Time
	Balance       decimal.Decimal
}

// LedgerEntry is one materialised occurrence as written to the external ledger.
type LedgerEntry struct {
	TransactionID string
	Date          time.Time
	Type          TransactionType
	Amount        decimal.Decimal
	Currency      string
	Wallet        string
	Category      string
	Comment       string
	Frequency     Frequency
}
