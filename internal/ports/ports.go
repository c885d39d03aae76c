// Package ports declares the collaborator contracts the services depend on.
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

// Record store collections. Get* return core.ErrNotFound for unknown keys and
// Put* insert or replace by primary key.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		PutTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error

		// Rollover stores the archived occurrence and, when next is non-nil,
		// inserts the next one as a single atomic unit.
		Rollover(ctx context.Context, archived core.Transaction, next *core.Transaction) error
	}

	WalletStore interface {
		ListWallets(ctx context.Context) ([]core.Wallet, error)
		GetWallet(ctx context.Context, id string) (core.Wallet, error)
		PutWallet(ctx context.Context, w core.Wallet) error
		DeleteWallet(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		PutCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	RateStore interface {
		ListRates(ctx context.Context) ([]core.ExchangeRate, error)
		GetRate(ctx context.Context, currency string) (core.ExchangeRate, error)
		PutRate(ctx context.Context, r core.ExchangeRate) error
		DeleteRate(ctx context.Context, currency string) error
	}

	// RecordStore bundles every collection.
	RecordStore interface {
		TransactionStore
		WalletStore
		CategoryStore
		RateStore

		// ClearAll empties wallets, transactions and categories.
		ClearAll(ctx context.Context) error
		// ReplaceAll clears the same collections and loads snap in their
		// place. Either all of it lands or the old data stays.
		ReplaceAll(ctx context.Context, snap core.Snapshot) error
		Close() error
	}
)

// Outbound adapters.
type (
	// RateProvider returns currency code -> rate against the home currency.
	RateProvider interface {
		FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
	}

	// RolloverPublisher announces that archivedID was materialised and
	// transactionID now carries the subscription, due at dueDate.
	RolloverPublisher interface {
		PublishRollover(ctx context.Context, archivedID, transactionID string, dueDate time.Time) error
	}

	// LedgerWriter appends a materialised occurrence to an external ledger.
	LedgerWriter interface {
		AppendEntry(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	}
)
