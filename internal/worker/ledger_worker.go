// Package worker turns rollover events into rows of the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfel/internal/amqp"
	"portfel/internal/core"
	"portfel/internal/ports"
)

// RecordReader is the slice of the record store the worker reads from.
type RecordReader interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetWallet(ctx context.Context, id string) (core.Wallet, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
}

type LedgerWorker struct {
	records RecordReader
	ledger  ports.LedgerWriter
}

func NewLedgerWorker(records RecordReader, ledger ports.LedgerWriter) *LedgerWorker {
	return &LedgerWorker{records: records, ledger: ledger}
}

// HandleRollover appends the occurrence the rollover just created
// (msg.TransactionID). Every occurrence reaches the ledger when it is
// materialised, so stopping a subscription later needs no event of its own.
// An occurrence deleted before the message arrived is skipped, not retried.
func (w *LedgerWorker) HandleRollover(ctx context.Context, msg *amqp.RolloverMessage) error {
	t, err := w.records.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Rolled over transaction no longer exists, skipping",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	entry, err := w.buildEntry(ctx, t)
	if err != nil {
		return err
	}

	ref, err := w.ledger.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry appended",
		"transaction_id", t.ID,
		"archived_id", msg.ArchivedID,
		"row_ref", ref)
	return nil
}

func (w *LedgerWorker) buildEntry(ctx context.Context, t core.Transaction) (core.LedgerEntry, error) {
	entry := core.LedgerEntry{
		TransactionID: t.ID,
		Date:          t.Date,
		Type:          t.Type,
		Amount:        t.Amount,
		Wallet:        core.UnknownWalletName,
		Category:      core.UncategorizedName,
		Comment:       t.Comment,
		Frequency:     t.Frequency,
	}

	wallet, err := w.records.GetWallet(ctx, t.WalletID)
	switch {
	case err == nil:
		entry.Wallet = wallet.Name
		entry.Currency = wallet.Currency
	case !errors.Is(err, core.ErrNotFound):
		return core.LedgerEntry{}, fmt.Errorf("get wallet: %w", err)
	}

	category, err := w.records.GetCategory(ctx, t.CategoryID)
	switch {
	case err == nil:
		entry.Category = category.Name
	case !errors.Is(err, core.ErrNotFound):
		return core.LedgerEntry{}, fmt.Errorf("get category: %w", err)
	}

	return entry, nil
}
