package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfel/internal/core"
	"portfel/internal/ports"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

type SnapshotService struct {
	store ports.RecordStore
	now   func() time.Time
}

func NewSnapshotService(store ports.RecordStore) *SnapshotService {
	return &SnapshotService{store: store, now: time.Now}
}

// Export collects every user collection. Exchange rates are left out.
func (s *SnapshotService) Export(ctx context.Context) (core.Snapshot, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list wallets: %w", err)
	}
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("list categories: %w", err)
	}

	return core.Snapshot{
		Wallets:      nonNil(wallets),
		Transactions: nonNil(transactions),
		Categories:   nonNil(categories),
		ExportDate:   s.now().UTC(),
		Version:      core.SnapshotVersion,
	}, nil
}

// Import replaces wallets, transactions and (when present) categories with
// the snapshot's content. The snapshot is validated in full first, then the
// store swaps the collections in one step, so a failed import changes nothing.
func (s *SnapshotService) Import(ctx context.Context, snap core.Snapshot) error {
	if snap.Wallets == nil || snap.Transactions == nil {
		return fmt.Errorf("%w: wallets and transactions are required", ErrInvalidSnapshot)
	}
	for i, w := range snap.Wallets {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("%w: wallet %d: %v", ErrInvalidSnapshot, i, err)
		}
	}
	for i, c := range snap.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: category %d: %v", ErrInvalidSnapshot, i, err)
		}
	}
	for i, t := range snap.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: transaction %d: %v", ErrInvalidSnapshot, i, err)
		}
	}

	if err := s.store.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"wallets", len(snap.Wallets),
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions),
		"version", snap.Version)
	return nil
}

// Reset empties wallets, transactions and categories.
func (s *SnapshotService) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear collections: %w", err)
	}
	slog.WarnContext(ctx, "All user data deleted")
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
