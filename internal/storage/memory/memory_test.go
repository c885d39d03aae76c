package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

func TestStoreTransactionsOrderedNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := s.PutTransaction(ctx, core.Transaction{
			ID:     id,
			Amount: decimal.NewFromInt(1),
			Type:   core.Expense,
			Date:   base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("PutTransaction: %v", err)
		}
	}

	all, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestStoreNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetTransaction(ctx, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetWallet(ctx, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetWallet: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCategory(ctx, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteCategory: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetRate(ctx, "usd"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetRate: expected ErrNotFound, got %v", err)
	}
}

func TestStoreRolloverAndClear(t *testing.T) {
	s := NewWithDefaults()
	ctx := context.Background()

	orig := core.Transaction{ID: "s1", Amount: decimal.NewFromInt(10), Type: core.Expense, IsRecurring: true, Frequency: core.Weekly}
	_ = s.PutTransaction(ctx, orig)

	archived := orig
	archived.IsRecurring, archived.WasRecurring = false, true
	next := orig
	next.ID = "s2"
	if err := s.Rollover(ctx, archived, &next); err != nil {
		t.Fatalf("Rollover: %v", err)
	}

	got, _ := s.GetTransaction(ctx, "s1")
	if got.IsRecurring || !got.WasRecurring {
		t.Errorf("original not archived: %+v", got)
	}
	if _, err := s.GetTransaction(ctx, "s2"); err != nil {
		t.Errorf("clone missing: %v", err)
	}

	_ = s.PutRate(ctx, core.ExchangeRate{Currency: "eur", Rate: decimal.NewFromFloat(4.3)})
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	txs, _ := s.ListTransactions(ctx)
	cats, _ := s.ListCategories(ctx)
	if len(txs) != 0 || len(cats) != 0 {
		t.Errorf("expected cleared collections, got %d transactions %d categories", len(txs), len(cats))
	}
	if _, err := s.GetRate(ctx, "EUR"); err != nil {
		t.Errorf("rates should survive ClearAll: %v", err)
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewWithDefaults()
	_ = s.PutWallet(ctx, core.Wallet{ID: "old", Name: "Old", Currency: "PLN"})
	_ = s.PutRate(ctx, core.ExchangeRate{Currency: "USD", Rate: decimal.NewFromInt(4)})

	snap := core.Snapshot{
		Wallets:      []core.Wallet{{ID: "new", Name: "New", Currency: "EUR"}},
		Transactions: []core.Transaction{{ID: "t", Amount: decimal.NewFromInt(2), Type: core.Income, WalletID: "new"}},
	}
	if err := s.ReplaceAll(ctx, snap); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if _, err := s.GetWallet(ctx, "old"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("old wallet should be gone, got %v", err)
	}
	if _, err := s.GetTransaction(ctx, "t"); err != nil {
		t.Errorf("imported transaction missing: %v", err)
	}
	if cats, _ := s.ListCategories(ctx); len(cats) != 0 {
		t.Errorf("categories absent from the snapshot should be cleared, got %d", len(cats))
	}
	if _, err := s.GetRate(ctx, "USD"); err != nil {
		t.Errorf("rates should survive ReplaceAll: %v", err)
	}

	// The store keeps its own maps, not the caller's slices.
	snap.Wallets[0].Name = "Changed"
	if w, _ := s.GetWallet(ctx, "new"); w.Name != "New" {
		t.Errorf("stored wallet changed with the snapshot: %+v", w)
	}
}
