package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfel/internal/core"
	"portfel/internal/ports"
)

var (
	ErrWalletInUse   = errors.New("wallet has transactions")
	ErrCategoryInUse = errors.New("category has transactions")
)

// LedgerService is the CRUD surface over wallets, categories and
// transactions, enforcing the reference rules the store itself does not.
type LedgerService struct {
	store ports.RecordStore
	newID func() string
}

func NewLedgerService(store ports.RecordStore) *LedgerService {
	return &LedgerService{store: store, newID: uuid.NewString}
}

// --- Wallets ---

func (s *LedgerService) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	return s.store.ListWallets(ctx)
}

func (s *LedgerService) CreateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	w.ID = s.newID()
	return s.saveWallet(ctx, w)
}

func (s *LedgerService) UpdateWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	if _, err := s.store.GetWallet(ctx, w.ID); err != nil {
		return core.Wallet{}, err
	}
	return s.saveWallet(ctx, w)
}

func (s *LedgerService) saveWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	w.Name = strings.TrimSpace(w.Name)
	w.Currency = strings.ToUpper(strings.TrimSpace(w.Currency))
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if err := s.store.PutWallet(ctx, w); err != nil {
		return core.Wallet{}, fmt.Errorf("save wallet: %w", err)
	}
	slog.InfoContext(ctx, "Wallet saved", "wallet_id", w.ID, "currency", w.Currency)
	return w, nil
}

// DeleteWallet refuses while any transaction still references the wallet.
func (s *LedgerService) DeleteWallet(ctx context.Context, id string) error {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range txs {
		if t.WalletID == id {
			return ErrWalletInUse
		}
	}
	if err := s.store.DeleteWallet(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Wallet deleted", "wallet_id", id)
	return nil
}

// WalletHistory returns the wallet and its running balance, oldest first.
func (s *LedgerService) WalletHistory(ctx context.Context, id string) (core.Wallet, []core.BalancePoint, error) {
	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return core.Wallet{}, nil, err
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.Wallet{}, nil, fmt.Errorf("list transactions: %w", err)
	}
	return w, BalanceHistory(w, txs), nil
}

// --- Categories ---

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = s.newID()
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.PutCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range txs {
		if t.CategoryID == id {
			return ErrCategoryInUse
		}
	}
	return s.store.DeleteCategory(ctx, id)
}

// --- Transactions ---

// TransactionDetail resolves a transaction's references for display.
// Wallet and Category are nil when the reference dangles.
type TransactionDetail struct {
	Transaction  core.Transaction `json:"transaction"`
	Wallet       *core.Wallet     `json:"wallet,omitempty"`
	WalletName   string           `json:"walletName"`
	Category     *core.Category   `json:"category,omitempty"`
	CategoryName string           `json:"categoryName"`
	BalanceAfter *decimal.Decimal `json:"balanceAfter,omitempty"`
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) GetTransactionDetail(ctx context.Context, id string) (TransactionDetail, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return TransactionDetail{}, err
	}
	detail := TransactionDetail{
		Transaction:  t,
		WalletName:   core.UnknownWalletName,
		CategoryName: core.UncategorizedName,
	}

	if c, err := s.store.GetCategory(ctx, t.CategoryID); err == nil {
		detail.Category = &c
		detail.CategoryName = c.Name
	} else if !errors.Is(err, core.ErrNotFound) {
		return TransactionDetail{}, fmt.Errorf("load category: %w", err)
	}

	w, err := s.store.GetWallet(ctx, t.WalletID)
	if errors.Is(err, core.ErrNotFound) {
		return detail, nil
	}
	if err != nil {
		return TransactionDetail{}, fmt.Errorf("load wallet: %w", err)
	}
	detail.Wallet = &w
	detail.WalletName = w.Name

	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		return TransactionDetail{}, fmt.Errorf("list transactions: %w", err)
	}
	if balance, ok := BalanceAsOf(w, all, t.ID); ok {
		detail.BalanceAfter = &balance
	}
	return detail, nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = s.newID()
	t.WasRecurring = false
	normalizeRecurrence(&t)
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.PutTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID,
		"wallet_id", t.WalletID,
		"type", string(t.Type),
		"recurring", t.IsRecurring)
	return t, nil
}

// UpdateTransaction replaces the editable fields. The subscription history
// flag stays as stored, and so does the date when none is given.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.WasRecurring = existing.WasRecurring
	if t.Date.IsZero() {
		t.Date = existing.Date
	}
	normalizeRecurrence(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.PutTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	return s.store.DeleteTransaction(ctx, id)
}

// StopSubscription ends a live subscription without creating a successor.
func (s *LedgerService) StopSubscription(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !t.IsRecurring {
		return t, nil
	}
	t.IsRecurring = false
	t.WasRecurring = true
	if err := s.store.PutTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("stop subscription: %w", err)
	}
	slog.InfoContext(ctx, "Subscription stopped", "transaction_id", t.ID)
	return t, nil
}

// normalizeRecurrence defaults a live subscription to monthly and clears the
// frequency of plain one-off transactions.
func normalizeRecurrence(t *core.Transaction) {
	switch {
	case t.IsRecurring && t.Frequency == "":
		t.Frequency = core.Monthly
	case !t.IsRecurring && !t.WasRecurring:
		t.Frequency = ""
	}
}
