// Package memory is an in-process RecordStore used by tests and by DATA_BACKEND=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"portfel/internal/core"
	"portfel/internal/ports"
)

var _ ports.RecordStore = (*Store)(nil)

type Store struct {
	mu           sync.Mutex
	transactions map[string]core.Transaction
	wallets      map[string]core.Wallet
	categories   map[string]core.Category
	rates        map[string]core.ExchangeRate
}

func New() *Store {
	return &Store{
		transactions: map[string]core.Transaction{},
		wallets:      map[string]core.Wallet{},
		categories:   map[string]core.Category{},
		rates:        map[string]core.ExchangeRate{},
	}
}

// NewWithDefaults returns a store seeded with the same categories the SQLite schema installs.
func NewWithDefaults() *Store {
	s := New()
	for _, c := range DefaultCategories() {
		s.categories[c.ID] = c
	}
	return s
}

func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "default-food", Name: "Food", Type: core.Expense, Icon: "shopping-cart", Color: "#f97316"},
		{ID: "default-home", Name: "Home", Type: core.Expense, Icon: "home", Color: "#6366f1"},
		{ID: "default-transport", Name: "Transport", Type: core.Expense, Icon: "car", Color: "#0ea5e9"},
		{ID: "default-subscriptions", Name: "Subscriptions", Type: core.Expense, Icon: "repeat", Color: "#a855f7"},
		{ID: "default-salary", Name: "Salary", Type: core.Income, Icon: "briefcase", Color: "#22c55e"},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) PutTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

// Rollover applies both writes inside one critical section.
func (s *Store) Rollover(_ context.Context, archived core.Transaction, next *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next != nil {
		s.transactions[next.ID] = *next
	}
	s.transactions[archived.ID] = archived
	return nil
}

func (s *Store) ListWallets(_ context.Context) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetWallet(_ context.Context, id string) (core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return core.Wallet{}, fmt.Errorf("get wallet %s: %w", id, core.ErrNotFound)
	}
	return w, nil
}

func (s *Store) PutWallet(_ context.Context, w core.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
	return nil
}

func (s *Store) DeleteWallet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[id]; !ok {
		return fmt.Errorf("delete wallet %s: %w", id, core.ErrNotFound)
	}
	delete(s.wallets, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) PutCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("delete category %s: %w", id, core.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListRates(_ context.Context) ([]core.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExchangeRate, 0, len(s.rates))
	for _, r := range s.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (s *Store) GetRate(_ context.Context, currency string) (core.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rates[strings.ToUpper(currency)]
	if !ok {
		return core.ExchangeRate{}, fmt.Errorf("get rate %s: %w", currency, core.ErrNotFound)
	}
	return r, nil
}

func (s *Store) PutRate(_ context.Context, r core.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Currency = strings.ToUpper(r.Currency)
	s.rates[r.Currency] = r
	return nil
}

func (s *Store) DeleteRate(_ context.Context, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := strings.ToUpper(currency)
	if _, ok := s.rates[code]; !ok {
		return fmt.Errorf("delete rate %s: %w", currency, core.ErrNotFound)
	}
	delete(s.rates, code)
	return nil
}

func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = map[string]core.Transaction{}
	s.wallets = map[string]core.Wallet{}
	s.categories = map[string]core.Category{}
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, snap core.Snapshot) error {
	transactions := make(map[string]core.Transaction, len(snap.Transactions))
	for _, t := range snap.Transactions {
		transactions[t.ID] = t
	}
	wallets := make(map[string]core.Wallet, len(snap.Wallets))
	for _, w := range snap.Wallets {
		wallets[w.ID] = w
	}
	categories := make(map[string]core.Category, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = transactions
	s.wallets = wallets
	s.categories = categories
	return nil
}
