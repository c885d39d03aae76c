package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
	"portfel/internal/storage/memory"
)

type stubProvider struct {
	calls atomic.Int32
	rates map[string]decimal.Decimal
	err   error
	delay time.Duration
}

func (p *stubProvider) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.rates, p.err
}

func TestRateService_SyncStoresNormalizedRates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	provider := &stubProvider{rates: map[string]decimal.Decimal{
		"usd": dec("3.94"),
		"EUR": dec("4.31"),
		"PLN": dec("1"),
		"BAD": dec("0"),
	}}

	svc := NewRateService(provider, store, "PLN", time.Hour)
	snap, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if snap.Source != RateSourceRemote {
		t.Errorf("Source = %q, want remote", snap.Source)
	}
	if r, _ := snap.Rates.Lookup("PLN"); !r.Equal(dec("1")) {
		t.Errorf("home rate = %s, want 1", r)
	}
	if _, ok := snap.Rates.Lookup("BAD"); ok {
		t.Error("non-positive rate should be dropped")
	}

	stored, _ := store.ListRates(ctx)
	if len(stored) != 3 {
		t.Fatalf("expected USD, EUR, PLN stored, got %+v", stored)
	}
	usd, err := store.GetRate(ctx, "USD")
	if err != nil || !usd.Rate.Equal(dec("3.94")) {
		t.Errorf("stored USD = %+v, %v", usd, err)
	}
}

func TestRateService_NonPLNHomeRebasesTable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	provider := &stubProvider{rates: map[string]decimal.Decimal{
		"PLN": dec("1"),
		"EUR": dec("4.30"),
		"USD": dec("4.00"),
	}}

	svc := NewRateService(provider, store, "EUR", time.Hour)
	snap, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if r, _ := snap.Rates.Lookup("EUR"); !r.Equal(dec("1")) {
		t.Errorf("EUR rate = %s, want 1", r)
	}

	wallets := []core.Wallet{{ID: "usd", Name: "Dollars", Currency: "USD", InitialBalance: dec("100")}}
	got := ComputeWalletBalances(ctx, wallets, nil, snap.Rates)
	if total := got.Total.StringFixed(2); total != "93.02" {
		t.Errorf("total = %s EUR, want 93.02", total)
	}

	// Stored rates are already in EUR and must not be divided again.
	svc = NewRateService(&stubProvider{err: errors.New("offline")}, store, "EUR", time.Hour)
	fallback, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("fallback Sync: %v", err)
	}
	if fallback.Source != RateSourceStored {
		t.Fatalf("Source = %q, want stored", fallback.Source)
	}
	got = ComputeWalletBalances(ctx, wallets, nil, fallback.Rates)
	if total := got.Total.StringFixed(2); total != "93.02" {
		t.Errorf("total from stored rates = %s EUR, want 93.02", total)
	}
}

func TestRateService_FetchFailureFallsBackToStored(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	updated := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_ = store.PutRate(ctx, core.ExchangeRate{Currency: "USD", Rate: dec("4.01"), UpdatedAt: updated})

	svc := NewRateService(&stubProvider{err: errors.New("timeout")}, store, "PLN", time.Hour)
	snap, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snap.Source != RateSourceStored || !snap.FetchedAt.Equal(updated) {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if r, ok := snap.Rates.Lookup("USD"); !ok || !r.Equal(dec("4.01")) {
		t.Errorf("USD = %s, %v", r, ok)
	}
	if r, ok := snap.Rates.Lookup("PLN"); !ok || !r.Equal(dec("1")) {
		t.Errorf("home currency missing from fallback: %s, %v", r, ok)
	}
}

func TestRateService_CurrentUsesCache(t *testing.T) {
	provider := &stubProvider{rates: map[string]decimal.Decimal{"USD": dec("4")}}
	svc := NewRateService(provider, memory.New(), "PLN", time.Hour)

	for i := 0; i < 3; i++ {
		snap, err := svc.Current(context.Background())
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		// Callers get their own copy.
		snap.Rates["USD"] = dec("999")
	}
	if n := provider.calls.Load(); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
	snap, _ := svc.Current(context.Background())
	if r, _ := snap.Rates.Lookup("USD"); !r.Equal(dec("4")) {
		t.Errorf("cached map was mutated through a returned copy: %s", r)
	}

	svc.Invalidate()
	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("Current after invalidate: %v", err)
	}
	if n := provider.calls.Load(); n != 2 {
		t.Errorf("provider called %d times after invalidate, want 2", n)
	}
}

func TestRateService_ConcurrentSyncsShareOneFetch(t *testing.T) {
	provider := &stubProvider{rates: map[string]decimal.Decimal{"USD": dec("4")}, delay: 50 * time.Millisecond}
	svc := NewRateService(provider, memory.New(), "PLN", time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Sync(context.Background()); err != nil {
				t.Errorf("Sync: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := provider.calls.Load(); n >= 5 {
		t.Errorf("expected concurrent syncs to collapse, provider called %d times", n)
	}
}

func TestRateService_NilProviderServesStored(t *testing.T) {
	svc := NewRateService(nil, memory.New(), "", time.Hour)
	snap, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if svc.HomeCurrency() != core.DefaultHomeCurrency {
		t.Errorf("home = %q", svc.HomeCurrency())
	}
	if len(snap.Rates) != 1 {
		t.Errorf("expected only the home currency, got %v", snap.Rates)
	}
}
