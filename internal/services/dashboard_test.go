package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
	"portfel/internal/storage/memory"
)

func TestDashboardService_LoadMaterialisesDueSubscriptionsFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.PutWallet(ctx, core.Wallet{ID: "w-main", Name: "Main", Currency: "PLN", InitialBalance: dec("100")})
	_ = store.PutTransaction(ctx, subscription("sub", time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), core.Monthly))

	now := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	engine := NewRecurringEngine(store, WithLocation(time.UTC))
	rates := NewRateService(&stubProvider{rates: map[string]decimal.Decimal{"EUR": dec("4.3")}}, store, "PLN", time.Hour)
	svc := NewDashboardService(store, engine, rates, time.UTC)
	svc.now = func() time.Time { return now }

	guard := NewRecurringGuard()
	dash, err := svc.Load(ctx, guard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if dash.Recurring == nil || dash.Recurring.RolledOver != 1 {
		t.Fatalf("expected one rollover, got %+v", dash.Recurring)
	}
	// 100 - 29.99 (May) - 29.99 (June clone)
	if !dash.Balances.Total.Equal(dec("40.02")) {
		t.Errorf("total = %s, want 40.02", dash.Balances.Total)
	}
	if len(dash.Recent) != 2 || dash.HomeCurrency != "PLN" {
		t.Errorf("unexpected dashboard: recent=%d home=%s", len(dash.Recent), dash.HomeCurrency)
	}

	dash, err = svc.Load(ctx, guard)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if dash.Recurring != nil {
		t.Error("guard should skip the engine on the second load")
	}
}
