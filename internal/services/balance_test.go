package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(id, wallet string, typ core.TransactionType, amount string, date time.Time) core.Transaction {
	return core.Transaction{ID: id, WalletID: wallet, Type: typ, Amount: dec(amount), Date: date}
}

func TestComputeWalletBalances(t *testing.T) {
	day := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	wallets := []core.Wallet{
		{ID: "pln", Name: "Cash", Currency: "PLN", InitialBalance: dec("100")},
		{ID: "eur", Name: "Euro", Currency: "EUR", InitialBalance: dec("10")},
	}
	txs := []core.Transaction{
		tx("1", "pln", core.Income, "50", day),
		tx("2", "pln", core.Expense, "30", day),
		tx("3", "eur", core.Expense, "2.5", day),
		tx("4", "gone", core.Income, "999", day),
	}
	rates := core.RateMap{"PLN": dec("1"), "EUR": dec("4.3")}

	got := ComputeWalletBalances(context.Background(), wallets, txs, rates)

	if len(got.Wallets) != 2 {
		t.Fatalf("expected 2 wallet balances, got %d", len(got.Wallets))
	}
	if b := got.Wallets[0].Balance; !b.Equal(dec("120")) {
		t.Errorf("PLN balance = %s, want 120", b)
	}
	if b := got.Wallets[1].Balance; !b.Equal(dec("7.5")) {
		t.Errorf("EUR balance = %s, want 7.5", b)
	}
	if b := got.Wallets[1].BalanceInHome; !b.Equal(dec("32.25")) {
		t.Errorf("EUR balance in home = %s, want 32.25", b)
	}
	if !got.Total.Equal(dec("152.25")) {
		t.Errorf("total = %s, want 152.25", got.Total)
	}
}

func TestComputeWalletBalances_UnknownCurrencyUsesRateOne(t *testing.T) {
	wallets := []core.Wallet{{ID: "w", Name: "Crypto", Currency: "XYZ", InitialBalance: dec("42")}}

	got := ComputeWalletBalances(context.Background(), wallets, nil, core.RateMap{"PLN": dec("1")})

	if !got.Wallets[0].Rate.Equal(dec("1")) {
		t.Errorf("rate = %s, want 1", got.Wallets[0].Rate)
	}
	if !got.Total.Equal(dec("42")) {
		t.Errorf("total = %s, want 42", got.Total)
	}
}

func TestComputeWalletBalances_Empty(t *testing.T) {
	got := ComputeWalletBalances(context.Background(), nil, nil, nil)
	if !got.Total.IsZero() || len(got.Wallets) != 0 {
		t.Errorf("unexpected summary for no wallets: %+v", got)
	}
}

func TestBalanceHistory(t *testing.T) {
	w := core.Wallet{ID: "w", Currency: "PLN", InitialBalance: dec("100")}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("c", "w", core.Expense, "30", base.AddDate(0, 0, 2)),
		tx("a", "w", core.Income, "50", base),
		tx("x", "other", core.Income, "1", base),
		tx("b", "w", core.Expense, "20", base.AddDate(0, 0, 1)),
	}

	points := BalanceHistory(w, txs)
	want := []struct {
		id      string
		balance string
	}{{"a", "150"}, {"b", "130"}, {"c", "100"}}

	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p.TransactionID != want[i].id || !p.Balance.Equal(dec(want[i].balance)) {
			t.Errorf("point %d = %s/%s, want %s/%s", i, p.TransactionID, p.Balance, want[i].id, want[i].balance)
		}
	}

	if bal, ok := BalanceAsOf(w, txs, "b"); !ok || !bal.Equal(dec("130")) {
		t.Errorf("BalanceAsOf(b) = %s, %v", bal, ok)
	}
	if _, ok := BalanceAsOf(w, txs, "x"); ok {
		t.Error("BalanceAsOf should not find another wallet's transaction")
	}
}
