package services

import (
	"context"
	"testing"
	"time"

	"portfel/internal/core"
)

func TestComputeMonthlyStats(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, 5, 28, 0, 0, 0, 0, time.UTC)
	rates := core.RateMap{"PLN": dec("1"), "EUR": dec("4")}

	tests := []struct {
		name         string
		wallets      []core.Wallet
		txs          []core.Transaction
		wantPercent  string
		wantPositive bool
		wantNeutral  bool
	}{
		{
			name:        "no activity from zero is neutral",
			wallets:     []core.Wallet{{ID: "w", Currency: "PLN"}},
			wantPercent: "0.0",
			wantNeutral: true,
		},
		{
			name:    "savings rate when baseline is zero",
			wallets: []core.Wallet{{ID: "w", Currency: "PLN"}},
			txs: []core.Transaction{
				tx("i", "w", core.Income, "1000", thisMonth),
				tx("e", "w", core.Expense, "200", thisMonth),
			},
			wantPercent:  "80.0",
			wantPositive: true,
		},
		{
			name:        "pure loss from zero baseline",
			wallets:     []core.Wallet{{ID: "w", Currency: "PLN"}},
			txs:         []core.Transaction{tx("e", "w", core.Expense, "0.5", thisMonth)},
			wantPercent: "100.0",
		},
		{
			name:         "percentage growth over baseline",
			wallets:      []core.Wallet{{ID: "w", Currency: "PLN", InitialBalance: dec("1000")}},
			txs:          []core.Transaction{tx("i", "w", core.Income, "100", thisMonth)},
			wantPercent:  "10.0",
			wantPositive: true,
		},
		{
			name:        "percentage drop over baseline",
			wallets:     []core.Wallet{{ID: "w", Currency: "PLN", InitialBalance: dec("1000")}},
			txs:         []core.Transaction{tx("e", "w", core.Expense, "250", thisMonth)},
			wantPercent: "25.0",
		},
		{
			name:    "previous month is part of the baseline",
			wallets: []core.Wallet{{ID: "w", Currency: "PLN"}},
			txs: []core.Transaction{
				tx("old", "w", core.Income, "200", lastMonth),
				tx("new", "w", core.Income, "50", thisMonth),
			},
			wantPercent:  "25.0",
			wantPositive: true,
		},
		{
			name:    "amounts converted with the wallet rate",
			wallets: []core.Wallet{{ID: "eur", Currency: "EUR", InitialBalance: dec("100")}},
			// total 400 + 40 = 440 PLN, baseline 400 PLN
			txs:          []core.Transaction{tx("i", "eur", core.Income, "10", thisMonth)},
			wantPercent:  "10.0",
			wantPositive: true,
		},
		{
			name:    "dangling wallet converts at rate one",
			wallets: []core.Wallet{{ID: "w", Currency: "PLN", InitialBalance: dec("500")}},
			// the orphan does not count toward balances but does count as this month's movement
			txs:         []core.Transaction{tx("o", "missing", core.Expense, "100", thisMonth)},
			wantPercent: "16.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			balances := ComputeWalletBalances(ctx, tt.wallets, tt.txs, rates)
			got := ComputeMonthlyStats(ctx, balances, tt.txs, rates, now, time.UTC)

			if got.Percent != tt.wantPercent {
				t.Errorf("Percent = %q, want %q", got.Percent, tt.wantPercent)
			}
			if got.IsPositive != tt.wantPositive {
				t.Errorf("IsPositive = %v, want %v", got.IsPositive, tt.wantPositive)
			}
			if got.IsNeutral != tt.wantNeutral {
				t.Errorf("IsNeutral = %v, want %v", got.IsNeutral, tt.wantNeutral)
			}
		})
	}
}

func TestComputeMonthlyStats_UsesCalendarOfLocation(t *testing.T) {
	// 23:30 UTC on May 31 is already June at UTC+2.
	plusTwo := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, plusTwo)
	wallets := []core.Wallet{{ID: "w", Currency: "PLN"}}
	txs := []core.Transaction{tx("i", "w", core.Income, "100", time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC))}
	rates := core.RateMap{"PLN": dec("1")}

	balances := ComputeWalletBalances(context.Background(), wallets, txs, rates)
	got := ComputeMonthlyStats(context.Background(), balances, txs, rates, now, plusTwo)

	if !got.Income.Equal(dec("100")) {
		t.Errorf("Income = %s, want 100 (transaction falls in June locally)", got.Income)
	}
	if got.Percent != "100.0" || !got.IsPositive {
		t.Errorf("unexpected stats: %+v", got)
	}
}
