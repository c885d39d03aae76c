package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

type WalletBalance struct {
	Wallet        core.Wallet     `json:"wallet"`
	Balance       decimal.Decimal `json:"balance"`
	Rate          decimal.Decimal `json:"rate"`
	BalanceInHome decimal.Decimal `json:"balanceInHome"`
}

type BalanceSummary struct {
	Wallets []WalletBalance `json:"wallets"`
	Total   decimal.Decimal `json:"total"`
}

// ComputeWalletBalances derives each wallet's balance from its initial balance
// and transactions, converts it to the home currency and sums the total.
func ComputeWalletBalances(ctx context.Context, wallets []core.Wallet, transactions []core.Transaction, rates core.RateMap) BalanceSummary {
	sums := make(map[string]decimal.Decimal, len(wallets))
	for _, t := range transactions {
		sums[t.WalletID] = sums[t.WalletID].Add(t.SignedAmount())
	}

	summary := BalanceSummary{
		Wallets: make([]WalletBalance, 0, len(wallets)),
		Total:   decimal.Zero,
	}
	for _, w := range wallets {
		balance := w.InitialBalance.Add(sums[w.ID])
		rate := rateFor(ctx, rates, w.Currency)
		inHome := balance.Mul(rate)

		summary.Wallets = append(summary.Wallets, WalletBalance{
			Wallet:        w,
			Balance:       balance,
			Rate:          rate,
			BalanceInHome: inHome,
		})
		summary.Total = summary.Total.Add(inHome)
	}
	return summary
}

// rateFor falls back to 1 for currencies without a rate. The warning makes a
// silently unconverted balance visible in the logs.
func rateFor(ctx context.Context, rates core.RateMap, currency string) decimal.Decimal {
	if r, ok := rates.Lookup(currency); ok {
		return r
	}
	slog.WarnContext(ctx, "No exchange rate for currency, using 1", "currency", currency)
	return decimal.NewFromInt(1)
}

// BalanceHistory returns the wallet's running balance after each of its
// transactions, oldest first. Transactions sharing a timestamp keep their
// input order.
func BalanceHistory(wallet core.Wallet, transactions []core.Transaction) []core.BalancePoint {
	own := make([]core.Transaction, 0)
	for _, t := range transactions {
		if t.WalletID == wallet.ID {
			own = append(own, t)
		}
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].Date.Before(own[j].Date) })

	points := make([]core.BalancePoint, 0, len(own))
	running := wallet.InitialBalance
	for _, t := range own {
		running = running.Add(t.SignedAmount())
		points = append(points, core.BalancePoint{
			TransactionID: t.ID,
			Date:          t.Date,
			Balance:       running,
		})
	}
	return points
}

// BalanceAsOf is the wallet balance right after txID was applied.
func BalanceAsOf(wallet core.Wallet, transactions []core.Transaction, txID string) (decimal.Decimal, bool) {
	for _, p := range BalanceHistory(wallet, transactions) {
		if p.TransactionID == txID {
			return p.Balance, true
		}
	}
	return decimal.Zero, false
}
