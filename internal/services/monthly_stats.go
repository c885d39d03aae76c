package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

// MonthlyStats is the dashboard trend indicator for the current calendar month.
type MonthlyStats struct {
	CurrentTotal decimal.Decimal `json:"currentTotal"`
	NetChange    decimal.Decimal `json:"netChange"`
	Income       decimal.Decimal `json:"income"`
	Percent      string          `json:"percent"`
	IsPositive   bool            `json:"isPositive"`
	IsNeutral    bool            `json:"isNeutral"`
}

var (
	hundred      = decimal.NewFromInt(100)
	baselineZero = decimal.NewFromInt(1)
)

// ComputeMonthlyStats compares the current total with the total at the start
// of now's month in loc. When that baseline is within 1 of zero a percentage
// change is meaningless, so the indicator switches to a savings rate.
func ComputeMonthlyStats(ctx context.Context, balances BalanceSummary, transactions []core.Transaction, rates core.RateMap, now time.Time, loc *time.Location) MonthlyStats {
	if loc == nil {
		loc = time.Local
	}

	walletRates := make(map[string]decimal.Decimal, len(balances.Wallets))
	for _, wb := range balances.Wallets {
		rate := wb.Rate
		if !rate.IsPositive() {
			rate = rateFor(ctx, rates, wb.Wallet.Currency)
		}
		walletRates[wb.Wallet.ID] = rate
	}

	netChange := decimal.Zero
	income := decimal.Zero
	for _, t := range transactions {
		if !core.SameMonth(t.Date, now, loc) {
			continue
		}
		rate, ok := walletRates[t.WalletID]
		if !ok {
			rate = decimal.NewFromInt(1)
		}
		amount := t.Amount.Mul(rate)
		if t.Type == core.Income {
			netChange = netChange.Add(amount)
			income = income.Add(amount)
		} else {
			netChange = netChange.Sub(amount)
		}
	}

	stats := MonthlyStats{
		CurrentTotal: balances.Total,
		NetChange:    netChange,
		Income:       income,
	}

	start := balances.Total.Sub(netChange)
	switch {
	case start.Abs().GreaterThan(baselineZero):
		change := balances.Total.Sub(start).Div(start.Abs()).Mul(hundred)
		stats.Percent = change.Abs().StringFixed(1)
		stats.IsPositive = balances.Total.GreaterThan(start)
	case income.IsZero() && netChange.IsZero():
		stats.Percent = "0.0"
		stats.IsNeutral = true
	case income.IsZero():
		stats.Percent = "100.0"
	default:
		savings := balances.Total.Div(income).Mul(hundred)
		stats.Percent = savings.Abs().StringFixed(1)
		stats.IsPositive = !savings.IsNegative()
	}
	return stats
}
