package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfel/internal/core"
)

// Ledger columns: Date, Type, Amount, Currency, Wallet, Category, Comment,
// Frequency, Transaction ID.
func entryRow(e core.LedgerEntry, loc *time.Location) []any {
	amount := e.Amount
	if e.Type == core.Expense {
		amount = amount.Neg()
	}
	return []any{
		e.Date.In(loc).Format("2006-01-02"),
		string(e.Type),
		amount.StringFixed(2),
		e.Currency,
		e.Wallet,
		e.Category,
		e.Comment,
		string(e.Frequency),
		e.TransactionID,
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
