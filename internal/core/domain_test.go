package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		ID:         "t1",
		Amount:     decimal.NewFromInt(10),
		Type:       Expense,
		CategoryID: "c1",
		WalletID:   "w1",
		Date:       time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	recurring := validTransaction()
	recurring.IsRecurring = true
	recurring.Frequency = Monthly
	if err := recurring.Validate(); err != nil {
		t.Fatalf("expected recurring ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"empty id", func(tx *Transaction) { tx.ID = " " }, ErrEmptyID},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"long comment", func(tx *Transaction) { tx.Comment = strings.Repeat("x", 201) }, ErrCommentTooLong},
		{"recurring without frequency", func(tx *Transaction) { tx.IsRecurring = true }, ErrInvalidFrequency},
		{"unknown frequency", func(tx *Transaction) { tx.Frequency = "daily" }, ErrInvalidFrequency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if err := tx.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSignedAmount(t *testing.T) {
	tx := validTransaction()
	if got := tx.SignedAmount(); !got.Equal(decimal.NewFromInt(-10)) {
		t.Fatalf("expense signed amount = %s", got)
	}
	tx.Type = Income
	if got := tx.SignedAmount(); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("income signed amount = %s", got)
	}
}

func TestWalletAndCategoryValidate(t *testing.T) {
	good := Wallet{ID: "w1", Name: "Cash", Currency: "PLN"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for i, w := range []Wallet{
		{ID: "", Name: "Cash", Currency: "PLN"},
		{ID: "w1", Name: " ", Currency: "PLN"},
		{ID: "w1", Name: "Cash", Currency: "pln"},
		{ID: "w1", Name: "Cash", Currency: "EURO"},
	} {
		if err := w.Validate(); err == nil {
			t.Fatalf("wallet case %d expected error", i)
		}
	}

	if err := (Category{ID: "c1", Name: "Food", Type: Expense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{ID: "c1", Name: "Food", Type: "other"}).Validate(); err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestLookupsReportMissing(t *testing.T) {
	wallets := IndexWallets([]Wallet{{ID: "w1", Name: "Cash", Currency: "PLN"}})
	if _, ok := wallets.Find("w1"); !ok {
		t.Fatal("expected w1 to be found")
	}
	if _, ok := wallets.Find("gone"); ok {
		t.Fatal("expected dangling wallet to be reported missing")
	}

	cats := IndexCategories([]Category{{ID: "c1", Name: "Food", Type: Expense}})
	if got := cats.NameOf("c1"); got != "Food" {
		t.Fatalf("NameOf(c1) = %q", got)
	}
	if got := cats.NameOf("gone"); got != UncategorizedName {
		t.Fatalf("NameOf(gone) = %q", got)
	}
}

func TestNormalizeRates(t *testing.T) {
	in := map[string]decimal.Decimal{
		"usd": decimal.RequireFromString("3.9432"),
		"PLN": decimal.NewFromInt(1),
		"XX":  decimal.NewFromInt(2),
		"EUR": decimal.Zero,
	}
	rates := NormalizeRates(in, "PLN")

	if r, ok := rates.Lookup("PLN"); !ok || !r.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("home rate = %v (ok=%v), want 1", r, ok)
	}
	if r, ok := rates.Lookup("USD"); !ok || !r.Equal(decimal.RequireFromString("3.9432")) {
		t.Fatalf("USD rate = %v (ok=%v)", r, ok)
	}
	if _, ok := rates.Lookup("EUR"); ok {
		t.Fatal("zero rate should be dropped")
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d: %v", len(rates), rates)
	}
}

func TestNormalizeRates_Rebase(t *testing.T) {
	nbp := map[string]decimal.Decimal{
		"PLN": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("4.30"),
		"USD": decimal.RequireFromString("4.00"),
	}

	tests := []struct {
		name   string
		home   string
		code   string
		amount string
		want   string
	}{
		{name: "pln home keeps table values", home: "PLN", code: "USD", amount: "100", want: "400.00"},
		{name: "eur home converts usd through eur", home: "EUR", code: "USD", amount: "100", want: "93.02"},
		{name: "eur home converts pln", home: "eur", code: "PLN", amount: "43", want: "10.00"},
		{name: "home itself is one", home: "EUR", code: "EUR", amount: "12.34", want: "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := NormalizeRates(nbp, tt.home)
			rate, ok := rates.Lookup(tt.code)
			if !ok {
				t.Fatalf("no rate for %s in %v", tt.code, rates)
			}
			got := decimal.RequireFromString(tt.amount).Mul(rate).StringFixed(2)
			if got != tt.want {
				t.Errorf("%s %s in %s = %s, want %s", tt.amount, tt.code, tt.home, got, tt.want)
			}
		})
	}
}

func TestNormalizeRates_StoredRatesAreStable(t *testing.T) {
	first := NormalizeRates(map[string]decimal.Decimal{
		"PLN": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("4.30"),
		"USD": decimal.RequireFromString("4.00"),
	}, "EUR")

	again := NormalizeRates(first, "EUR")
	for code, rate := range first {
		if !again[code].Equal(rate) {
			t.Errorf("%s drifted from %v to %v", code, rate, again[code])
		}
	}
}
