package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"

	Expense TransactionType = "expense"
	Income  TransactionType = "income"

	// DefaultHomeCurrency is the currency every total is normalised to.
	DefaultHomeCurrency = "PLN"

	maxCommentLength = 200
)

type (
	Frequency       string
	TransactionType string

	Transaction struct {
		ID           string          `json:"id"`
		Amount       decimal.Decimal `json:"amount"`
		Type         TransactionType `json:"type"`
		CategoryID   string          `json:"categoryId"`
		WalletID     string          `json:"walletId"`
		Date         time.Time       `json:"date"`
		Comment      string          `json:"comment,omitempty"`
		IsRecurring  bool            `json:"isRecurring"`
		WasRecurring bool            `json:"wasRecurring"`
		Frequency    Frequency       `json:"frequency,omitempty"`
	}

	Wallet struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Currency       string          `json:"currency"`
		InitialBalance decimal.Decimal `json:"initialBalance"`
	}

	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Icon  string          `json:"icon,omitempty"`
		Color string          `json:"color,omitempty"`
	}

	// ExchangeRate says that one unit of Currency equals Rate units of the home currency.
	ExchangeRate struct {
		Currency  string          `json:"currency"`
		Rate      decimal.Decimal `json:"rate"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrEmptyID          = errors.New("empty id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrEmptyName        = errors.New("empty name")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrCommentTooLong   = errors.New("comment too long (max 200 characters)")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

// Sign returns +1 for income and -1 for anything else.
func (t TransactionType) Sign() decimal.Decimal {
	if t == Income {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// SignedAmount is the amount with the sign its type contributes to a balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	return t.Amount.Mul(t.Type.Sign())
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if len(t.Comment) > maxCommentLength {
		return ErrCommentTooLong
	}
	if t.IsRecurring && !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if t.Frequency != "" && !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	if !ValidCurrencyCode(w.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (r ExchangeRate) Validate() error {
	if !ValidCurrencyCode(r.Currency) {
		return ErrInvalidCurrency
	}
	if !r.Rate.IsPositive() {
		return ErrInvalidRate
	}
	return nil
}

// ValidCurrencyCode reports whether code looks like an ISO 4217 code ("PLN", "USD").
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
