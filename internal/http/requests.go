package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfel/internal/core"
)

// amountText keeps an amount as typed so core can parse it. Clients may send
// a JSON number (12.5) or a string ("12,50").
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("amount must be a number or a string")
	}
	*a = amountText(n.String())
	return nil
}

type walletRequest struct {
	Name           string     `json:"name" validate:"notblank,max=60"`
	Currency       string     `json:"currency" validate:"currency"`
	InitialBalance amountText `json:"initialBalance" validate:"max=32"`
}

func (req walletRequest) wallet(id string) (core.Wallet, error) {
	balance, err := core.ParseSignedAmount(string(req.InitialBalance))
	if err != nil {
		return core.Wallet{}, err
	}
	return core.Wallet{
		ID:             id,
		Name:           req.Name,
		Currency:       req.Currency,
		InitialBalance: balance,
	}, nil
}

type categoryRequest struct {
	Name  string `json:"name" validate:"notblank,max=60"`
	Type  string `json:"type" validate:"txtype"`
	Icon  string `json:"icon" validate:"max=40"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (req categoryRequest) category() core.Category {
	return core.Category{
		Name:  req.Name,
		Type:  core.TransactionType(req.Type),
		Icon:  strings.TrimSpace(req.Icon),
		Color: req.Color,
	}
}

type transactionRequest struct {
	Amount      amountText `json:"amount" validate:"required,max=32"`
	Type        string     `json:"type" validate:"txtype"`
	CategoryID  string     `json:"categoryId" validate:"notblank,max=64"`
	WalletID    string     `json:"walletId" validate:"notblank,max=64"`
	Date        string     `json:"date"`
	Comment     string     `json:"comment" validate:"max=200"`
	IsRecurring bool       `json:"isRecurring"`
	Frequency   string     `json:"frequency" validate:"frequency"`
}

func (req transactionRequest) transaction(id string, now time.Time, loc *time.Location) (core.Transaction, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date, now, loc)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          id,
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		CategoryID:  req.CategoryID,
		WalletID:    req.WalletID,
		Date:        date,
		Comment:     strings.TrimSpace(req.Comment),
		IsRecurring: req.IsRecurring,
		Frequency:   core.Frequency(req.Frequency),
	}, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain date keeps
// the current time of day in loc, so entries picked for the same day still
// sort in the order they were made. Empty means "not given".
func parseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC 3339", errBadRequest)
	}
	clock := now.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), loc), nil
}
