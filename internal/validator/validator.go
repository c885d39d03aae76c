// Package validator holds the shared request validator with the custom
// rules used by API payloads.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"portfel/internal/core"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// ISO-style currency code, case-insensitive: "PLN", "usd".
	_ = Validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return core.ValidCurrencyCode(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})

	// Empty is allowed; otherwise one of the known recurrence frequencies.
	_ = Validate.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || core.Frequency(s).Valid()
	})

	_ = Validate.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
		return core.TransactionType(fl.Field().String()).Valid()
	})

	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Struct validates s and flattens the failures into "field: rule" pairs.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fe.Tag())
	}
	return &Error{Fields: msgs}
}

// Error lists every failed field of a payload.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return "invalid request: " + strings.Join(e.Fields, ", ")
}
