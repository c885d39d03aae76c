package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"portfel/internal/core"
	applog "portfel/internal/log"
	"portfel/internal/services"
	"portfel/internal/validator"
)

var errBadRequest = errors.New("bad request")

// domainValidation are the core errors caused by bad input.
var domainValidation = []error{
	core.ErrEmptyID,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidFrequency,
	core.ErrInvalidCurrency,
	core.ErrInvalidRate,
	core.ErrEmptyName,
	core.ErrZeroDate,
	core.ErrCommentTooLong,
}

func statusFor(err error) int {
	var verr *validator.Error
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrWalletInUse), errors.Is(err, services.ErrCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidSnapshot), errors.Is(err, errBadRequest), errors.As(err, &verr):
		return http.StatusBadRequest
	}
	for _, target := range domainValidation {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// fail maps err to a status. Server-side failures are logged and their
// details kept out of the response.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op, applog.FieldError, err)
		writeError(w, r, status, "internal error")
		return
	}
	writeError(w, r, status, err.Error())
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
	}
	return validator.Struct(dst)
}
