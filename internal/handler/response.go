package handler

// RESPONSE HELPERS:
// Every API response uses the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "entry not found with id abc123"}
//
// One shape for everything means the frontend parses responses the same
// way regardless of status code. writeError is the single place where
// domain errors become HTTP status codes, so handlers never contain
// status-mapping switch statements of their own.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayakodama/wishboard/internal/apperror"
)

// envelope is the standard response shape for all API endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeData sends a success envelope with the given status code.
//
// Headers and status must be set BEFORE the body: once Encode writes the
// first byte, the headers are on the wire and changes are silently lost.
func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// decodeBody decodes a JSON request body into dst. Malformed JSON becomes
// a validation error; an AppError thrown by a custom UnmarshalJSON (bad
// timestamp, for instance) is passed through with its own message.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// writeError maps a domain error to its HTTP status code and sends the
// failure envelope.
//
// errors.Is() walks the whole chain (via Unwrap), so a service error like
//
//	fmt.Errorf("creating entry: %w", apperror.ValidationFailed(...))
//
// still matches apperror.ErrValidation here.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "an internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		if status != http.StatusInternalServerError {
			message = appErr.Message
		}
		// Unknown AppErrors fall through to the generic message: raw
		// error text can leak queries or file paths to the client.
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: message}); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}
