package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"error": "forbidden", "message": "cannot read this message"}
//
// This makes it easy for clients to parse errors — they always know
// what fields to expect, regardless of the status code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/messagely/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "forbidden")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body — once Encode writes,
// the headers are on the wire.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code
// and sends it.
//
// This is the single place where the closed error taxonomy becomes the
// wire contract:
//
//	Validation / InvalidCredentials → 400
//	InvalidSignature / Malformed / Expired / Forbidden → 401
//	NotFound → 404
//	DuplicateUser → 409
//	Hashing and everything unknown → 500, generic body
//
// Forbidden deliberately maps to 401 and not 404: denying access to a
// real message confirms it exists, a disclosure this API accepts for
// the sake of honest semantics.
//
// The service layer never sees HTTP status codes; errors.As extracts
// the AppError anywhere in the wrap chain and errors.Is picks the kind.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusBadRequest
			errorType = "invalid_credentials"
		case errors.Is(err, apperror.ErrInvalidSignature),
			errors.Is(err, apperror.ErrMalformed),
			errors.Is(err, apperror.ErrExpired):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusUnauthorized
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrDuplicateUser):
			status = http.StatusConflict
			errorType = "duplicate_user"
		case errors.Is(err, apperror.ErrHashing):
			// Infrastructure fault — never expose the detail.
			message = "An internal error occurred"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
		})
		return
	}

	// Unknown error — return a generic 500. The raw message might
	// contain SQL or file paths; it goes to the log, not the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
