package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the closed failure taxonomy. Every failure the
// service layer can return wraps exactly one of these, so callers can
// match the full set with errors.Is instead of parsing strings.
var (
	ErrDuplicateUser      = errors.New("duplicate user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrMalformed          = errors.New("malformed token")
	ErrExpired            = errors.New("token expired")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrHashing            = errors.New("hashing failure")
	ErrValidation         = errors.New("validation error")
)

type AppError struct {
	Err     error  // sentinel from the taxonomy above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// DuplicateUser reports a registration attempt for a username that
// already exists.
func DuplicateUser(username string) *AppError {
	return &AppError{
		Err:     ErrDuplicateUser,
		Message: fmt.Sprintf("username %s is already taken", username),
	}
}

// InvalidCredentials reports a failed login. The message deliberately
// carries no hint of whether the username exists.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid username/password",
	}
}

func InvalidSignature() *AppError {
	return &AppError{
		Err:     ErrInvalidSignature,
		Message: "token signature is invalid",
	}
}

func Malformed() *AppError {
	return &AppError{
		Err:     ErrMalformed,
		Message: "token could not be parsed",
	}
}

func Expired() *AppError {
	return &AppError{
		Err:     ErrExpired,
		Message: "token has expired",
	}
}

// Forbidden returns an AppError indicating the caller is authenticated
// but not authorized for the specific resource or action.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Hashing reports an infrastructure fault in the password hasher.
// Fatal to the request; the message is logged, never sent to clients.
func Hashing(cause error) *AppError {
	return &AppError{
		Err:     ErrHashing,
		Message: fmt.Sprintf("password hashing failed: %v", cause),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}
