package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidState = errors.New("operation not valid for current status")
	ErrExpired      = errors.New("payment has expired")
	ErrLedger       = errors.New("ledger submission failed")
	ErrNotification = errors.New("webhook delivery failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("resource already exists")
)

// Is re-exports errors.Is so callers of this package need no second import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As re-exports errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// AppError represents an application error with an HTTP status
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes the sentinel so callers can test with errors.Is.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

// Validation marks malformed input. Never retried, never persisted.
func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// InvalidState marks an operation that is illegal for the session's current
// status, including transitions out of a terminal state.
func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrInvalidState)
}

// Expired is distinct from InvalidState so clients can show "expired"
// instead of a generic conflict.
func Expired(message string) *AppError {
	return NewAppError(http.StatusGone, message, ErrExpired)
}

// Ledger wraps a failure from the external ledger service. The session is
// always reconciled to a known state before this propagates.
func Ledger(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: message,
		Err:     errors.Join(ErrLedger, err),
	}
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrConflict)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}
