// Package domain holds the ledger core aggregates and value objects.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repositories.
var (
	// ErrNotFound indicates the requested entity was not found or is soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdempotencyKey indicates a transaction bearing the same
	// idempotency key has already been persisted. The unique constraint on the
	// column is the authoritative guard; this error is how it surfaces.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// Domain error codes. These identify which rule was violated; the service
// layer maps them to caller-facing codes where the two differ.
const (
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency    = "INVALID_CURRENCY"
	ErrCodeCurrencyMismatch   = "CURRENCY_MISMATCH"
	ErrCodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	ErrCodeAccountFrozen      = "ACCOUNT_FROZEN"
	ErrCodeAccountClosed      = "ACCOUNT_CLOSED"
	ErrCodeLimitExceeded      = "LIMIT_EXCEEDED"
	ErrCodeSameAccount        = "SAME_ACCOUNT"
	ErrCodeInvalidAccountType = "INVALID_ACCOUNT_TYPE"
	ErrCodeInvalidState       = "INVALID_STATE"
)

// Error is a domain rule violation. Messages are user-safe and may be
// surfaced to callers directly.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error with a stable code.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a domain error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
