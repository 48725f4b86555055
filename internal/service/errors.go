package service

import "fmt"

// Error represents a business logic error with a stable machine code the API
// layer can map to a structured response.
type Error struct {
	Err     error
	Message string
	Code    string

	// Recorded reports whether a Failed transaction row was persisted for
	// the audit trail before this error surfaced.
	Recorded bool
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Err
}

// Caller-facing error codes.
const (
	CodeAccountNotFound            = "ACCOUNT_NOT_FOUND"
	CodeSourceAccountNotFound      = "SOURCE_ACCOUNT_NOT_FOUND"
	CodeDestinationAccountNotFound = "DESTINATION_ACCOUNT_NOT_FOUND"
	CodeTransactionNotFound        = "TRANSACTION_NOT_FOUND"
	CodeScheduleNotFound           = "SCHEDULE_NOT_FOUND"
	CodeLimitNotFound              = "LIMIT_NOT_FOUND"
	CodeCurrencyMismatch           = "CURRENCY_MISMATCH"
	CodeInvalidAmount              = "INVALID_AMOUNT"
	CodeLimitExceeded              = "LIMIT_EXCEEDED"
	CodeFraudDetected              = "FRAUD_DETECTED"
	CodeDepositFailed              = "DEPOSIT_FAILED"
	CodeWithdrawalFailed           = "WITHDRAWAL_FAILED"
	CodeTransferFailed             = "TRANSFER_FAILED"
	CodeReversalFailed             = "REVERSAL_FAILED"
	CodeSameAccount                = "SAME_ACCOUNT"
	CodeInternalError              = "INTERNAL_ERROR"
)

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func internalError(message string, err error) *Error {
	return &Error{Code: CodeInternalError, Message: message, Err: err}
}
