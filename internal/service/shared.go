package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// checkIdempotencyKey returns the recorded outcome of a prior request bearing
// the same key, or nil if the key is unused.
func checkIdempotencyKey(ctx context.Context, transactions repository.TransactionRepository, key string) (*TransactionResult, error) {
	if key == "" {
		return nil, nil
	}

	existing, err := transactions.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, internalError("failed to check idempotency key", err)
	}
	if existing == nil {
		return nil, nil
	}

	result := newTransactionResult(existing)
	result.Replayed = true
	return result, nil
}

// replayIdempotencyKey resolves the outcome recorded by whichever request won
// the insert race on the idempotency-key unique constraint.
func replayIdempotencyKey(ctx context.Context, transactions repository.TransactionRepository, key string) (*TransactionResult, error) {
	result, err := checkIdempotencyKey(ctx, transactions, key)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, newError(CodeInternalError, "idempotency key conflict without a recorded transaction")
	}
	return result, nil
}

// recordFailedTransaction persists a Failed transaction for the audit trail
// and returns the caller-facing error. The caller must still commit its unit
// of work so the record survives.
func recordFailedTransaction(ctx context.Context, transactions repository.TransactionRepository, txn *domain.Transaction, cause error, code string) error {
	if err := txn.MarkFailed(cause.Error()); err != nil {
		return internalError("failed to mark transaction failed", err)
	}
	if err := transactions.Create(ctx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return err
		}
		return internalError("failed to persist failed transaction", err)
	}

	return &Error{Code: code, Message: cause.Error(), Err: cause, Recorded: true}
}

// notifyReceipt sends a transaction receipt. Send failures are logged and
// swallowed.
func notifyReceipt(ctx context.Context, notifier Notifier, logger *slog.Logger, result *TransactionResult) {
	if notifier == nil {
		return
	}
	if err := notifier.TransactionReceipt(ctx, result); err != nil {
		logger.Warn("failed to send transaction receipt",
			"reference", result.ReferenceNumber,
			"error", err,
		)
	}
}
