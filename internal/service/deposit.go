// Package service implements the money-movement use-cases of the ledger
// core. Each use-case executes as one atomic unit of work: all decisioning
// reads and all writes commit together or not at all.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// DepositService handles deposits. Incoming funds are not subject to limit
// or fraud checks.
type DepositService struct {
	db       *db.DB
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger
}

// NewDepositService creates a new DepositService
func NewDepositService(database *db.DB, clk clock.Clock, notifier Notifier, logger *slog.Logger) *DepositService {
	return &DepositService{
		db:       database,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// Deposit credits an account and records a transaction, atomically.
func (s *DepositService) Deposit(ctx context.Context, p DepositParams) (*TransactionResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	accounts := repository.NewAccountRepository(tx)
	transactions := repository.NewTransactionRepository(tx)

	result, err := s.performDeposit(ctx, accounts, transactions, p)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			// Lost the insert race on the key's unique constraint; the
			// recorded outcome is authoritative.
			_ = tx.Rollback() //nolint:errcheck
			return replayIdempotencyKey(ctx, repository.NewTransactionRepository(s.db), p.IdempotencyKey)
		}

		var svcErr *Error
		if errors.As(err, &svcErr) && svcErr.Recorded {
			if cerr := tx.Commit(); cerr != nil {
				return nil, internalError("failed to commit transaction", cerr)
			}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction", err)
	}

	if result.Status == domain.TransactionStatusCompleted && !result.Replayed {
		notifyReceipt(ctx, s.notifier, s.logger, result)
	}

	return result, nil
}

// performDeposit contains the core deposit business logic
func (s *DepositService) performDeposit(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	p DepositParams,
) (*TransactionResult, error) {
	if replayed, err := checkIdempotencyKey(ctx, transactions, p.IdempotencyKey); err != nil || replayed != nil {
		return replayed, err
	}

	if !p.Amount.IsPositive() {
		return nil, newError(CodeInvalidAmount, "amount must be greater than zero")
	}
	amount, err := domain.NewMoney(p.Amount, p.Currency)
	if err != nil {
		return nil, wrapError(CodeInvalidAmount, err)
	}

	account, err := accounts.FindByIDForUpdate(ctx, p.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to load account", err)
	}

	txn := domain.NewDeposit(account.ID, amount, p.Description, p.IdempotencyKey, s.clock.Now())

	if derr := account.Deposit(amount); derr != nil {
		return nil, recordFailedTransaction(ctx, transactions, txn, derr, CodeDepositFailed)
	}

	if err := txn.MarkCompleted(nil, &account.Balance); err != nil {
		return nil, internalError("failed to finalize transaction", err)
	}
	if err := transactions.Create(ctx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return nil, err
		}
		return nil, internalError("failed to create transaction", err)
	}
	if err := accounts.Save(ctx, account); err != nil {
		return nil, internalError("failed to save account", err)
	}

	return newTransactionResult(txn), nil
}
