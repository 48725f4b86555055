package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// ReversalService compensates completed transactions. A reversal is an
// administrative operation: it moves the money back through the accounts'
// normal mutation rules, records a Reversal transaction linked to the
// original, and marks the original Reversed.
type ReversalService struct {
	db       *db.DB
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger
}

// NewReversalService creates a new ReversalService
func NewReversalService(database *db.DB, clk clock.Clock, notifier Notifier, logger *slog.Logger) *ReversalService {
	return &ReversalService{
		db:       database,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// Reverse compensates a completed transaction, atomically.
func (s *ReversalService) Reverse(ctx context.Context, p ReverseParams) (*TransactionResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	accounts := repository.NewAccountRepository(tx)
	transactions := repository.NewTransactionRepository(tx)

	result, err := s.performReverse(ctx, accounts, transactions, p)
	if err != nil {
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

	if result.Status == domain.TransactionStatusCompleted {
		notifyReceipt(ctx, s.notifier, s.logger, result)
	}

	return result, nil
}

// performReverse contains the core reversal business logic
func (s *ReversalService) performReverse(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	p ReverseParams,
) (*TransactionResult, error) {
	original, err := transactions.FindByID(ctx, p.TransactionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeTransactionNotFound, "transaction not found")
	}
	if err != nil {
		return nil, internalError("failed to load transaction", err)
	}

	reversal, err := domain.NewReversal(original, p.Description, s.clock.Now())
	if err != nil {
		return nil, wrapError(CodeReversalFailed, err)
	}

	amount, err := domain.NewMoney(reversal.Amount, reversal.Currency)
	if err != nil {
		return nil, internalError("invalid recorded amount", err)
	}

	// The reversal's source held the original credit; the reversal's
	// destination gets the original debit back. A deposit or withdrawal has
	// only one side. Both accounts mutate before either is saved so a
	// rejection on either side leaves only the Failed reversal record.
	var source, destination *domain.Account
	var srcAfter, dstAfter *decimal.Decimal

	// Locks follow the same stable UUID ordering transfers use.
	lockFirstSource := true
	if reversal.SourceAccountID != nil && reversal.DestinationAccountID != nil {
		src, dst := *reversal.SourceAccountID, *reversal.DestinationAccountID
		lockFirstSource = bytes.Compare(src[:], dst[:]) <= 0
	}

	if reversal.SourceAccountID != nil && lockFirstSource {
		source, err = s.lockAccount(ctx, accounts, *reversal.SourceAccountID)
		if err != nil {
			return nil, err
		}
	}
	if reversal.DestinationAccountID != nil {
		destination, err = s.lockAccount(ctx, accounts, *reversal.DestinationAccountID)
		if err != nil {
			return nil, err
		}
	}
	if reversal.SourceAccountID != nil && !lockFirstSource {
		source, err = s.lockAccount(ctx, accounts, *reversal.SourceAccountID)
		if err != nil {
			return nil, err
		}
	}

	if source != nil {
		if derr := source.Withdraw(amount, s.clock.Now()); derr != nil {
			return nil, recordFailedTransaction(ctx, transactions, reversal, derr, CodeReversalFailed)
		}
		srcAfter = &source.Balance
	}
	if destination != nil {
		if derr := destination.Deposit(amount); derr != nil {
			return nil, recordFailedTransaction(ctx, transactions, reversal, derr, CodeReversalFailed)
		}
		dstAfter = &destination.Balance
	}

	if err := reversal.MarkCompleted(srcAfter, dstAfter); err != nil {
		return nil, internalError("failed to finalize reversal", err)
	}
	if err := transactions.Create(ctx, reversal); err != nil {
		return nil, internalError("failed to create reversal", err)
	}
	if source != nil {
		if err := accounts.Save(ctx, source); err != nil {
			return nil, internalError("failed to save account", err)
		}
	}
	if destination != nil {
		if err := accounts.Save(ctx, destination); err != nil {
			return nil, internalError("failed to save account", err)
		}
	}

	if err := original.MarkReversed(); err != nil {
		return nil, wrapError(CodeReversalFailed, err)
	}
	if err := transactions.Save(ctx, original); err != nil {
		return nil, internalError("failed to save original transaction", err)
	}

	return newTransactionResult(reversal), nil
}

func (s *ReversalService) lockAccount(ctx context.Context, accounts repository.AccountRepository, id uuid.UUID) (*domain.Account, error) {
	account, err := accounts.FindByIDForUpdate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to load account", err)
	}
	return account, nil
}
