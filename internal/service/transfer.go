package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// TransferService handles transfers between two accounts of one currency.
// Currency conversion is never performed; a mismatch is a hard rejection.
type TransferService struct {
	db       *db.DB
	limits   *LimitChecker
	fraud    *FraudScorer
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	database *db.DB,
	limits *LimitChecker,
	fraud *FraudScorer,
	clk clock.Clock,
	notifier Notifier,
	logger *slog.Logger,
) *TransferService {
	return &TransferService{
		db:       database,
		limits:   limits,
		fraud:    fraud,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// Transfer moves money between two accounts and records a transaction,
// atomically.
func (s *TransferService) Transfer(ctx context.Context, p TransferParams) (*TransactionResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	accounts := repository.NewAccountRepository(tx)
	transactions := repository.NewTransactionRepository(tx)
	limits := repository.NewTransactionLimitRepository(tx)

	result, err := s.performTransfer(ctx, accounts, transactions, limits, p)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
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

// performTransfer contains the core transfer business logic
func (s *TransferService) performTransfer(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	limits repository.TransactionLimitRepository,
	p TransferParams,
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

	if p.SourceAccountID == p.DestinationAccountID {
		return nil, newError(CodeSameAccount, "cannot transfer to the same account")
	}

	source, destination, err := s.lockAccounts(ctx, accounts, p)
	if err != nil {
		return nil, err
	}

	if source.Currency != destination.Currency {
		return nil, newError(CodeCurrencyMismatch, "cannot transfer between accounts with different currencies")
	}
	if amount.Currency() != source.Currency {
		return nil, newError(CodeCurrencyMismatch,
			"transfer currency ("+amount.Currency()+") does not match account currency ("+source.Currency+")")
	}

	limitResult, err := s.limits.Check(ctx, limits, transactions, source, domain.TransactionTypeTransfer, amount.Amount())
	if err != nil {
		return nil, internalError("failed to evaluate transaction limits", err)
	}
	if !limitResult.Allowed {
		return nil, newError(CodeLimitExceeded, limitResult.Reason())
	}

	fraudResult, err := s.fraud.Score(ctx, transactions, source, domain.TransactionTypeTransfer, amount.Amount(), &destination.ID)
	if err != nil {
		return nil, internalError("failed to score transaction risk", err)
	}
	if !fraudResult.Allowed {
		return nil, newError(CodeFraudDetected, fraudResult.BlockReason)
	}
	if fraudResult.RequiresManualReview {
		s.logger.Warn("transfer requires manual review",
			"source_account_id", source.ID,
			"risk_level", fraudResult.RiskLevel,
			"flags", fraudResult.Flags,
		)
	}

	txn, err := domain.NewTransfer(source.ID, destination.ID, amount, p.Description, p.IdempotencyKey, s.clock.Now())
	if err != nil {
		return nil, wrapError(CodeSameAccount, err)
	}

	if derr := source.Withdraw(amount, s.clock.Now()); derr != nil {
		return nil, recordFailedTransaction(ctx, transactions, txn, derr, CodeTransferFailed)
	}
	if derr := destination.Deposit(amount); derr != nil {
		return nil, recordFailedTransaction(ctx, transactions, txn, derr, CodeTransferFailed)
	}

	if err := txn.MarkCompleted(&source.Balance, &destination.Balance); err != nil {
		return nil, internalError("failed to finalize transaction", err)
	}
	if err := transactions.Create(ctx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return nil, err
		}
		return nil, internalError("failed to create transaction", err)
	}
	if err := accounts.Save(ctx, source); err != nil {
		return nil, internalError("failed to save source account", err)
	}
	if err := accounts.Save(ctx, destination); err != nil {
		return nil, internalError("failed to save destination account", err)
	}

	return newTransactionResult(txn), nil
}

// lockAccounts loads both accounts with row locks, always locking in a
// stable order so two opposing transfers cannot deadlock.
func (s *TransferService) lockAccounts(
	ctx context.Context,
	accounts repository.AccountRepository,
	p TransferParams,
) (source, destination *domain.Account, err error) {
	load := func(id uuid.UUID) (*domain.Account, error) {
		account, err := accounts.FindByIDForUpdate(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			if id == p.SourceAccountID {
				return nil, newError(CodeSourceAccountNotFound, "source account not found")
			}
			return nil, newError(CodeDestinationAccountNotFound, "destination account not found")
		}
		if err != nil {
			return nil, internalError("failed to load account", err)
		}
		return account, nil
	}

	first, second := p.SourceAccountID, p.DestinationAccountID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}

	a1, err := load(first)
	if err != nil {
		return nil, nil, err
	}
	a2, err := load(second)
	if err != nil {
		return nil, nil, err
	}

	if a1.ID == p.SourceAccountID {
		return a1, a2, nil
	}
	return a2, a1, nil
}
