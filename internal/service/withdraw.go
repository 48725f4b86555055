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

// WithdrawService handles withdrawals. Outgoing funds pass the limit
// evaluator and fraud scorer before any balance mutation.
type WithdrawService struct {
	db       *db.DB
	limits   *LimitChecker
	fraud    *FraudScorer
	clock    clock.Clock
	notifier Notifier
	logger   *slog.Logger
}

// NewWithdrawService creates a new WithdrawService
func NewWithdrawService(
	database *db.DB,
	limits *LimitChecker,
	fraud *FraudScorer,
	clk clock.Clock,
	notifier Notifier,
	logger *slog.Logger,
) *WithdrawService {
	return &WithdrawService{
		db:       database,
		limits:   limits,
		fraud:    fraud,
		clock:    clk,
		notifier: notifier,
		logger:   logger,
	}
}

// Withdraw debits an account and records a transaction, atomically.
func (s *WithdrawService) Withdraw(ctx context.Context, p WithdrawParams) (*TransactionResult, error) {
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

	result, err := s.performWithdraw(ctx, accounts, transactions, limits, p)
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

// performWithdraw contains the core withdrawal business logic
func (s *WithdrawService) performWithdraw(
	ctx context.Context,
	accounts repository.AccountRepository,
	transactions repository.TransactionRepository,
	limits repository.TransactionLimitRepository,
	p WithdrawParams,
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

	limitResult, err := s.limits.Check(ctx, limits, transactions, account, domain.TransactionTypeWithdrawal, amount.Amount())
	if err != nil {
		return nil, internalError("failed to evaluate transaction limits", err)
	}
	if !limitResult.Allowed {
		return nil, newError(CodeLimitExceeded, limitResult.Reason())
	}

	fraudResult, err := s.fraud.Score(ctx, transactions, account, domain.TransactionTypeWithdrawal, amount.Amount(), nil)
	if err != nil {
		return nil, internalError("failed to score transaction risk", err)
	}
	if !fraudResult.Allowed {
		return nil, newError(CodeFraudDetected, fraudResult.BlockReason)
	}
	if fraudResult.RequiresManualReview {
		s.logger.Warn("withdrawal requires manual review",
			"account_id", account.ID,
			"risk_level", fraudResult.RiskLevel,
			"flags", fraudResult.Flags,
		)
	}

	txn := domain.NewWithdrawal(account.ID, amount, p.Description, p.IdempotencyKey, s.clock.Now())

	if derr := account.Withdraw(amount, s.clock.Now()); derr != nil {
		return nil, recordFailedTransaction(ctx, transactions, txn, derr, CodeWithdrawalFailed)
	}

	if err := txn.MarkCompleted(&account.Balance, nil); err != nil {
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
