package service

import (
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

// OpenAccountParams describes a new account request.
type OpenAccountParams struct {
	UserID   uuid.UUID
	Type     domain.AccountType
	Currency string
}

// AccountService manages the account lifecycle. Balance mutation stays with
// the money-movement services; this one only opens accounts and moves them
// through their status transitions.
type AccountService struct {
	db     *db.DB
	clock  clock.Clock
	logger *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(database *db.DB, clk clock.Clock, logger *slog.Logger) *AccountService {
	return &AccountService{db: database, clock: clk, logger: logger}
}

// Open creates an active account with the defaults for its type.
func (s *AccountService) Open(ctx context.Context, p OpenAccountParams) (*domain.Account, error) {
	return s.performOpen(ctx, repository.NewAccountRepository(s.db), p)
}

func (s *AccountService) performOpen(ctx context.Context, accounts repository.AccountRepository, p OpenAccountParams) (*domain.Account, error) {
	account, err := domain.NewAccount(p.UserID, p.Type, p.Currency, s.clock.Now())
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, wrapError(domainErr.Code, err)
		}
		return nil, internalError("failed to build account", err)
	}

	if err := accounts.Create(ctx, account); err != nil {
		return nil, internalError("failed to create account", err)
	}

	s.logger.Info("account opened",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
		"type", account.Type,
	)
	return account, nil
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := repository.NewAccountRepository(s.db).FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return nil, internalError("failed to load account", err)
	}
	return account, nil
}

// Freeze blocks all mutation on the account.
func (s *AccountService) Freeze(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(a *domain.Account) error {
		return a.Freeze()
	})
}

// Unfreeze reactivates a frozen account.
func (s *AccountService) Unfreeze(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(a *domain.Account) error {
		return a.Unfreeze()
	})
}

// Close closes the account. Only permitted at zero balance.
func (s *AccountService) Close(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(a *domain.Account) error {
		return a.Close()
	})
}

// SetDailyWithdrawalLimit overrides the account's daily withdrawal cap.
func (s *AccountService) SetDailyWithdrawalLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	return s.update(ctx, id, func(a *domain.Account) error {
		return a.SetDailyWithdrawalLimit(limit)
	})
}

func (s *AccountService) update(ctx context.Context, id uuid.UUID, mutate func(*domain.Account) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	if err := s.performUpdate(ctx, repository.NewAccountRepository(tx), id, mutate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return internalError("failed to commit transaction", err)
	}

	return nil
}

func (s *AccountService) performUpdate(ctx context.Context, accounts repository.AccountRepository, id uuid.UUID, mutate func(*domain.Account) error) error {
	account, err := accounts.FindByIDForUpdate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return newError(CodeAccountNotFound, "account not found")
	}
	if err != nil {
		return internalError("failed to load account", err)
	}

	if err := mutate(account); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return wrapError(domainErr.Code, err)
		}
		return internalError("failed to update account", err)
	}

	if err := accounts.Save(ctx, account); err != nil {
		return internalError("failed to save account", err)
	}

	return nil
}
