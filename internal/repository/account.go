// Package repository provides data access layer implementations for the
// ledger core.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	q db.Querier
}

// NewAccountRepository creates a new AccountRepository bound to the given
// querier, which may be a connection pool or an open transaction.
func NewAccountRepository(q db.Querier) AccountRepository {
	return &accountRepository{q: q}
}

const accountColumns = `
	id, account_number, user_id, account_type, balance, currency, status,
	daily_withdrawal_limit, daily_withdrawal_used, daily_limit_reset_date,
	interest_rate, created_at, updated_at, deleted_at
`

// Create inserts a new account row.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.AccountNumber,
		account.UserID,
		account.Type,
		account.Balance,
		account.Currency,
		account.Status,
		account.DailyWithdrawalLimit,
		account.DailyWithdrawalUsed,
		account.DailyLimitResetDate,
		account.InterestRate,
		account.CreatedAt,
		account.UpdatedAt,
		nullTime(account.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindByID retrieves an account by its UUID. Soft-deleted accounts are not
// visible.
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanAccount(r.q.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves an account and takes a row lock so concurrent
// balance mutation is serialized by the store.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	return r.scanAccount(r.q.QueryRowContext(ctx, query, id))
}

// Save persists the mutable account fields.
func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2,
		    status = $3,
		    daily_withdrawal_limit = $4,
		    daily_withdrawal_used = $5,
		    daily_limit_reset_date = $6,
		    deleted_at = $7,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.Balance,
		account.Status,
		account.DailyWithdrawalLimit,
		account.DailyWithdrawalUsed,
		account.DailyLimitResetDate,
		nullTime(account.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *accountRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	var deletedAt sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.UserID,
		&account.Type,
		&account.Balance,
		&account.Currency,
		&account.Status,
		&account.DailyWithdrawalLimit,
		&account.DailyWithdrawalUsed,
		&account.DailyLimitResetDate,
		&account.InterestRate,
		&account.CreatedAt,
		&account.UpdatedAt,
		&deletedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if deletedAt.Valid {
		account.DeletedAt = &deletedAt.Time
	}

	return &account, nil
}
