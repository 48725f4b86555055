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

// TransactionLimitRepository defines the interface for limit-rule data
// access.
type TransactionLimitRepository interface {
	Create(ctx context.Context, limit *domain.TransactionLimit) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TransactionLimit, error)
	// FindActive lists active rules applicable to the given scope, ordered
	// most specific first: user-scoped, then account-type-scoped, then
	// transaction-type-scoped, ties broken by creation time.
	FindActive(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, txType domain.TransactionType) ([]*domain.TransactionLimit, error)
	Save(ctx context.Context, limit *domain.TransactionLimit) error
}

type transactionLimitRepository struct {
	q db.Querier
}

// NewTransactionLimitRepository creates a new TransactionLimitRepository
// bound to the given querier.
func NewTransactionLimitRepository(q db.Querier) TransactionLimitRepository {
	return &transactionLimitRepository{q: q}
}

const limitColumns = `
	id, user_id, account_type, transaction_type, limit_type, limit_amount,
	is_active, created_at, updated_at
`

// Create inserts a new limit rule.
func (r *transactionLimitRepository) Create(ctx context.Context, limit *domain.TransactionLimit) error {
	query := `
		INSERT INTO transaction_limits (` + limitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var accountType, txType sql.NullString
	if limit.AccountType != nil {
		accountType = sql.NullString{String: string(*limit.AccountType), Valid: true}
	}
	if limit.TransactionType != nil {
		txType = sql.NullString{String: string(*limit.TransactionType), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		limit.ID,
		nullUUID(limit.UserID),
		accountType,
		txType,
		limit.LimitType,
		limit.LimitAmount,
		limit.IsActive,
		limit.CreatedAt,
		limit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction limit: %w", err)
	}

	return nil
}

// FindByID retrieves a limit rule by its UUID.
func (r *transactionLimitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TransactionLimit, error) {
	query := `
		SELECT ` + limitColumns + `
		FROM transaction_limits
		WHERE id = $1
	`

	limit, err := scanLimit(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return limit, err
}

// FindActive lists applicable active rules, most specific first.
func (r *transactionLimitRepository) FindActive(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, txType domain.TransactionType) ([]*domain.TransactionLimit, error) {
	query := `
		SELECT ` + limitColumns + `
		FROM transaction_limits
		WHERE is_active
		  AND (user_id IS NULL OR user_id = $1)
		  AND (account_type IS NULL OR account_type = $2)
		  AND (transaction_type IS NULL OR transaction_type = $3)
		ORDER BY (user_id IS NOT NULL) DESC,
		         (account_type IS NOT NULL) DESC,
		         (transaction_type IS NOT NULL) DESC,
		         created_at
	`

	rows, err := r.q.QueryContext(ctx, query, userID, accountType, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction limits: %w", err)
	}
	defer rows.Close()

	var limits []*domain.TransactionLimit
	for rows.Next() {
		limit, err := scanLimit(rows)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction limits: %w", err)
	}

	return limits, nil
}

// Save persists the mutable fields of a limit rule.
func (r *transactionLimitRepository) Save(ctx context.Context, limit *domain.TransactionLimit) error {
	query := `
		UPDATE transaction_limits
		SET limit_amount = $2,
		    is_active = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, limit.ID, limit.LimitAmount, limit.IsActive)
	if err != nil {
		return fmt.Errorf("failed to save transaction limit: %w", err)
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

func scanLimit(row scanner) (*domain.TransactionLimit, error) {
	var limit domain.TransactionLimit
	var (
		userID              uuid.NullUUID
		accountType, txType sql.NullString
	)

	err := row.Scan(
		&limit.ID,
		&userID,
		&accountType,
		&txType,
		&limit.LimitType,
		&limit.LimitAmount,
		&limit.IsActive,
		&limit.CreatedAt,
		&limit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction limit: %w", err)
	}

	limit.UserID = uuidPtr(userID)
	if accountType.Valid {
		at := domain.AccountType(accountType.String)
		limit.AccountType = &at
	}
	if txType.Valid {
		tt := domain.TransactionType(txType.String)
		limit.TransactionType = &tt
	}

	return &limit, nil
}
