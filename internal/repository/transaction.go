package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
)

// TransactionRepository defines the interface for transaction data access,
// including the aggregate queries the limit evaluator and fraud scorer run.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// FindByIdempotencyKey returns nil when no transaction bears the key.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	Save(ctx context.Context, txn *domain.Transaction) error

	SumCompleted(ctx context.Context, accountID uuid.UUID, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
	SumCompletedBySource(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error)
	CountTransfersToDestination(ctx context.Context, sourceID, destinationID uuid.UUID, since time.Time) (int, error)
	CountRoundAmounts(ctx context.Context, sourceID uuid.UUID, since time.Time) (int, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	q db.Querier
}

// NewTransactionRepository creates a new TransactionRepository bound to the
// given querier.
func NewTransactionRepository(q db.Querier) TransactionRepository {
	return &transactionRepository{q: q}
}

const transactionColumns = `
	id, reference_number, source_account_id, destination_account_id, type,
	amount, currency, status, description, failure_reason, idempotency_key,
	balance_after_source, balance_after_destination, original_transaction_id,
	created_at, updated_at
`

// Create inserts a transaction row. A unique-constraint violation on the
// idempotency key maps to domain.ErrDuplicateIdempotencyKey; the constraint
// is the authoritative de-duplication guard under concurrent replays.
func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.ReferenceNumber,
		nullUUID(txn.SourceAccountID),
		nullUUID(txn.DestinationAccountID),
		txn.Type,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.Description,
		nullString(txn.FailureReason),
		nullString(txn.IdempotencyKey),
		nullDecimal(txn.BalanceAfterSource),
		nullDecimal(txn.BalanceAfterDestination),
		nullUUID(txn.OriginalTransactionID),
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "idempotency") {
			return domain.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its UUID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := r.scanTransaction(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return txn, err
}

// FindByIdempotencyKey retrieves the transaction persisted for a prior
// request bearing the same key, or nil if there is none.
func (r *transactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE idempotency_key = $1
	`

	txn, err := r.scanTransaction(r.q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return txn, err
}

// Save persists the mutable fields of a finalized transaction.
func (r *transactionRepository) Save(ctx context.Context, txn *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2,
		    failure_reason = $3,
		    balance_after_source = $4,
		    balance_after_destination = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		txn.ID,
		txn.Status,
		nullString(txn.FailureReason),
		nullDecimal(txn.BalanceAfterSource),
		nullDecimal(txn.BalanceAfterDestination),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
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

// SumCompleted sums completed transactions of the given type touching the
// account within [from, to).
func (r *transactionRepository) SumCompleted(ctx context.Context, accountID uuid.UUID, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE status = 'Completed'
		  AND type = $2
		  AND created_at >= $3 AND created_at < $4
		  AND (source_account_id = $1 OR destination_account_id = $1)
	`

	var sum decimal.Decimal
	if err := r.q.QueryRowContext(ctx, query, accountID, txType, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return sum, nil
}

// CountByAccount counts transactions of any status touching the account
// since the given instant.
func (r *transactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE (source_account_id = $1 OR destination_account_id = $1)
		  AND created_at >= $2
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, accountID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SumCompletedBySource sums completed outgoing volume for the account since
// the given instant.
func (r *transactionRepository) SumCompletedBySource(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE source_account_id = $1
		  AND status = 'Completed'
		  AND created_at >= $2
	`

	var sum decimal.Decimal
	if err := r.q.QueryRowContext(ctx, query, accountID, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outgoing volume: %w", err)
	}
	return sum, nil
}

// CountTransfersToDestination counts transfers from source to one destination
// since the given instant.
func (r *transactionRepository) CountTransfersToDestination(ctx context.Context, sourceID, destinationID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE source_account_id = $1
		  AND destination_account_id = $2
		  AND type = 'Transfer'
		  AND created_at >= $3
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, sourceID, destinationID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transfers to destination: %w", err)
	}
	return count, nil
}

// CountRoundAmounts counts outgoing transactions in round multiples of 1000
// since the given instant; repeated round numbers are a structuring signal.
func (r *transactionRepository) CountRoundAmounts(ctx context.Context, sourceID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE source_account_id = $1
		  AND amount >= 1000
		  AND mod(amount, 1000) = 0
		  AND created_at >= $2
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, sourceID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count round-amount transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) scanTransaction(row *sql.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var (
		sourceID, destinationID, originalID uuid.NullUUID
		failureReason, idempotencyKey      sql.NullString
		balanceAfterSource                 decimal.NullDecimal
		balanceAfterDestination            decimal.NullDecimal
	)

	err := row.Scan(
		&txn.ID,
		&txn.ReferenceNumber,
		&sourceID,
		&destinationID,
		&txn.Type,
		&txn.Amount,
		&txn.Currency,
		&txn.Status,
		&txn.Description,
		&failureReason,
		&idempotencyKey,
		&balanceAfterSource,
		&balanceAfterDestination,
		&originalID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.SourceAccountID = uuidPtr(sourceID)
	txn.DestinationAccountID = uuidPtr(destinationID)
	txn.OriginalTransactionID = uuidPtr(originalID)
	txn.FailureReason = failureReason.String
	txn.IdempotencyKey = idempotencyKey.String
	txn.BalanceAfterSource = decimalPtr(balanceAfterSource)
	txn.BalanceAfterDestination = decimalPtr(balanceAfterDestination)

	return &txn, nil
}
