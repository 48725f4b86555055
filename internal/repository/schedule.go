package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
)

// ScheduledPaymentRepository defines the interface for scheduled-payment
// data access.
type ScheduledPaymentRepository interface {
	Create(ctx context.Context, sp *domain.ScheduledPayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error)
	FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledPayment, error)
	Save(ctx context.Context, sp *domain.ScheduledPayment) error
}

type scheduledPaymentRepository struct {
	q db.Querier
}

// NewScheduledPaymentRepository creates a new ScheduledPaymentRepository
// bound to the given querier.
func NewScheduledPaymentRepository(q db.Querier) ScheduledPaymentRepository {
	return &scheduledPaymentRepository{q: q}
}

const scheduledPaymentColumns = `
	id, source_account_id, destination_account_id, amount, currency,
	description, frequency, start_date, end_date, next_execution_date,
	last_execution_date, execution_count, max_executions, is_active,
	last_error, failure_count, created_at, updated_at, deleted_at
`

// Create inserts a new scheduled payment.
func (r *scheduledPaymentRepository) Create(ctx context.Context, sp *domain.ScheduledPayment) error {
	query := `
		INSERT INTO scheduled_payments (` + scheduledPaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		sp.ID,
		sp.SourceAccountID,
		sp.DestinationAccountID,
		sp.Amount,
		sp.Currency,
		nullString(sp.Description),
		sp.Frequency,
		sp.StartDate,
		nullTime(sp.EndDate),
		nullTime(sp.NextExecutionDate),
		nullTime(sp.LastExecutionDate),
		sp.ExecutionCount,
		nullInt(sp.MaxExecutions),
		sp.IsActive,
		nullString(sp.LastError),
		sp.FailureCount,
		sp.CreatedAt,
		sp.UpdatedAt,
		nullTime(sp.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled payment: %w", err)
	}

	return nil
}

// FindByID retrieves a scheduled payment. Soft-deleted schedules are not
// visible.
func (r *scheduledPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error) {
	query := `
		SELECT ` + scheduledPaymentColumns + `
		FROM scheduled_payments
		WHERE id = $1 AND deleted_at IS NULL
	`

	return scanScheduledPayment(r.q.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves a scheduled payment with a row lock, so two
// sweepers cannot execute the same schedule concurrently.
func (r *scheduledPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error) {
	query := `
		SELECT ` + scheduledPaymentColumns + `
		FROM scheduled_payments
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	return scanScheduledPayment(r.q.QueryRowContext(ctx, query, id))
}

// FindDue lists active schedules whose next execution date has passed.
func (r *scheduledPaymentRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledPayment, error) {
	query := `
		SELECT ` + scheduledPaymentColumns + `
		FROM scheduled_payments
		WHERE is_active
		  AND deleted_at IS NULL
		  AND next_execution_date IS NOT NULL
		  AND next_execution_date <= $1
		ORDER BY next_execution_date
	`

	rows, err := r.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled payments: %w", err)
	}
	defer rows.Close()

	var due []*domain.ScheduledPayment
	for rows.Next() {
		sp, err := scanScheduledPayment(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due scheduled payments: %w", err)
	}

	return due, nil
}

// Save persists the mutable recurrence state of a schedule.
func (r *scheduledPaymentRepository) Save(ctx context.Context, sp *domain.ScheduledPayment) error {
	query := `
		UPDATE scheduled_payments
		SET next_execution_date = $2,
		    last_execution_date = $3,
		    execution_count = $4,
		    is_active = $5,
		    last_error = $6,
		    failure_count = $7,
		    deleted_at = $8,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		sp.ID,
		nullTime(sp.NextExecutionDate),
		nullTime(sp.LastExecutionDate),
		sp.ExecutionCount,
		sp.IsActive,
		nullString(sp.LastError),
		sp.FailureCount,
		nullTime(sp.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduled payment: %w", err)
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

// scanner abstracts *sql.Row and *sql.Rows for the shared scan path.
type scanner interface {
	Scan(dest ...any) error
}

func scanScheduledPayment(row scanner) (*domain.ScheduledPayment, error) {
	var sp domain.ScheduledPayment
	var (
		description, lastError                       sql.NullString
		endDate, nextExecution, lastExecution, delAt sql.NullTime
		maxExecutions                                sql.NullInt64
	)

	err := row.Scan(
		&sp.ID,
		&sp.SourceAccountID,
		&sp.DestinationAccountID,
		&sp.Amount,
		&sp.Currency,
		&description,
		&sp.Frequency,
		&sp.StartDate,
		&endDate,
		&nextExecution,
		&lastExecution,
		&sp.ExecutionCount,
		&maxExecutions,
		&sp.IsActive,
		&lastError,
		&sp.FailureCount,
		&sp.CreatedAt,
		&sp.UpdatedAt,
		&delAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scheduled payment: %w", err)
	}

	sp.Description = description.String
	sp.LastError = lastError.String
	sp.EndDate = timePtr(endDate)
	sp.NextExecutionDate = timePtr(nextExecution)
	sp.LastExecutionDate = timePtr(lastExecution)
	sp.MaxExecutions = intPtr(maxExecutions)
	sp.DeletedAt = timePtr(delAt)

	return &sp, nil
}
