package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// CreateScheduleParams describes a new recurring payment.
type CreateScheduleParams struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	Description          string
	Frequency            domain.Frequency
	StartDate            time.Time
	EndDate              *time.Time
	MaxExecutions        *int
}

// ScheduleService manages the lifecycle of scheduled payments. Execution is
// the sweep worker's job, not this service's.
type ScheduleService struct {
	db     *db.DB
	clock  clock.Clock
	logger *slog.Logger
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(database *db.DB, clk clock.Clock, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{db: database, clock: clk, logger: logger}
}

// Create registers a recurring payment after verifying both accounts exist
// and share the schedule's currency.
func (s *ScheduleService) Create(ctx context.Context, p CreateScheduleParams) (*domain.ScheduledPayment, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	accounts := repository.NewAccountRepository(tx)
	schedules := repository.NewScheduledPaymentRepository(tx)

	sp, err := s.performCreate(ctx, accounts, schedules, p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, internalError("failed to commit transaction", err)
	}

	return sp, nil
}

func (s *ScheduleService) performCreate(
	ctx context.Context,
	accounts repository.AccountRepository,
	schedules repository.ScheduledPaymentRepository,
	p CreateScheduleParams,
) (*domain.ScheduledPayment, error) {
	sp, err := domain.NewScheduledPayment(
		p.SourceAccountID, p.DestinationAccountID,
		p.Amount, p.Currency, p.Frequency,
		p.StartDate, p.EndDate, p.MaxExecutions,
		p.Description, s.clock.Now(),
	)
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, wrapError(domainErr.Code, err)
		}
		return nil, internalError("failed to build scheduled payment", err)
	}

	source, err := accounts.FindByID(ctx, p.SourceAccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeSourceAccountNotFound, "source account not found")
	}
	if err != nil {
		return nil, internalError("failed to load source account", err)
	}

	destination, err := accounts.FindByID(ctx, p.DestinationAccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, newError(CodeDestinationAccountNotFound, "destination account not found")
	}
	if err != nil {
		return nil, internalError("failed to load destination account", err)
	}

	if source.Currency != destination.Currency || sp.Currency != source.Currency {
		return nil, newError(CodeCurrencyMismatch, "schedule currency must match both accounts")
	}

	if err := schedules.Create(ctx, sp); err != nil {
		return nil, internalError("failed to create scheduled payment", err)
	}

	return sp, nil
}

// Pause deactivates a schedule, keeping its recurrence state.
func (s *ScheduleService) Pause(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(sp *domain.ScheduledPayment) {
		sp.Pause()
	})
}

// Resume reactivates a paused schedule.
func (s *ScheduleService) Resume(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(sp *domain.ScheduledPayment) {
		sp.Resume(s.clock.Now())
	})
}

// Cancel deactivates and soft-deletes a schedule.
func (s *ScheduleService) Cancel(ctx context.Context, id uuid.UUID) error {
	now := s.clock.Now()
	return s.update(ctx, id, func(sp *domain.ScheduledPayment) {
		sp.Pause()
		sp.DeletedAt = &now
	})
}

func (s *ScheduleService) update(ctx context.Context, id uuid.UUID, mutate func(*domain.ScheduledPayment)) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	schedules := repository.NewScheduledPaymentRepository(tx)

	sp, err := schedules.FindByIDForUpdate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return newError(CodeScheduleNotFound, "scheduled payment not found")
	}
	if err != nil {
		return internalError("failed to load scheduled payment", err)
	}

	mutate(sp)

	if err := schedules.Save(ctx, sp); err != nil {
		return internalError("failed to save scheduled payment", err)
	}

	if err := tx.Commit(); err != nil {
		return internalError("failed to commit transaction", err)
	}

	return nil
}
