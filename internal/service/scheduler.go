package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// SweepService executes due scheduled payments. Each payment runs in
// isolation so one failure never blocks the rest of the sweep.
//
// The transfer commits in its own unit of work before the schedule state
// does. A crash between the two leaves the schedule due for retry, and the
// per-execution idempotency key makes the retry replay the committed
// transfer instead of moving the money twice.
type SweepService struct {
	db        *db.DB
	transfers Transferor
	notifier  Notifier
	clock     clock.Clock
	logger    *slog.Logger
}

// NewSweepService creates a new SweepService
func NewSweepService(
	database *db.DB,
	transfers Transferor,
	notifier Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) *SweepService {
	return &SweepService{
		db:        database,
		transfers: transfers,
		notifier:  notifier,
		clock:     clk,
		logger:    logger,
	}
}

// Run executes every schedule due at the current time. It returns the number
// of schedules attempted; per-payment failures are recorded on the schedule
// and logged, not returned.
func (s *SweepService) Run(ctx context.Context) (int, error) {
	due, err := repository.NewScheduledPaymentRepository(s.db).FindDue(ctx, s.clock.Now())
	if err != nil {
		return 0, internalError("failed to list due scheduled payments", err)
	}

	for _, sp := range due {
		if err := s.runOne(ctx, sp.ID); err != nil {
			s.logger.Error("scheduled payment sweep failed",
				"scheduled_payment_id", sp.ID,
				"error", err,
			)
		}
	}

	return len(due), nil
}

// runOne executes one schedule in its own unit of work.
func (s *SweepService) runOne(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	if err := s.executePayment(ctx, repository.NewScheduledPaymentRepository(tx), id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return internalError("failed to commit transaction", err)
	}

	return nil
}

// executePayment re-checks the schedule under a row lock, runs the transfer,
// and advances or fails the recurrence state.
func (s *SweepService) executePayment(ctx context.Context, schedules repository.ScheduledPaymentRepository, id uuid.UUID) error {
	sp, err := schedules.FindByIDForUpdate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// Cancelled between listing and locking.
		return nil
	}
	if err != nil {
		return internalError("failed to load scheduled payment", err)
	}

	now := s.clock.Now()
	if !sp.IsActive || sp.NextExecutionDate == nil || sp.NextExecutionDate.After(now) {
		// Another sweeper got here first.
		return nil
	}

	result, err := s.transfers.Transfer(ctx, TransferParams{
		SourceAccountID:      sp.SourceAccountID,
		DestinationAccountID: sp.DestinationAccountID,
		Amount:               sp.Amount,
		Currency:             sp.Currency,
		Description:          sp.Description,
		IdempotencyKey:       executionKey(sp),
	})
	if err != nil {
		return s.recordScheduleFailure(ctx, schedules, sp, err.Error())
	}
	if result.Status != domain.TransactionStatusCompleted {
		return s.recordScheduleFailure(ctx, schedules, sp, result.FailureReason)
	}

	sp.RecordExecution(now)
	if err := schedules.Save(ctx, sp); err != nil {
		return internalError("failed to save scheduled payment", err)
	}

	s.logger.Info("scheduled payment executed",
		"scheduled_payment_id", sp.ID,
		"reference", result.ReferenceNumber,
		"execution_count", sp.ExecutionCount,
	)
	return nil
}

func (s *SweepService) recordScheduleFailure(ctx context.Context, schedules repository.ScheduledPaymentRepository, sp *domain.ScheduledPayment, reason string) error {
	sp.RecordFailure(reason)
	if err := schedules.Save(ctx, sp); err != nil {
		return internalError("failed to record scheduled payment failure", err)
	}

	s.logger.Warn("scheduled payment execution failed",
		"scheduled_payment_id", sp.ID,
		"reason", reason,
	)

	if s.notifier != nil {
		if nerr := s.notifier.ScheduledPaymentFailed(ctx, sp, reason); nerr != nil {
			s.logger.Warn("failed to send schedule failure notification",
				"scheduled_payment_id", sp.ID,
				"error", nerr,
			)
		}
	}
	return nil
}

// executionKey derives the idempotency key guarding one attempt at the
// schedule's current recurrence slot. The failure counter distinguishes
// attempts: a recorded failure bumps it, so the next sweep retries under a
// fresh key instead of replaying the persisted Failed transaction, while a
// crash between the transfer commit and the schedule save leaves it
// unchanged and the retry replays the committed transfer.
func executionKey(sp *domain.ScheduledPayment) string {
	return fmt.Sprintf("sched-%s-%d-%d", sp.ID, sp.ExecutionCount, sp.FailureCount)
}
