package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is the recurrence interval of a scheduled payment.
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// ScheduledPayment drives a recurring transfer between two accounts.
type ScheduledPayment struct {
	ID                   uuid.UUID
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	Description          string
	Frequency            Frequency
	StartDate            time.Time
	EndDate              *time.Time
	NextExecutionDate    *time.Time
	LastExecutionDate    *time.Time
	ExecutionCount       int
	MaxExecutions        *int
	IsActive             bool
	LastError            string
	FailureCount         int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewScheduledPayment creates an active schedule whose first execution is due
// at startDate.
func NewScheduledPayment(
	sourceAccountID, destinationAccountID uuid.UUID,
	amount decimal.Decimal,
	currency string,
	frequency Frequency,
	startDate time.Time,
	endDate *time.Time,
	maxExecutions *int,
	description string,
	now time.Time,
) (*ScheduledPayment, error) {
	if sourceAccountID == destinationAccountID {
		return nil, NewError(ErrCodeSameAccount, "cannot schedule a payment to the same account")
	}
	if !amount.IsPositive() {
		return nil, NewError(ErrCodeInvalidAmount, "amount must be greater than zero")
	}

	cur, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return nil, Errorf(ErrCodeInvalidState, "unknown frequency: %s", frequency)
	}

	next := startDate
	return &ScheduledPayment{
		ID:                   uuid.New(),
		SourceAccountID:      sourceAccountID,
		DestinationAccountID: destinationAccountID,
		Amount:               amount,
		Currency:             cur,
		Description:          description,
		Frequency:            frequency,
		StartDate:            startDate,
		EndDate:              endDate,
		NextExecutionDate:    &next,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Money returns the scheduled amount as a Money value.
func (sp *ScheduledPayment) Money() Money {
	return Money{amount: sp.Amount, currency: sp.Currency}
}

// RecordExecution advances the recurrence state after a successful run. The
// schedule deactivates once the execution cap is reached or the next date
// would fall past the end date.
func (sp *ScheduledPayment) RecordExecution(now time.Time) {
	sp.LastExecutionDate = &now
	sp.ExecutionCount++
	next := sp.nextExecution()
	sp.NextExecutionDate = &next
	sp.LastError = ""
	sp.FailureCount = 0

	if (sp.MaxExecutions != nil && sp.ExecutionCount >= *sp.MaxExecutions) ||
		(sp.EndDate != nil && next.After(*sp.EndDate)) {
		sp.IsActive = false
		sp.NextExecutionDate = nil
	}
}

// RecordFailure stores the error without advancing the recurrence state, so
// the schedule stays due for retry on the next sweep. The failure counter
// gives each retry attempt its own identity.
func (sp *ScheduledPayment) RecordFailure(reason string) {
	sp.LastError = reason
	sp.FailureCount++
}

// Pause deactivates the schedule without clearing its recurrence state.
func (sp *ScheduledPayment) Pause() {
	sp.IsActive = false
}

// Resume reactivates the schedule. A next-execution date in the past is
// bumped to now so resuming does not trigger a burst of catch-up runs.
func (sp *ScheduledPayment) Resume(now time.Time) {
	sp.IsActive = true
	if sp.NextExecutionDate == nil || sp.NextExecutionDate.Before(now) {
		sp.NextExecutionDate = &now
	}
}

// nextExecution adds one frequency unit to the last execution date, or to
// the start date if the schedule has never run.
func (sp *ScheduledPayment) nextExecution() time.Time {
	base := sp.StartDate
	if sp.LastExecutionDate != nil {
		base = *sp.LastExecutionDate
	}

	switch sp.Frequency {
	case FrequencyWeekly:
		return base.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return base.AddDate(0, 1, 0)
	default:
		return base.AddDate(0, 0, 1)
	}
}
