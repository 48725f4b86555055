package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitType is the evaluation window of a transaction limit rule.
type LimitType string

const (
	LimitTypePerTransaction LimitType = "PerTransaction"
	LimitTypeDaily          LimitType = "Daily"
	LimitTypeWeekly         LimitType = "Weekly"
	LimitTypeMonthly        LimitType = "Monthly"
)

// TransactionLimit is a spend-cap rule. Nil scoping fields mean the rule
// applies to all users, account types or transaction types respectively.
type TransactionLimit struct {
	ID              uuid.UUID
	UserID          *uuid.UUID
	AccountType     *AccountType
	TransactionType *TransactionType
	LimitType       LimitType
	LimitAmount     decimal.Decimal
	IsActive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTransactionLimit creates an active limit rule.
func NewTransactionLimit(
	limitType LimitType,
	limitAmount decimal.Decimal,
	userID *uuid.UUID,
	accountType *AccountType,
	transactionType *TransactionType,
	now time.Time,
) (*TransactionLimit, error) {
	switch limitType {
	case LimitTypePerTransaction, LimitTypeDaily, LimitTypeWeekly, LimitTypeMonthly:
	default:
		return nil, Errorf(ErrCodeInvalidState, "unknown limit type: %s", limitType)
	}
	if !limitAmount.IsPositive() {
		return nil, NewError(ErrCodeInvalidAmount, "limit amount must be greater than zero")
	}

	return &TransactionLimit{
		ID:              uuid.New(),
		UserID:          userID,
		AccountType:     accountType,
		TransactionType: transactionType,
		LimitType:       limitType,
		LimitAmount:     limitAmount,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Matches reports whether this rule applies to the given scope.
func (l *TransactionLimit) Matches(userID uuid.UUID, accountType AccountType, transactionType TransactionType) bool {
	if l.UserID != nil && *l.UserID != userID {
		return false
	}
	if l.AccountType != nil && *l.AccountType != accountType {
		return false
	}
	if l.TransactionType != nil && *l.TransactionType != transactionType {
		return false
	}
	return true
}

// UpdateLimit replaces the cap amount.
func (l *TransactionLimit) UpdateLimit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewError(ErrCodeInvalidAmount, "limit amount must be greater than zero")
	}
	l.LimitAmount = amount
	return nil
}

// Activate enables the rule.
func (l *TransactionLimit) Activate() { l.IsActive = true }

// Deactivate disables the rule without deleting it.
func (l *TransactionLimit) Deactivate() { l.IsActive = false }
