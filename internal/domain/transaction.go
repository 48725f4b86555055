package domain

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeTransfer   TransactionType = "Transfer"
	TransactionTypeReversal   TransactionType = "Reversal"
)

// TransactionStatus is the state of a transaction. Transitions are one-way
// from Pending to exactly one terminal state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
	TransactionStatusReversed  TransactionStatus = "Reversed"
)

// Transaction records an attempted money movement. It references account
// identities, never account objects.
type Transaction struct {
	ID                      uuid.UUID
	ReferenceNumber         string
	SourceAccountID         *uuid.UUID
	DestinationAccountID    *uuid.UUID
	Type                    TransactionType
	Amount                  decimal.Decimal
	Currency                string
	Status                  TransactionStatus
	Description             string
	FailureReason           string
	IdempotencyKey          string
	BalanceAfterSource      *decimal.Decimal
	BalanceAfterDestination *decimal.Decimal
	OriginalTransactionID   *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDeposit creates a pending deposit into the destination account.
func NewDeposit(destinationAccountID uuid.UUID, amount Money, description, idempotencyKey string, now time.Time) *Transaction {
	if description == "" {
		description = "Deposit"
	}
	return &Transaction{
		ID:                   uuid.New(),
		ReferenceNumber:      generateReferenceNumber(now),
		DestinationAccountID: &destinationAccountID,
		Type:                 TransactionTypeDeposit,
		Amount:               amount.Amount(),
		Currency:             amount.Currency(),
		Status:               TransactionStatusPending,
		Description:          description,
		IdempotencyKey:       idempotencyKey,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// NewWithdrawal creates a pending withdrawal from the source account.
func NewWithdrawal(sourceAccountID uuid.UUID, amount Money, description, idempotencyKey string, now time.Time) *Transaction {
	if description == "" {
		description = "Withdrawal"
	}
	return &Transaction{
		ID:              uuid.New(),
		ReferenceNumber: generateReferenceNumber(now),
		SourceAccountID: &sourceAccountID,
		Type:            TransactionTypeWithdrawal,
		Amount:          amount.Amount(),
		Currency:        amount.Currency(),
		Status:          TransactionStatusPending,
		Description:     description,
		IdempotencyKey:  idempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewTransfer creates a pending transfer between two distinct accounts.
func NewTransfer(sourceAccountID, destinationAccountID uuid.UUID, amount Money, description, idempotencyKey string, now time.Time) (*Transaction, error) {
	if sourceAccountID == destinationAccountID {
		return nil, NewError(ErrCodeSameAccount, "cannot transfer to the same account")
	}

	if description == "" {
		description = "Transfer"
	}
	return &Transaction{
		ID:                   uuid.New(),
		ReferenceNumber:      generateReferenceNumber(now),
		SourceAccountID:      &sourceAccountID,
		DestinationAccountID: &destinationAccountID,
		Type:                 TransactionTypeTransfer,
		Amount:               amount.Amount(),
		Currency:             amount.Currency(),
		Status:               TransactionStatusPending,
		Description:          description,
		IdempotencyKey:       idempotencyKey,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// NewReversal creates a pending compensating transaction that swaps the
// source and destination of the original. Only completed, non-reversal
// transactions can be reversed.
func NewReversal(original *Transaction, description string, now time.Time) (*Transaction, error) {
	if original.Status != TransactionStatusCompleted {
		return nil, NewError(ErrCodeInvalidState, "can only reverse completed transactions")
	}
	if original.Type == TransactionTypeReversal {
		return nil, NewError(ErrCodeInvalidState, "cannot reverse a reversal")
	}

	if description == "" {
		description = "Reversal of " + original.ReferenceNumber
	}
	return &Transaction{
		ID:                    uuid.New(),
		ReferenceNumber:       generateReferenceNumber(now),
		SourceAccountID:       original.DestinationAccountID,
		DestinationAccountID:  original.SourceAccountID,
		Type:                  TransactionTypeReversal,
		Amount:                original.Amount,
		Currency:              original.Currency,
		Status:                TransactionStatusPending,
		Description:           description,
		OriginalTransactionID: &original.ID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Money returns the transaction amount as a Money value.
func (t *Transaction) Money() Money {
	return Money{amount: t.Amount, currency: t.Currency}
}

// MarkCompleted moves a pending transaction to Completed, recording the
// post-mutation balances of the affected accounts.
func (t *Transaction) MarkCompleted(sourceBalanceAfter, destBalanceAfter *decimal.Decimal) error {
	if t.Status != TransactionStatusPending {
		return Errorf(ErrCodeInvalidState, "cannot complete a transaction with status %s", t.Status)
	}

	t.Status = TransactionStatusCompleted
	t.BalanceAfterSource = sourceBalanceAfter
	t.BalanceAfterDestination = destBalanceAfter
	return nil
}

// MarkFailed moves a pending transaction to Failed with the given reason.
func (t *Transaction) MarkFailed(reason string) error {
	if t.Status != TransactionStatusPending {
		return Errorf(ErrCodeInvalidState, "cannot fail a transaction with status %s", t.Status)
	}

	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	return nil
}

// MarkReversed moves a completed transaction to Reversed.
func (t *Transaction) MarkReversed() error {
	if t.Status != TransactionStatusCompleted {
		return NewError(ErrCodeInvalidState, "can only reverse completed transactions")
	}

	t.Status = TransactionStatusReversed
	return nil
}

// generateReferenceNumber builds a human-displayable reference. Timestamp plus
// a random suffix is enough for practical collision avoidance; uniqueness is
// not a hard guarantee.
func generateReferenceNumber(now time.Time) string {
	return "TXN" + now.UTC().Format("20060102150405") + strconv.Itoa(100000+rand.Intn(900000))
}
