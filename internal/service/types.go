package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/domain"
)

// DepositParams describes a deposit request.
type DepositParams struct {
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	Currency       string
	Description    string
	IdempotencyKey string
}

// WithdrawParams describes a withdrawal request.
type WithdrawParams struct {
	AccountID      uuid.UUID
	Amount         decimal.Decimal
	Currency       string
	Description    string
	IdempotencyKey string
}

// TransferParams describes a transfer request between two accounts.
type TransferParams struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	Description          string
	IdempotencyKey       string
}

// ReverseParams describes an administrative reversal request.
type ReverseParams struct {
	TransactionID uuid.UUID
	Description   string
}

// TransactionResult is the recorded outcome of a money-movement operation.
type TransactionResult struct {
	TransactionID           uuid.UUID
	ReferenceNumber         string
	Type                    domain.TransactionType
	Status                  domain.TransactionStatus
	Amount                  decimal.Decimal
	Currency                string
	FailureReason           string
	BalanceAfterSource      *decimal.Decimal
	BalanceAfterDestination *decimal.Decimal
	Timestamp               time.Time

	// Replayed reports that this outcome was recorded by a previous request
	// bearing the same idempotency key and is returned verbatim.
	Replayed bool
}

func newTransactionResult(txn *domain.Transaction) *TransactionResult {
	return &TransactionResult{
		TransactionID:           txn.ID,
		ReferenceNumber:         txn.ReferenceNumber,
		Type:                    txn.Type,
		Status:                  txn.Status,
		Amount:                  txn.Amount,
		Currency:                txn.Currency,
		FailureReason:           txn.FailureReason,
		BalanceAfterSource:      txn.BalanceAfterSource,
		BalanceAfterDestination: txn.BalanceAfterDestination,
		Timestamp:               txn.CreatedAt,
	}
}
