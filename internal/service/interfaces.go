package service

import (
	"context"

	"github.com/corebank/ledger/internal/domain"
)

// Depositor handles deposit operations.
type Depositor interface {
	Deposit(ctx context.Context, p DepositParams) (*TransactionResult, error)
}

// Withdrawer handles withdrawal operations.
type Withdrawer interface {
	Withdraw(ctx context.Context, p WithdrawParams) (*TransactionResult, error)
}

// Transferor handles transfer operations.
type Transferor interface {
	Transfer(ctx context.Context, p TransferParams) (*TransactionResult, error)
}

// Reverser handles administrative reversal operations.
type Reverser interface {
	Reverse(ctx context.Context, p ReverseParams) (*TransactionResult, error)
}

// Notifier delivers user-facing notices. Delivery failures must never roll
// back the operation that triggered them.
type Notifier interface {
	TransactionReceipt(ctx context.Context, result *TransactionResult) error
	ScheduledPaymentFailed(ctx context.Context, sp *domain.ScheduledPayment, reason string) error
}

// Ensure concrete types implement interfaces
var (
	_ Depositor  = (*DepositService)(nil)
	_ Withdrawer = (*WithdrawService)(nil)
	_ Transferor = (*TransferService)(nil)
	_ Reverser   = (*ReversalService)(nil)
)
