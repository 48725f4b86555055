package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository/mocks"
)

func TestLimitChecker_Check(t *testing.T) {
	checker := NewLimitChecker(fixedClock{testNow})
	ctx := context.Background()

	dayStart := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	t.Run("allows within account daily limit", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		account := newActiveAccount(t, "10000.00")

		mockLimits.On("FindActive", ctx, account.UserID, account.Type, domain.TransactionTypeWithdrawal).
			Return(nil, nil)
		mockTxns.On("SumCompleted", ctx, account.ID, domain.TransactionTypeWithdrawal, dayStart, dayEnd).
			Return(decimal.NewFromInt(1000), nil)

		result, err := checker.Check(ctx, mockLimits, mockTxns, account, domain.TransactionTypeWithdrawal, decimal.NewFromInt(4000))

		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("rejects past account daily limit", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		account := newActiveAccount(t, "10000.00")

		mockLimits.On("FindActive", ctx, account.UserID, account.Type, domain.TransactionTypeWithdrawal).
			Return(nil, nil)
		mockTxns.On("SumCompleted", ctx, account.ID, domain.TransactionTypeWithdrawal, dayStart, dayEnd).
			Return(decimal.Zero, nil)

		result, err := checker.Check(ctx, mockLimits, mockTxns, account, domain.TransactionTypeWithdrawal, decimal.NewFromInt(6000))

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Contains(t, result.Reason(), "Daily withdrawal limit exceeded")
		assert.Contains(t, result.Reason(), "Remaining: 5000.00")
	})

	t.Run("rejects on per transaction rule", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		account := newActiveAccount(t, "10000.00")

		rule, err := domain.NewTransactionLimit(domain.LimitTypePerTransaction, decimal.NewFromInt(500), nil, nil, nil, testNow)
		require.NoError(t, err)
		mockLimits.On("FindActive", ctx, account.UserID, account.Type, domain.TransactionTypeTransfer).
			Return([]*domain.TransactionLimit{rule}, nil)

		result, err := checker.Check(ctx, mockLimits, mockTxns, account, domain.TransactionTypeTransfer, decimal.NewFromInt(501))

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Contains(t, result.ViolatedLimit, "Per-transaction")
	})

	t.Run("rejects on weekly rule using sunday start window", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		account := newActiveAccount(t, "10000.00")

		rule, err := domain.NewTransactionLimit(domain.LimitTypeWeekly, decimal.NewFromInt(2000), nil, nil, nil, testNow)
		require.NoError(t, err)
		mockLimits.On("FindActive", ctx, account.UserID, account.Type, domain.TransactionTypeTransfer).
			Return([]*domain.TransactionLimit{rule}, nil)

		weekStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		mockTxns.On("SumCompleted", ctx, account.ID, domain.TransactionTypeTransfer, weekStart, weekStart.AddDate(0, 0, 7)).
			Return(decimal.NewFromInt(1500), nil)

		result, err := checker.Check(ctx, mockLimits, mockTxns, account, domain.TransactionTypeTransfer, decimal.NewFromInt(600))

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.True(t, result.Remaining.Equal(decimal.NewFromInt(500)))
	})

	t.Run("monthly rule uses calendar month window", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		account := newActiveAccount(t, "10000.00")

		rule, err := domain.NewTransactionLimit(domain.LimitTypeMonthly, decimal.NewFromInt(50000), nil, nil, nil, testNow)
		require.NoError(t, err)
		mockLimits.On("FindActive", ctx, account.UserID, account.Type, domain.TransactionTypeTransfer).
			Return([]*domain.TransactionLimit{rule}, nil)

		monthStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		mockTxns.On("SumCompleted", ctx, account.ID, domain.TransactionTypeTransfer, monthStart, monthStart.AddDate(0, 1, 0)).
			Return(decimal.Zero, nil)

		result, err := checker.Check(ctx, mockLimits, mockTxns, account, domain.TransactionTypeTransfer, decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}
