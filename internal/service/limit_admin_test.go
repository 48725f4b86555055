package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository/mocks"
)

func TestLimitService_PerformSetLimit(t *testing.T) {
	svc := NewLimitService(nil, fixedClock{testNow}, discardLogger())
	ctx := context.Background()

	t.Run("creates an active rule", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		userID := uuid.New()

		mockLimits.On("Create", ctx, mock.AnythingOfType("*domain.TransactionLimit")).Return(nil)

		limit, err := svc.performSetLimit(ctx, mockLimits, SetLimitParams{
			LimitType:   domain.LimitTypeDaily,
			LimitAmount: decimal.NewFromInt(2000),
			UserID:      &userID,
		})

		require.NoError(t, err)
		assert.True(t, limit.IsActive)
		assert.Equal(t, "2000", limit.LimitAmount.String())
		require.NotNil(t, limit.UserID)
		assert.Equal(t, userID, *limit.UserID)
		assert.Nil(t, limit.AccountType)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)

		_, err := svc.performSetLimit(ctx, mockLimits, SetLimitParams{
			LimitType:   domain.LimitTypeDaily,
			LimitAmount: decimal.Zero,
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeInvalidAmount, svcErr.Code)
	})
}

func TestLimitService_PerformUpdate(t *testing.T) {
	svc := NewLimitService(nil, fixedClock{testNow}, discardLogger())
	ctx := context.Background()

	newRule := func(t *testing.T) *domain.TransactionLimit {
		t.Helper()
		limit, err := domain.NewTransactionLimit(
			domain.LimitTypeWeekly, decimal.NewFromInt(5000), nil, nil, nil, testNow)
		require.NoError(t, err)
		return limit
	}

	t.Run("replaces the cap amount", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		limit := newRule(t)

		mockLimits.On("FindByID", ctx, limit.ID).Return(limit, nil)
		mockLimits.On("Save", ctx, limit).Return(nil)

		err := svc.performUpdate(ctx, mockLimits, limit.ID, func(l *domain.TransactionLimit) error {
			return l.UpdateLimit(decimal.NewFromInt(7500))
		})

		require.NoError(t, err)
		assert.Equal(t, "7500", limit.LimitAmount.String())
	})

	t.Run("deactivates without deleting", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		limit := newRule(t)

		mockLimits.On("FindByID", ctx, limit.ID).Return(limit, nil)
		mockLimits.On("Save", ctx, limit).Return(nil)

		err := svc.performUpdate(ctx, mockLimits, limit.ID, func(l *domain.TransactionLimit) error {
			l.Deactivate()
			return nil
		})

		require.NoError(t, err)
		assert.False(t, limit.IsActive)
	})

	t.Run("limit not found", func(t *testing.T) {
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		limitID := uuid.New()

		mockLimits.On("FindByID", ctx, limitID).Return(nil, domain.ErrNotFound)

		err := svc.performUpdate(ctx, mockLimits, limitID, func(l *domain.TransactionLimit) error {
			return nil
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeLimitNotFound, svcErr.Code)
	})
}
