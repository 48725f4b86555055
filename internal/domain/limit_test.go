package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLimitMatches(t *testing.T) {
	userID := uuid.New()
	savings := AccountTypeSavings
	withdrawal := TransactionTypeWithdrawal

	limit, err := NewTransactionLimit(LimitTypeDaily, decimal.NewFromInt(1000), &userID, &savings, &withdrawal, testNow)
	require.NoError(t, err)

	assert.True(t, limit.Matches(userID, AccountTypeSavings, TransactionTypeWithdrawal))
	assert.False(t, limit.Matches(uuid.New(), AccountTypeSavings, TransactionTypeWithdrawal))
	assert.False(t, limit.Matches(userID, AccountTypeCurrent, TransactionTypeWithdrawal))
	assert.False(t, limit.Matches(userID, AccountTypeSavings, TransactionTypeTransfer))

	global, err := NewTransactionLimit(LimitTypeDaily, decimal.NewFromInt(1000), nil, nil, nil, testNow)
	require.NoError(t, err)
	assert.True(t, global.Matches(uuid.New(), AccountTypeCurrent, TransactionTypeTransfer))
}

func TestNewTransactionLimit(t *testing.T) {
	t.Run("rejects non positive amount", func(t *testing.T) {
		_, err := NewTransactionLimit(LimitTypeDaily, decimal.Zero, nil, nil, nil, testNow)
		assert.Error(t, err)
	})

	t.Run("rejects unknown limit type", func(t *testing.T) {
		_, err := NewTransactionLimit(LimitType("Hourly"), decimal.NewFromInt(1), nil, nil, nil, testNow)
		assert.Error(t, err)
	})
}
