package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransfer(t *testing.T) {
	t.Run("creates pending transfer", func(t *testing.T) {
		source, destination := uuid.New(), uuid.New()

		txn, err := NewTransfer(source, destination, usd(t, "200.00"), "", "key-1", testNow)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeTransfer, txn.Type)
		assert.Equal(t, TransactionStatusPending, txn.Status)
		assert.Equal(t, source, *txn.SourceAccountID)
		assert.Equal(t, destination, *txn.DestinationAccountID)
		assert.Equal(t, "Transfer", txn.Description)
		assert.True(t, strings.HasPrefix(txn.ReferenceNumber, "TXN"))
	})

	t.Run("rejects same account", func(t *testing.T) {
		id := uuid.New()

		_, err := NewTransfer(id, id, usd(t, "1.00"), "", "", testNow)

		var domainErr *Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeSameAccount, domainErr.Code)
	})
}

func TestTransactionTransitions(t *testing.T) {
	t.Run("complete records post balances", func(t *testing.T) {
		txn := NewDeposit(uuid.New(), usd(t, "100.00"), "", "", testNow)
		after := decimal.NewFromInt(100)

		require.NoError(t, txn.MarkCompleted(nil, &after))

		assert.Equal(t, TransactionStatusCompleted, txn.Status)
		assert.Nil(t, txn.BalanceAfterSource)
		assert.True(t, txn.BalanceAfterDestination.Equal(after))
	})

	t.Run("fail records reason", func(t *testing.T) {
		txn := NewWithdrawal(uuid.New(), usd(t, "100.00"), "", "", testNow)

		require.NoError(t, txn.MarkFailed("insufficient funds"))

		assert.Equal(t, TransactionStatusFailed, txn.Status)
		assert.Equal(t, "insufficient funds", txn.FailureReason)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		txn := NewDeposit(uuid.New(), usd(t, "100.00"), "", "", testNow)
		require.NoError(t, txn.MarkFailed("nope"))

		assert.Error(t, txn.MarkCompleted(nil, nil))
		assert.Error(t, txn.MarkFailed("again"))
	})
}

func TestNewReversal(t *testing.T) {
	completedTransfer := func(t *testing.T) *Transaction {
		t.Helper()
		txn, err := NewTransfer(uuid.New(), uuid.New(), usd(t, "200.00"), "", "", testNow)
		require.NoError(t, err)
		require.NoError(t, txn.MarkCompleted(nil, nil))
		return txn
	}

	t.Run("swaps source and destination", func(t *testing.T) {
		original := completedTransfer(t)

		reversal, err := NewReversal(original, "", testNow)

		require.NoError(t, err)
		assert.Equal(t, TransactionTypeReversal, reversal.Type)
		assert.Equal(t, *original.DestinationAccountID, *reversal.SourceAccountID)
		assert.Equal(t, *original.SourceAccountID, *reversal.DestinationAccountID)
		assert.Equal(t, original.ID, *reversal.OriginalTransactionID)
		assert.True(t, reversal.Amount.Equal(original.Amount))
	})

	t.Run("rejects pending original", func(t *testing.T) {
		original, err := NewTransfer(uuid.New(), uuid.New(), usd(t, "1.00"), "", "", testNow)
		require.NoError(t, err)

		_, err = NewReversal(original, "", testNow)
		assert.Error(t, err)
	})

	t.Run("rejects reversing a reversal", func(t *testing.T) {
		original := completedTransfer(t)
		reversal, err := NewReversal(original, "", testNow)
		require.NoError(t, err)
		require.NoError(t, reversal.MarkCompleted(nil, nil))

		_, err = NewReversal(reversal, "", testNow)
		assert.Error(t, err)
	})

	t.Run("original can be marked reversed once", func(t *testing.T) {
		original := completedTransfer(t)

		require.NoError(t, original.MarkReversed())
		assert.Equal(t, TransactionStatusReversed, original.Status)
		assert.Error(t, original.MarkReversed())
	})
}
