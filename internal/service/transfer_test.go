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

func newTransferService() *TransferService {
	clk := fixedClock{testNow}
	return NewTransferService(nil, NewLimitChecker(clk), NewFraudScorer(clk), clk, nil, discardLogger())
}

func TestTransferService_PerformTransfer(t *testing.T) {
	svc := newTransferService()
	ctx := context.Background()

	t.Run("successful transfer records both post balances", func(t *testing.T) {
		mockAccounts := mocks.NewMockAccountRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		source := newActiveAccount(t, "500.00")
		destination := newActiveAccount(t, "100.00")
		quietGates(mockLimits, mockTxns)

		mockAccounts.On("FindByIDForUpdate", ctx, source.ID).Return(source, nil)
		mockAccounts.On("FindByIDForUpdate", ctx, destination.ID).Return(destination, nil)
		mockTxns.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		mockAccounts.On("Save", ctx, source).Return(nil)
		mockAccounts.On("Save", ctx, destination).Return(nil)

		result, err := svc.performTransfer(ctx, mockAccounts, mockTxns, mockLimits, TransferParams{
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.NewFromInt(200),
			Currency:             "USD",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusCompleted, result.Status)
		assert.Equal(t, domain.TransactionTypeTransfer, result.Type)
		require.NotNil(t, result.BalanceAfterSource)
		require.NotNil(t, result.BalanceAfterDestination)
		assert.Equal(t, "300.00", result.BalanceAfterSource.StringFixed(2))
		assert.Equal(t, "300.00", result.BalanceAfterDestination.StringFixed(2))
	})

	t.Run("rejects same account without touching the store", func(t *testing.T) {
		mockAccounts := mocks.NewMockAccountRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		id := uuid.New()

		_, err := svc.performTransfer(ctx, mockAccounts, mockTxns, mockLimits, TransferParams{
			SourceAccountID:      id,
			DestinationAccountID: id,
			Amount:               decimal.NewFromInt(10),
			Currency:             "USD",
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeSameAccount, svcErr.Code)
	})

	t.Run("currency mismatch rejects without persisting", func(t *testing.T) {
		mockAccounts := mocks.NewMockAccountRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		source := newActiveAccount(t, "500.00")

		destination, err := domain.NewAccount(uuid.New(), domain.AccountTypeSavings, "EUR", testNow)
		require.NoError(t, err)

		mockAccounts.On("FindByIDForUpdate", ctx, source.ID).Return(source, nil)
		mockAccounts.On("FindByIDForUpdate", ctx, destination.ID).Return(destination, nil)

		_, err = svc.performTransfer(ctx, mockAccounts, mockTxns, mockLimits, TransferParams{
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.NewFromInt(200),
			Currency:             "USD",
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeCurrencyMismatch, svcErr.Code)
		assert.Equal(t, "500.00", source.Balance.StringFixed(2))
	})

	t.Run("source not found", func(t *testing.T) {
		mockAccounts := mocks.NewMockAccountRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		sourceID, destinationID := uuid.New(), uuid.New()

		mockAccounts.On("FindByIDForUpdate", ctx, mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := svc.performTransfer(ctx, mockAccounts, mockTxns, mockLimits, TransferParams{
			SourceAccountID:      sourceID,
			DestinationAccountID: destinationID,
			Amount:               decimal.NewFromInt(10),
			Currency:             "USD",
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Contains(t,
			[]string{CodeSourceAccountNotFound, CodeDestinationAccountNotFound},
			svcErr.Code)
	})

	t.Run("insufficient funds records a failed transfer", func(t *testing.T) {
		mockAccounts := mocks.NewMockAccountRepository(t)
		mockTxns := mocks.NewMockTransactionRepository(t)
		mockLimits := mocks.NewMockTransactionLimitRepository(t)
		source := newActiveAccount(t, "50.00")
		destination := newActiveAccount(t, "0.00")
		quietGates(mockLimits, mockTxns)

		mockAccounts.On("FindByIDForUpdate", ctx, source.ID).Return(source, nil)
		mockAccounts.On("FindByIDForUpdate", ctx, destination.ID).Return(destination, nil)
		mockTxns.On("Create", ctx, mock.MatchedBy(func(txn *domain.Transaction) bool {
			return txn.Status == domain.TransactionStatusFailed
		})).Return(nil)

		_, err := svc.performTransfer(ctx, mockAccounts, mockTxns, mockLimits, TransferParams{
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               decimal.NewFromInt(200),
			Currency:             "USD",
		})

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeTransferFailed, svcErr.Code)
		assert.True(t, svcErr.Recorded)
		assert.True(t, destination.Balance.IsZero())
	})
}
