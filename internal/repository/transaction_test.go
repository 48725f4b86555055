package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain"
)

func TestTransactionRepository_CreateAndFind(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	account := createTestAccount(t, database)

	amount, err := domain.NewMoney(decimal.RequireFromString("250.50"), "USD")
	require.NoError(t, err)

	t.Run("round-trips a deposit", func(t *testing.T) {
		txn := domain.NewDeposit(account.ID, amount, "payroll", "key-roundtrip", now)
		after := decimal.RequireFromString("250.50")
		require.NoError(t, txn.MarkCompleted(nil, &after))

		require.NoError(t, repo.Create(ctx, txn))

		loaded, err := repo.FindByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, txn.ReferenceNumber, loaded.ReferenceNumber)
		assert.Equal(t, domain.TransactionStatusCompleted, loaded.Status)
		assert.Nil(t, loaded.SourceAccountID)
		assert.Equal(t, account.ID, *loaded.DestinationAccountID)
		assert.True(t, loaded.Amount.Equal(txn.Amount))
		require.NotNil(t, loaded.BalanceAfterDestination)
		assert.True(t, loaded.BalanceAfterDestination.Equal(after))
	})

	t.Run("duplicate idempotency key maps to sentinel", func(t *testing.T) {
		first := domain.NewDeposit(account.ID, amount, "", "key-dup", now)
		require.NoError(t, repo.Create(ctx, first))

		second := domain.NewDeposit(account.ID, amount, "", "key-dup", now)
		err := repo.Create(ctx, second)

		assert.ErrorIs(t, err, domain.ErrDuplicateIdempotencyKey)
	})

	t.Run("find by idempotency key", func(t *testing.T) {
		txn := domain.NewDeposit(account.ID, amount, "", "key-find", now)
		require.NoError(t, repo.Create(ctx, txn))

		found, err := repo.FindByIdempotencyKey(ctx, "key-find")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, txn.ID, found.ID)

		missing, err := repo.FindByIdempotencyKey(ctx, "key-unused")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestTransactionRepository_Aggregates(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	source := createTestAccount(t, database)
	destination := createTestAccount(t, database)

	usd := func(s string) domain.Money {
		m, err := domain.NewMoney(decimal.RequireFromString(s), "USD")
		require.NoError(t, err)
		return m
	}

	completed := func(txn *domain.Transaction) {
		require.NoError(t, txn.MarkCompleted(nil, nil))
		require.NoError(t, repo.Create(ctx, txn))
	}

	withdrawal := domain.NewWithdrawal(source.ID, usd("100.00"), "", "", now)
	completed(withdrawal)

	transfer, err := domain.NewTransfer(source.ID, destination.ID, usd("1000.00"), "", "", now)
	require.NoError(t, err)
	completed(transfer)

	failed := domain.NewWithdrawal(source.ID, usd("40.00"), "", "", now)
	require.NoError(t, failed.MarkFailed("insufficient funds"))
	require.NoError(t, repo.Create(ctx, failed))

	t.Run("sum completed by type excludes failures", func(t *testing.T) {
		sum, err := repo.SumCompleted(ctx, source.ID, domain.TransactionTypeWithdrawal, now.Add(-time.Hour), now.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "100.00", sum.StringFixed(2))
	})

	t.Run("count by account includes failures", func(t *testing.T) {
		count, err := repo.CountByAccount(ctx, source.ID, now.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("sum outgoing volume", func(t *testing.T) {
		sum, err := repo.SumCompletedBySource(ctx, source.ID, now.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "1100.00", sum.StringFixed(2))
	})

	t.Run("count transfers to destination", func(t *testing.T) {
		count, err := repo.CountTransfersToDestination(ctx, source.ID, destination.ID, now.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("count round amounts", func(t *testing.T) {
		count, err := repo.CountRoundAmounts(ctx, source.ID, now.Add(-time.Hour))

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
