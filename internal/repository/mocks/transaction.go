package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/corebank/ledger/internal/domain"
)

// MockTransactionRepository is a mock implementation of
// repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a mock wired to the test lifecycle.
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SumCompleted(ctx context.Context, accountID uuid.UUID, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, txType, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, accountID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) SumCompletedBySource(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) CountTransfersToDestination(ctx context.Context, sourceID, destinationID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, sourceID, destinationID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) CountRoundAmounts(ctx context.Context, sourceID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, sourceID, since)
	return args.Int(0), args.Error(1)
}
