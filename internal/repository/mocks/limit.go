package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/corebank/ledger/internal/domain"
)

// MockTransactionLimitRepository is a mock implementation of
// repository.TransactionLimitRepository.
type MockTransactionLimitRepository struct {
	mock.Mock
}

// NewMockTransactionLimitRepository creates a mock wired to the test
// lifecycle.
func NewMockTransactionLimitRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionLimitRepository {
	m := &MockTransactionLimitRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionLimitRepository) Create(ctx context.Context, limit *domain.TransactionLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockTransactionLimitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TransactionLimit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionLimit), args.Error(1)
}

func (m *MockTransactionLimitRepository) FindActive(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, txType domain.TransactionType) ([]*domain.TransactionLimit, error) {
	args := m.Called(ctx, userID, accountType, txType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TransactionLimit), args.Error(1)
}

func (m *MockTransactionLimitRepository) Save(ctx context.Context, limit *domain.TransactionLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}
