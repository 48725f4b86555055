package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/corebank/ledger/internal/domain"
)

// MockScheduledPaymentRepository is a mock implementation of
// repository.ScheduledPaymentRepository.
type MockScheduledPaymentRepository struct {
	mock.Mock
}

// NewMockScheduledPaymentRepository creates a mock wired to the test
// lifecycle.
func NewMockScheduledPaymentRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockScheduledPaymentRepository {
	m := &MockScheduledPaymentRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockScheduledPaymentRepository) Create(ctx context.Context, sp *domain.ScheduledPayment) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *MockScheduledPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledPayment), args.Error(1)
}

func (m *MockScheduledPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ScheduledPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledPayment), args.Error(1)
}

func (m *MockScheduledPaymentRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.ScheduledPayment, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduledPayment), args.Error(1)
}

func (m *MockScheduledPaymentRepository) Save(ctx context.Context, sp *domain.ScheduledPayment) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}
