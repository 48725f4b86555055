package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// SetLimitParams describes a new limit rule. Nil scope fields make the rule
// apply to all users, account types or transaction types respectively.
type SetLimitParams struct {
	LimitType       domain.LimitType
	LimitAmount     decimal.Decimal
	UserID          *uuid.UUID
	AccountType     *domain.AccountType
	TransactionType *domain.TransactionType
}

// LimitService administers transaction limit rules.
type LimitService struct {
	db     *db.DB
	clock  clock.Clock
	logger *slog.Logger
}

// NewLimitService creates a new LimitService
func NewLimitService(database *db.DB, clk clock.Clock, logger *slog.Logger) *LimitService {
	return &LimitService{db: database, clock: clk, logger: logger}
}

// SetLimit creates an active limit rule.
func (s *LimitService) SetLimit(ctx context.Context, p SetLimitParams) (*domain.TransactionLimit, error) {
	return s.performSetLimit(ctx, repository.NewTransactionLimitRepository(s.db), p)
}

func (s *LimitService) performSetLimit(ctx context.Context, limits repository.TransactionLimitRepository, p SetLimitParams) (*domain.TransactionLimit, error) {
	limit, err := domain.NewTransactionLimit(
		p.LimitType, p.LimitAmount,
		p.UserID, p.AccountType, p.TransactionType,
		s.clock.Now(),
	)
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, wrapError(domainErr.Code, err)
		}
		return nil, internalError("failed to build transaction limit", err)
	}

	if err := limits.Create(ctx, limit); err != nil {
		return nil, internalError("failed to create transaction limit", err)
	}

	s.logger.Info("transaction limit created",
		"limit_id", limit.ID,
		"limit_type", limit.LimitType,
		"limit_amount", limit.LimitAmount,
	)
	return limit, nil
}

// UpdateLimit replaces the cap amount of an existing rule.
func (s *LimitService) UpdateLimit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return s.update(ctx, id, func(l *domain.TransactionLimit) error {
		return l.UpdateLimit(amount)
	})
}

// Deactivate disables a rule without deleting it.
func (s *LimitService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(l *domain.TransactionLimit) error {
		l.Deactivate()
		return nil
	})
}

func (s *LimitService) update(ctx context.Context, id uuid.UUID, mutate func(*domain.TransactionLimit) error) error {
	return s.performUpdate(ctx, repository.NewTransactionLimitRepository(s.db), id, mutate)
}

func (s *LimitService) performUpdate(ctx context.Context, limits repository.TransactionLimitRepository, id uuid.UUID, mutate func(*domain.TransactionLimit) error) error {
	limit, err := limits.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return newError(CodeLimitNotFound, "transaction limit not found")
	}
	if err != nil {
		return internalError("failed to load transaction limit", err)
	}

	if err := mutate(limit); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return wrapError(domainErr.Code, err)
		}
		return internalError("failed to update transaction limit", err)
	}

	if err := limits.Save(ctx, limit); err != nil {
		return internalError("failed to save transaction limit", err)
	}

	return nil
}
