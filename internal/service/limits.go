package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// LimitResult reports the outcome of a limit evaluation. On rejection it
// carries the first violated rule's numbers; rules are evaluated most
// specific first, the account's built-in daily withdrawal limit last.
type LimitResult struct {
	Allowed       bool
	ViolatedLimit string
	LimitAmount   decimal.Decimal
	CurrentUsage  decimal.Decimal
	Remaining     decimal.Decimal
}

// Reason formats the violated limit for the caller.
func (r *LimitResult) Reason() string {
	return fmt.Sprintf("%s. Limit: %s, Used: %s, Remaining: %s",
		r.ViolatedLimit,
		r.LimitAmount.StringFixed(2),
		r.CurrentUsage.StringFixed(2),
		r.Remaining.StringFixed(2),
	)
}

// LimitChecker evaluates transaction limit rules against completed
// transaction volume. It is stateless; repositories are passed per call so
// the evaluation runs inside the caller's unit of work.
type LimitChecker struct {
	clock clock.Clock
}

// NewLimitChecker creates a new LimitChecker
func NewLimitChecker(clk clock.Clock) *LimitChecker {
	return &LimitChecker{clock: clk}
}

// Check evaluates every active rule applicable to the account's scope, then
// the account's own daily withdrawal limit for withdrawals. Any one
// violation rejects.
func (c *LimitChecker) Check(
	ctx context.Context,
	limits repository.TransactionLimitRepository,
	transactions repository.TransactionRepository,
	account *domain.Account,
	txType domain.TransactionType,
	amount decimal.Decimal,
) (*LimitResult, error) {
	rules, err := limits.FindActive(ctx, account.UserID, account.Type, txType)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()

	for _, rule := range rules {
		if rule.LimitType == domain.LimitTypePerTransaction {
			if amount.GreaterThan(rule.LimitAmount) {
				return &LimitResult{
					ViolatedLimit: "Per-transaction limit exceeded",
					LimitAmount:   rule.LimitAmount,
					CurrentUsage:  amount,
					Remaining:     rule.LimitAmount,
				}, nil
			}
			continue
		}

		from, to := periodWindow(rule.LimitType, now)
		usage, err := transactions.SumCompleted(ctx, account.ID, txType, from, to)
		if err != nil {
			return nil, err
		}

		if usage.Add(amount).GreaterThan(rule.LimitAmount) {
			return &LimitResult{
				ViolatedLimit: fmt.Sprintf("%s limit exceeded", rule.LimitType),
				LimitAmount:   rule.LimitAmount,
				CurrentUsage:  usage,
				Remaining:     decimal.Max(decimal.Zero, rule.LimitAmount.Sub(usage)),
			}, nil
		}
	}

	if txType == domain.TransactionTypeWithdrawal {
		from, to := periodWindow(domain.LimitTypeDaily, now)
		usage, err := transactions.SumCompleted(ctx, account.ID, domain.TransactionTypeWithdrawal, from, to)
		if err != nil {
			return nil, err
		}

		if usage.Add(amount).GreaterThan(account.DailyWithdrawalLimit) {
			return &LimitResult{
				ViolatedLimit: "Daily withdrawal limit exceeded",
				LimitAmount:   account.DailyWithdrawalLimit,
				CurrentUsage:  usage,
				Remaining:     decimal.Max(decimal.Zero, account.DailyWithdrawalLimit.Sub(usage)),
			}, nil
		}
	}

	return &LimitResult{Allowed: true}, nil
}

// periodWindow returns the calendar window a period rule is evaluated over.
// Days are UTC calendar days; weeks start on Sunday; months are calendar
// months.
func periodWindow(limitType domain.LimitType, now time.Time) (from, to time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)

	switch limitType {
	case domain.LimitTypeWeekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case domain.LimitTypeMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}
