package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger/internal/clock"
	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/repository"
)

// RiskLevel orders the escalation of a fraud score.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the risk level name.
func (l RiskLevel) String() string {
	switch l {
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	default:
		return "Low"
	}
}

// escalate raises the level, never lowers it.
func (l RiskLevel) escalate(to RiskLevel) RiskLevel {
	if to > l {
		return to
	}
	return l
}

// FraudResult is the scored verdict for an outgoing transaction. Critical
// risk blocks; High risk passes but is flagged for manual review.
type FraudResult struct {
	RiskLevel            RiskLevel
	Flags                []string
	Allowed              bool
	RequiresManualReview bool
	BlockReason          string
}

var (
	highAmountThreshold     = decimal.NewFromInt(10000)
	veryHighAmountThreshold = decimal.NewFromInt(50000)
	dailyVolumeThreshold    = decimal.NewFromInt(100000)
	newAccountThreshold     = decimal.NewFromInt(5000)
	unusualHoursThreshold   = decimal.NewFromInt(1000)
	roundAmountUnit         = decimal.NewFromInt(1000)
)

const (
	hourlyCountThreshold  = 10
	dailyCountThreshold   = 50
	sameDestinationMax    = 3
	roundAmountMax        = 3
	newAccountAge         = 7 * 24 * time.Hour
	sameDestinationWindow = 30 * time.Minute
)

// FraudScorer evaluates rule-based risk signals over an account's recent
// transaction history. Every signal is evaluated so the result carries all
// applicable flags, not just the first.
type FraudScorer struct {
	clock clock.Clock
}

// NewFraudScorer creates a new FraudScorer
func NewFraudScorer(clk clock.Clock) *FraudScorer {
	return &FraudScorer{clock: clk}
}

// Score rates an outgoing transaction before it mutates any balance.
// destinationID is set for transfers only.
func (f *FraudScorer) Score(
	ctx context.Context,
	transactions repository.TransactionRepository,
	account *domain.Account,
	txType domain.TransactionType,
	amount decimal.Decimal,
	destinationID *uuid.UUID,
) (*FraudResult, error) {
	now := f.clock.Now()
	dayStart := now.UTC().Truncate(24 * time.Hour)
	level := RiskLow
	var flags []string

	flag := func(name string, to RiskLevel) {
		flags = append(flags, name)
		level = level.escalate(to)
	}

	if amount.GreaterThanOrEqual(veryHighAmountThreshold) {
		flag("very high amount", RiskHigh)
	} else if amount.GreaterThanOrEqual(highAmountThreshold) {
		flag("high amount", RiskMedium)
	}

	hourlyCount, err := transactions.CountByAccount(ctx, account.ID, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	if hourlyCount >= hourlyCountThreshold {
		flag("high hourly transaction frequency", RiskHigh)
	}

	dailyCount, err := transactions.CountByAccount(ctx, account.ID, dayStart)
	if err != nil {
		return nil, err
	}
	if dailyCount >= dailyCountThreshold {
		flag("high daily transaction frequency", RiskMedium)
	}

	dailyVolume, err := transactions.SumCompletedBySource(ctx, account.ID, dayStart)
	if err != nil {
		return nil, err
	}
	if dailyVolume.Add(amount).GreaterThan(dailyVolumeThreshold) {
		flag("daily outgoing volume exceeded", RiskHigh)
	}

	if now.Sub(account.CreatedAt) < newAccountAge && amount.GreaterThan(newAccountThreshold) {
		flag("large transaction on new account", RiskHigh)
	}

	if hour := now.UTC().Hour(); hour < 6 && amount.GreaterThan(unusualHoursThreshold) {
		flag("unusual hours activity", RiskMedium)
	}

	if txType == domain.TransactionTypeTransfer && destinationID != nil {
		sameDest, err := transactions.CountTransfersToDestination(ctx, account.ID, *destinationID, now.Add(-sameDestinationWindow))
		if err != nil {
			return nil, err
		}
		if sameDest >= sameDestinationMax {
			flag("repeated transfers to same destination", RiskHigh)
		}
	}

	if amount.GreaterThanOrEqual(roundAmountUnit) && amount.Mod(roundAmountUnit).IsZero() {
		roundCount, err := transactions.CountRoundAmounts(ctx, account.ID, now.Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		if roundCount >= roundAmountMax {
			flag("repeated round amounts", RiskHigh)
		}
	}

	result := &FraudResult{
		RiskLevel:            level,
		Flags:                flags,
		Allowed:              level != RiskCritical,
		RequiresManualReview: level >= RiskHigh,
	}
	if !result.Allowed {
		result.BlockReason = "transaction blocked by risk controls: " + strings.Join(flags, "; ")
	}
	return result, nil
}
