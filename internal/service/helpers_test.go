package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain"
)

// testNow is mid-afternoon UTC so the unusual-hours risk signal stays quiet
// unless a test moves the clock.
var testNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newActiveAccount(t *testing.T, balance string) *domain.Account {
	t.Helper()

	account, err := domain.NewAccount(uuid.New(), domain.AccountTypeSavings, "USD", testNow.AddDate(0, -1, 0))
	require.NoError(t, err)

	if balance != "" {
		m, err := domain.NewMoney(decimal.RequireFromString(balance), "USD")
		require.NoError(t, err)
		require.NoError(t, account.Deposit(m))
	}
	return account
}
