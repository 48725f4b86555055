package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("normalizes currency to upper case", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), "usd")

		require.NoError(t, err)
		assert.Equal(t, "USD", m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("rounds half to even", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.555"), "USD")

		require.NoError(t, err)
		assert.Equal(t, "100.56", m.Amount().StringFixed(2))

		m, err = NewMoney(decimal.RequireFromString("100.565"), "USD")

		require.NoError(t, err)
		assert.Equal(t, "100.56", m.Amount().StringFixed(2))
	})

	t.Run("from float", func(t *testing.T) {
		m, err := NewMoneyFromFloat(19.999, "USD")

		require.NoError(t, err)
		assert.Equal(t, "20.00", m.Amount().StringFixed(2))
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(-1), "USD")

		var domainErr *Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInvalidAmount, domainErr.Code)
	})

	t.Run("rejects malformed currency codes", func(t *testing.T) {
		for _, currency := range []string{"", "US", "USDX", "U$D"} {
			_, err := NewMoney(decimal.NewFromInt(1), currency)

			var domainErr *Error
			require.ErrorAs(t, err, &domainErr, "currency %q", currency)
			assert.Equal(t, ErrCodeInvalidCurrency, domainErr.Code)
		}
	})
}

func TestMoneyArithmetic(t *testing.T) {
	usd := func(s string) Money {
		m, err := NewMoney(decimal.RequireFromString(s), "USD")
		require.NoError(t, err)
		return m
	}

	t.Run("add", func(t *testing.T) {
		sum, err := usd("10.50").Add(usd("2.25"))

		require.NoError(t, err)
		assert.Equal(t, "12.75 USD", sum.String())
	})

	t.Run("sub below zero fails", func(t *testing.T) {
		_, err := usd("10.00").Sub(usd("10.01"))

		var domainErr *Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInsufficientFunds, domainErr.Code)
	})

	t.Run("mixed currencies fail", func(t *testing.T) {
		eur, err := NewMoney(decimal.NewFromInt(5), "EUR")
		require.NoError(t, err)

		_, err = usd("10.00").Add(eur)

		var domainErr *Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeCurrencyMismatch, domainErr.Code)
	})
}
