package domain

import (
	"github.com/shopspring/decimal"
)

// Money is an immutable currency-tagged amount. Amounts are rounded to two
// decimal places at construction using banker's rounding; binary operations
// require matching currencies.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a Money value. The amount must be non-negative and the
// currency a 3-letter code; the currency is normalized to upper case.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewError(ErrCodeInvalidAmount, "amount cannot be negative")
	}

	cur, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	return Money{amount: amount.RoundBank(2), currency: cur}, nil
}

// NewMoneyFromFloat creates a Money value from a float amount.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the normalized 3-letter currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two same-currency amounts.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns the difference of two same-currency amounts. Subtracting below
// zero fails with an insufficient-funds error, which makes Sub usable as a
// low-level affordability check.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}

	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, Errorf(ErrCodeInsufficientFunds,
			"insufficient funds: requested %s, available %s", other.amount.StringFixed(2), m.amount.StringFixed(2))
	}

	return Money{amount: result, currency: m.currency}, nil
}

// GreaterThan reports whether m exceeds other. Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// LessThan reports whether m is below other. Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.currency != other.currency {
		return Errorf(ErrCodeCurrencyMismatch,
			"cannot operate on different currencies: %s and %s", m.currency, other.currency)
	}
	return nil
}

// NormalizeCurrency validates a 3-letter currency code and returns it in
// upper case.
func NormalizeCurrency(currency string) (string, error) {
	if len(currency) != 3 {
		return "", NewError(ErrCodeInvalidCurrency, "currency must be a 3-letter ISO code")
	}

	buf := []byte(currency)
	for i, c := range buf {
		switch {
		case c >= 'a' && c <= 'z':
			buf[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
		default:
			return "", NewError(ErrCodeInvalidCurrency, "currency must be a 3-letter ISO code")
		}
	}

	return string(buf), nil
}
