package domain

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account and fixes its defaults at creation.
type AccountType string

const (
	AccountTypeSavings      AccountType = "Savings"
	AccountTypeCurrent      AccountType = "Current"
	AccountTypeFixedDeposit AccountType = "FixedDeposit"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "Active"
	AccountStatusFrozen AccountStatus = "Frozen"
	AccountStatusClosed AccountStatus = "Closed"
)

// Account owns a balance and the daily-withdrawal-limit state machine. All
// mutation goes through its methods; persistence is the caller's concern.
type Account struct {
	ID                   uuid.UUID
	AccountNumber        string
	UserID               uuid.UUID
	Type                 AccountType
	Balance              decimal.Decimal
	Currency             string
	Status               AccountStatus
	DailyWithdrawalLimit decimal.Decimal
	DailyWithdrawalUsed  decimal.Decimal
	DailyLimitResetDate  time.Time
	InterestRate         decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewAccount creates an active account with a freshly generated,
// checksum-valid account number and the defaults for its type.
func NewAccount(userID uuid.UUID, accountType AccountType, currency string, now time.Time) (*Account, error) {
	limit, rate, err := accountTypeDefaults(accountType)
	if err != nil {
		return nil, err
	}

	cur, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:                   uuid.New(),
		AccountNumber:        GenerateAccountNumber(),
		UserID:               userID,
		Type:                 accountType,
		Balance:              decimal.Zero,
		Currency:             cur,
		Status:               AccountStatusActive,
		DailyWithdrawalLimit: limit,
		DailyWithdrawalUsed:  decimal.Zero,
		DailyLimitResetDate:  now.UTC().Truncate(24 * time.Hour),
		InterestRate:         rate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func accountTypeDefaults(accountType AccountType) (limit, interestRate decimal.Decimal, err error) {
	switch accountType {
	case AccountTypeSavings:
		return decimal.NewFromInt(5000), decimal.NewFromFloat(0.02), nil
	case AccountTypeCurrent:
		return decimal.NewFromInt(50000), decimal.Zero, nil
	case AccountTypeFixedDeposit:
		return decimal.Zero, decimal.NewFromFloat(0.05), nil
	default:
		return decimal.Zero, decimal.Zero,
			Errorf(ErrCodeInvalidAccountType, "unknown account type: %s", accountType)
	}
}

// BalanceMoney returns the current balance as a Money value.
func (a *Account) BalanceMoney() Money {
	return Money{amount: a.Balance, currency: a.Currency}
}

// Deposit increases the balance. Frozen and closed accounts reject all
// mutation; the deposit currency must match the account currency.
func (a *Account) Deposit(amount Money) error {
	if err := a.ensureCanTransact(); err != nil {
		return err
	}

	if amount.Currency() != a.Currency {
		return Errorf(ErrCodeCurrencyMismatch,
			"cannot deposit %s to a %s account", amount.Currency(), a.Currency)
	}

	a.Balance = a.Balance.Add(amount.Amount())
	return nil
}

// Withdraw decreases the balance after enforcing the transact gate, the
// fixed-deposit rule, the daily withdrawal limit and available funds. The
// daily-used counter resets in the same step when now has crossed into a new
// calendar day.
func (a *Account) Withdraw(amount Money, now time.Time) error {
	if err := a.ensureCanTransact(); err != nil {
		return err
	}

	if amount.Currency() != a.Currency {
		return Errorf(ErrCodeCurrencyMismatch,
			"cannot withdraw %s from a %s account", amount.Currency(), a.Currency)
	}

	if a.Type == AccountTypeFixedDeposit {
		return NewError(ErrCodeInvalidState, "cannot withdraw from a fixed deposit account")
	}

	a.resetDailyLimitIfNeeded(now)

	if a.DailyWithdrawalUsed.Add(amount.Amount()).GreaterThan(a.DailyWithdrawalLimit) {
		remaining := a.DailyWithdrawalLimit.Sub(a.DailyWithdrawalUsed)
		return Errorf(ErrCodeLimitExceeded,
			"daily withdrawal limit exceeded: requested %s, remaining %s",
			amount.Amount().StringFixed(2), remaining.StringFixed(2))
	}

	if amount.Amount().GreaterThan(a.Balance) {
		return Errorf(ErrCodeInsufficientFunds,
			"insufficient funds: requested %s, available %s",
			amount.Amount().StringFixed(2), a.Balance.StringFixed(2))
	}

	a.Balance = a.Balance.Sub(amount.Amount())
	a.DailyWithdrawalUsed = a.DailyWithdrawalUsed.Add(amount.Amount())
	return nil
}

// Freeze blocks all mutation until Unfreeze. Closed accounts cannot be frozen.
func (a *Account) Freeze() error {
	if a.Status == AccountStatusClosed {
		return NewError(ErrCodeInvalidState, "cannot freeze a closed account")
	}
	a.Status = AccountStatusFrozen
	return nil
}

// Unfreeze reactivates a frozen account.
func (a *Account) Unfreeze() error {
	if a.Status != AccountStatusFrozen {
		return NewError(ErrCodeInvalidState, "account is not frozen")
	}
	a.Status = AccountStatusActive
	return nil
}

// Close closes the account. Only permitted at zero balance.
func (a *Account) Close() error {
	if a.Balance.IsPositive() {
		return NewError(ErrCodeInvalidState,
			"cannot close an account with positive balance, withdraw all funds first")
	}
	a.Status = AccountStatusClosed
	return nil
}

// SetDailyWithdrawalLimit overrides the daily withdrawal limit.
func (a *Account) SetDailyWithdrawalLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return NewError(ErrCodeInvalidAmount, "daily withdrawal limit cannot be negative")
	}
	a.DailyWithdrawalLimit = limit
	return nil
}

func (a *Account) ensureCanTransact() error {
	switch a.Status {
	case AccountStatusFrozen:
		return Errorf(ErrCodeAccountFrozen, "account %s is frozen", a.AccountNumber)
	case AccountStatusClosed:
		return Errorf(ErrCodeAccountClosed, "account %s is closed", a.AccountNumber)
	}
	return nil
}

func (a *Account) resetDailyLimitIfNeeded(now time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	if today.After(a.DailyLimitResetDate) {
		a.DailyWithdrawalUsed = decimal.Zero
		a.DailyLimitResetDate = today
	}
}

// GenerateAccountNumber returns a 10-digit account number whose last digit is
// a Luhn check digit.
func GenerateAccountNumber() string {
	digits := make([]byte, 9)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits) + strconv.Itoa(luhnCheckDigit(digits))
}

// ValidateAccountNumber checks that an account number is 10 digits with a
// valid Luhn check digit.
func ValidateAccountNumber(accountNumber string) error {
	if len(accountNumber) != 10 {
		return NewError(ErrCodeInvalidState, "account number must be 10 digits")
	}

	sum := 0
	double := false
	for i := len(accountNumber) - 1; i >= 0; i-- {
		c := accountNumber[i]
		if c < '0' || c > '9' {
			return NewError(ErrCodeInvalidState, "account number must contain only digits")
		}

		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	if sum%10 != 0 {
		return NewError(ErrCodeInvalidState, "account number failed checksum")
	}
	return nil
}

func luhnCheckDigit(digits []byte) int {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return (10 - sum%10) % 10
}
