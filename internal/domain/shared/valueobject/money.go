package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by monetary amounts
const MoneyScale int32 = 2

// moneyPattern is the accepted wire format for monetary strings
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ErrInvalidMoney is returned when a monetary string does not match the wire format
var ErrInvalidMoney = errors.New("amount must be a non-negative decimal with at most 2 fractional digits")

// Money is an immutable fixed-point monetary amount in the store currency.
// It serializes as a string with exactly two fractional digits.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal value
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// ParseMoney parses a wire-format monetary string such as "10", "10.5" or "10.50"
func ParseMoney(s string) (Money, error) {
	if !moneyPattern.MatchString(s) {
		return Money{}, ErrInvalidMoney
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// MustParseMoney parses a monetary string and panics on error. Intended for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsValidMoneyString reports whether s matches the monetary wire format
func IsValidMoneyString(s string) bool {
	return moneyPattern.MatchString(s)
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the underlying decimal
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns the difference of two amounts
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// MultiplyByInt multiplies the amount by a whole factor such as a quantity
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor))}
}

// DivideByInt divides the amount, returning zero when the divisor is zero
func (m Money) DivideByInt(divisor int64) Money {
	if divisor == 0 {
		return Zero()
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(divisor))}
}

// Round rounds half away from zero to the money scale
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(MoneyScale)}
}

// Equals compares amounts at the money scale
func (m Money) Equals(other Money) bool {
	return m.amount.Round(MoneyScale).Equal(other.amount.Round(MoneyScale))
}

// WithinTolerance reports whether |m - other| <= tolerance
func (m Money) WithinTolerance(other, tolerance Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(tolerance.amount)
}

// GreaterThan reports whether m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// String returns the amount with exactly two fractional digits
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		s = n.String()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyScale), nil
}

// Scan implements sql.Scanner. Numeric columns arrive as strings or bytes from postgres
// and as floats or integers from sqlite.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	return nil
}
