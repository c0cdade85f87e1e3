package decimal

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in the base currency with proper
// financial precision. All amounts stay unrounded through a calculation;
// rounding happens once, at result boundaries, via Round.
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// NewMoneyFromString creates a new Money instance from a string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// Round rounds the amount to 2 decimal places using banker's rounding
// (round half to even).
func (m Money) Round() Money {
	return Money{m.Decimal.RoundBank(2)}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Mul multiplies by a decimal factor
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{m.Decimal.Mul(factor)}
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.Decimal.IsZero()
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the amount with exactly 2 decimal places.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// RoundBank rounds a raw decimal to 2 places with banker's rounding.
// Convenience for call sites that do not need the Money wrapper.
func RoundBank(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
