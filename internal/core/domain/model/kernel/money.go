package kernel

import (
	"fmt"
	"math"

	"marketplace/internal/pkg/errs"
)

// ErrMoneyIsNegative is returned when constructing a Money from a negative
// amount of cents. All monetary fields on orders are non-negative.
var ErrMoneyIsNegative = errs.NewValueIsInvalidError("money amount cannot be negative")

// Money is a non-negative monetary amount stored as integer cents.
// Storing cents avoids floating-point drift in totals arithmetic; rates are
// applied with half-up rounding so repeated calculations on unchanged inputs
// always produce identical results.
//
// The zero value is a valid zero amount.
//
// Example:
//
//	subtotal, _ := kernel.NewMoney(4000) // $40.00
//	tax := subtotal.MulRate(0.10)        // $4.00
type Money struct {
	cents int64
}

// NewMoney creates a Money from an amount of cents.
// Returns ErrMoneyIsNegative for negative amounts.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrMoneyIsNegative
	}
	return Money{cents: cents}, nil
}

// MustMoney creates a Money from cents and panics on negative amounts.
// Intended for constants and tests.
func MustMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount in integer cents.
func (m Money) Cents() int64 {
	return m.cents
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Sub returns m minus other. The result is floored at zero so that totals
// never go negative after discounts.
func (m Money) Sub(other Money) Money {
	if other.cents > m.cents {
		return Money{}
	}
	return Money{cents: m.cents - other.cents}
}

// MulQty returns the amount multiplied by a quantity.
func (m Money) MulQty(qty int) Money {
	return Money{cents: m.cents * int64(qty)}
}

// MulRate returns the amount multiplied by a fractional rate (e.g. 0.10 for
// 10%), rounded half-up to the nearest cent.
func (m Money) MulRate(rate float64) Money {
	return Money{cents: int64(math.Floor(float64(m.cents)*rate + 0.5))}
}

// GreaterThan reports whether m exceeds other.
func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

// LessThan reports whether m is below other.
func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

// IsEqual reports whether two amounts are equal.
func (m Money) IsEqual(other Money) bool {
	return m.cents == other.cents
}

// String formats the amount in dollars, e.g. "$40.80".
func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.cents/100, m.cents%100)
}
