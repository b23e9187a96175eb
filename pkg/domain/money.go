// Package domain holds the core types shared by every settlement-engine
// component: money, transactions, agents, events, policy trees, and the
// scenario object the orchestrator is constructed from.
package domain

import (
	"fmt"
	"math"
)

// Money is a signed, integer-cent monetary amount. The core never converts
// money to or from a floating-point representation; all arithmetic here is
// exact integer arithmetic. Add and Sub check for int64 overflow; the
// Fraction and basis-point helpers below do not.
type Money int64

// Zero is the additive identity.
const Zero Money = 0

// Add returns m+other, or an error if the addition overflows int64.
func (m Money) Add(other Money) (Money, error) {
	sum := int64(m) + int64(other)
	if (other > 0 && sum < int64(m)) || (other < 0 && sum > int64(m)) {
		return 0, fmt.Errorf("money overflow: %d + %d", m, other)
	}
	return Money(sum), nil
}

// Sub returns m-other, or an error if the subtraction overflows int64.
func (m Money) Sub(other Money) (Money, error) {
	if other == math.MinInt64 {
		return 0, fmt.Errorf("money overflow: %d - %d", m, other)
	}
	return m.Add(-other)
}

// MustAdd panics on overflow; reserved for call sites where overflow is
// already known to be impossible (e.g. summing two non-negative values each
// bounded well under int64 range). Core call sites that handle arbitrary
// scenario input must use Add and propagate the error.
func (m Money) MustAdd(other Money) Money {
	v, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return v
}

// Max returns the larger of two Money values.
func Max(a, b Money) Money {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two Money values.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// Fraction is an exact numerator/denominator rational used for cost rates,
// haircuts, and escalation curves — anywhere spec.md forbids floating point
// but a non-integer ratio is required. Scenarios supply Fractions directly;
// no conversion from another numeric type happens at validation.
type Fraction struct {
	Num int64
	Den int64
}

// NewFraction builds a Fraction, requiring a strictly positive denominator.
func NewFraction(num, den int64) (Fraction, error) {
	if den <= 0 {
		return Fraction{}, fmt.Errorf("fraction denominator must be positive, got %d", den)
	}
	return Fraction{Num: num, Den: den}, nil
}

// ApplyFloor returns floor(amount * f) using integer arithmetic, truncating
// toward zero per spec.md §3's rounding rule.
func (f Fraction) ApplyFloor(amount Money) Money {
	if f.Den == 0 {
		return 0
	}
	num := int64(amount) * f.Num
	return Money(num / f.Den)
}

// ApplyBps interprets bps as basis points (num/10_000) of amount, truncated
// toward zero, as used by the cost accruer (spec.md §4.9).
func ApplyBps(bps int64, amount Money) Money {
	return Money(int64(amount) * bps / 10_000)
}
