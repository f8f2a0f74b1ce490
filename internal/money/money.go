// Package money handles fixed-point amounts with two fractional digits.
// Amounts travel as decimal.Decimal at the edges and as int64 minor units
// (cents) inside split and balance arithmetic.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of every stored amount.
const Scale = 2

var (
	ErrTooPrecise  = errors.New("amount has more than 2 fractional digits")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrNegative    = errors.New("amount must not be negative")
	ErrOutOfRange  = errors.New("amount is out of range")
	ErrTooLarge    = errors.New("amount exceeds 9999999999.99")
)

// MaxMinor is the largest amount accepted, in minor units. It matches the
// NUMERIC(12,2) columns used on PostgreSQL.
const MaxMinor int64 = 999_999_999_999

var (
	minorPerUnit = decimal.New(1, Scale)
	maxAmount    = decimal.New(MaxMinor, -Scale)
)

// Parse reads a decimal string such as "10.01".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if err := CheckScale(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckScale fails if d cannot be represented exactly in minor units.
func CheckScale(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(Scale)) {
		return ErrTooPrecise
	}
	return nil
}

// CheckMax fails if d is above the largest storable amount.
func CheckMax(d decimal.Decimal) error {
	if d.GreaterThan(maxAmount) {
		return ErrTooLarge
	}
	return nil
}

// CheckPositive fails unless 0 < d <= 9999999999.99 with at most two
// fractional digits.
func CheckPositive(d decimal.Decimal) error {
	if err := CheckScale(d); err != nil {
		return err
	}
	if !d.IsPositive() {
		return ErrNotPositive
	}
	return CheckMax(d)
}

// CheckNonNegative fails unless 0 <= d <= 9999999999.99 with at most two
// fractional digits.
func CheckNonNegative(d decimal.Decimal) error {
	if err := CheckScale(d); err != nil {
		return err
	}
	if d.IsNegative() {
		return ErrNegative
	}
	return CheckMax(d)
}

// ToMinor converts d to minor units. d must satisfy CheckScale.
func ToMinor(d decimal.Decimal) (int64, error) {
	if err := CheckScale(d); err != nil {
		return 0, err
	}
	minor := d.Mul(minorPerUnit)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || minor.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

// FromMinor converts minor units back to a decimal amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
