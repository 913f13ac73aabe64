// Package money converts between decimal amounts and the integer minor units
// stored in the database. Every monetary column is decimal(18,2); storing
// cents as INTEGER keeps SQLite from coercing values to binary floating point.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of fractional digits of every amount.
	Scale = 2
	// Precision is the total number of digits of every amount.
	Precision = 18
)

var limit = decimal.New(1, Precision) // exclusive bound on |cents|

// ToCents converts an amount to minor units.
// It rejects amounts that need more than Scale fractional digits or more
// than Precision digits in total.
func ToCents(d decimal.Decimal) (int64, error) {
	if !d.Equal(d.Truncate(Scale)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Scale)
	}
	cents := d.Shift(Scale)
	if cents.Abs().GreaterThanOrEqual(limit) {
		return 0, fmt.Errorf("amount %s exceeds decimal(%d,%d)", d.String(), Precision, Scale)
	}
	return cents.IntPart(), nil
}

// FromCents converts minor units to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Scale)
}

// Parse reads a decimal string such as "125000.50" into minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToCents(d)
}

// Format renders minor units with exactly two fractional digits.
func Format(cents int64) string {
	return FromCents(cents).StringFixed(Scale)
}

// Percent returns pct percent of cents, rounded half away from zero.
func Percent(cents int64, pct int) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Multiply returns unit * quantity, or an error when the product does not
// fit decimal(18,2).
func Multiply(unitCents int64, quantity int) (int64, error) {
	return bounded(decimal.NewFromInt(unitCents).Mul(decimal.NewFromInt(int64(quantity))))
}

// Add returns a + b, or an error when the sum does not fit decimal(18,2).
func Add(a, b int64) (int64, error) {
	return bounded(decimal.NewFromInt(a).Add(decimal.NewFromInt(b)))
}

func bounded(cents decimal.Decimal) (int64, error) {
	if cents.Abs().GreaterThanOrEqual(limit) {
		return 0, fmt.Errorf("amount %s exceeds decimal(%d,%d)", cents.Shift(-Scale).String(), Precision, Scale)
	}
	return cents.IntPart(), nil
}
