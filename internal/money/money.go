// Package money provides fixed-point currency arithmetic in integer minor
// units (cents).
//
// All derived amounts in the application (line totals, discounts, taxes,
// balances) are computed on integers so that repeated discount/tax chains
// never accumulate floating point drift. Rounding happens in exactly one
// place per derived value: PercentOf rounds half-up to the nearest cent.
// Strings cross the boundary through Parse and Format only.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer minor units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Parse converts user input such as "123.45" into cents.
// Input with more than two decimal places is rounded half-up to the cent.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q cannot be negative", s)
	}
	// Shift into minor units, then round once. decimal.Round is
	// half-away-from-zero, which is half-up for non-negative values.
	return Cents(d.Shift(2).Round(0).IntPart()), nil
}

// Format renders cents as a plain two-decimal string, e.g. 29160 -> "291.60".
func Format(c Cents) string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// String implements fmt.Stringer using the display convention of Format.
func (c Cents) String() string {
	return Format(c)
}

// PercentOf computes pct% of amount, rounded half-up to the nearest cent.
// This is the single rounding rule used for percentage discounts and taxes;
// callers must not round the result again.
func PercentOf(amount Cents, pct float64) Cents {
	if pct == 0 || amount == 0 {
		return 0
	}
	d := decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		Round(0)
	return Cents(d.IntPart())
}

// Min returns the smaller of two amounts.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}
