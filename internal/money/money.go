package money

import "github.com/shopspring/decimal"

// Tolerance is the maximum rounding drift allowed when comparing recomputed
// amounts against stored ones.
var Tolerance = decimal.New(1, -2) // 0.01

// Round2 rounds a monetary amount half-up to two decimal places. Every
// accumulation boundary rounds through here so invoice fields never drift
// against each other.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Equalish reports whether two amounts match within Tolerance.
func Equalish(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
