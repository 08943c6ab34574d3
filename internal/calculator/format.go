package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Limits on amounts taken from users or documents. A decimal with a huge
// exponent parses in constant time but costs time and memory proportional to
// the exponent in the first comparison or rescale.
const (
	maxInputLen = 32
	minExponent = -20
	maxExponent = 20
	maxDigits   = 30
)

// ParseAmount reads user input as a decimal. Empty, non-numeric or
// out-of-range input is zero; there is no error because fields are re-parsed
// on every keystroke.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxInputLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return Bounded(d)
}

// Bounded returns d, or zero when its exponent or digit count is outside
// what a bill amount can need.
func Bounded(d decimal.Decimal) decimal.Decimal {
	exp := d.Exponent()
	if exp < minExponent || exp > maxExponent || d.NumDigits() > maxDigits {
		return decimal.Zero
	}
	return d
}

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders d with exactly two decimals, for display.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
