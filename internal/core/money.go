// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals rounded to cents with half-up rounding
// (ties away from zero). Accumulation never goes through float64.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept on stored amounts.
const AmountScale = 2

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to an amount with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs, exponents and zero
// amounts are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("12.344") -> 12.34
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, s)
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, s)
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, s)
	}
	return NormalizeAmount(d)
}

// NormalizeAmount rounds d to cents and requires the result to be positive.
func NormalizeAmount(d decimal.Decimal) (decimal.Decimal, error) {
	rounded := d.Round(AmountScale)
	if !rounded.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return rounded, nil
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// FormatAmounts renders every value of a per-category map.
func FormatAmounts(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = FormatAmount(v)
	}
	return out
}
