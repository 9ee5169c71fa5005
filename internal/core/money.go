// Package core provides money parsing and handling utilities.
//
// Amounts are carried as shopspring decimals and persisted as integer cents,
// so sums never drift the way floating point would.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept in storage.
const AmountScale = 2

// MaxAmount is the largest storable amount (ten digits, two of them decimals).
var MaxAmount = decimal.RequireFromString("99999999.99")

// ParseAmount parses a non-negative decimal string. Both dot (12.34) and
// comma (12,34) separators are accepted. The value is returned unrounded;
// use RoundAmount before storing it.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RoundAmount clamps d to two fractional digits (half away from zero).
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// ValidateAmount checks that d is storable.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// ToCents converts an amount to integer cents after rounding.
func ToCents(d decimal.Decimal) int64 {
	return RoundAmount(d).Shift(AmountScale).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -AmountScale)
}

// FormatAmount renders an amount with exactly two decimals, e.g. "300.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}
