// Package money converts between major currency units as people write them
// ("199.50") and the integer minor units (paise) stored everywhere else.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorPerMajor is the number of minor units in one major unit (100 paise = 1 rupee).
const MinorPerMajor = 100

var (
	ErrNegative      = errors.New("amount must not be negative")
	ErrTooPrecise    = errors.New("amount has more than two decimal places")
	ErrInvalidAmount = errors.New("invalid amount")
)

var hundred = decimal.NewFromInt(MinorPerMajor)

// ParseMajor parses a major-unit string into minor units without rounding.
// A leading currency symbol and thousands separators are accepted.
func ParseMajor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}

	minor := d.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if !minor.LessThanOrEqual(decimal.NewFromInt(1 << 53)) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return minor.IntPart(), nil
}

// FormatMajor renders minor units as a fixed two-decimal major amount.
func FormatMajor(minor int64) string {
	return decimal.NewFromInt(minor).Div(hundred).StringFixed(2)
}
