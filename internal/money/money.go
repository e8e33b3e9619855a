// Package money rounds and formats decimal amounts at a fixed two-digit scale.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every reported amount carries.
const Scale = 2

// ErrInvalidAmount is returned for amounts the rounding contract does not cover.
var ErrInvalidAmount = errors.New("money: invalid amount")

// RoundingMode selects how half-way values are resolved.
type RoundingMode string

const (
	// HalfUp rounds half away from zero.
	HalfUp RoundingMode = "half_up"
	// HalfEven rounds half to the nearest even digit.
	HalfEven RoundingMode = "half_even"
)

// ParseRoundingMode accepts the configuration spelling of a rounding mode.
// An empty string resolves to HalfUp.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch RoundingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", HalfUp:
		return HalfUp, nil
	case HalfEven:
		return HalfEven, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Round rounds a non-negative amount to Scale digits.
func Round(amount decimal.Decimal, mode RoundingMode) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount.String())
	}
	return round(amount, mode), nil
}

// RoundSigned rounds amounts that may legitimately be negative, such as a
// difference of totals. Rounding is symmetric around zero in both modes.
func RoundSigned(amount decimal.Decimal, mode RoundingMode) decimal.Decimal {
	if amount.IsNegative() {
		return round(amount.Neg(), mode).Neg()
	}
	return round(amount, mode)
}

// MustRound is Round for callers whose inputs were validated upstream.
// A negative amount here is a programming error and panics.
func MustRound(amount decimal.Decimal, mode RoundingMode) decimal.Decimal {
	out, err := Round(amount, mode)
	if err != nil {
		panic(err)
	}
	return out
}

func round(amount decimal.Decimal, mode RoundingMode) decimal.Decimal {
	if mode == HalfEven {
		return amount.RoundBank(Scale)
	}
	return amount.Round(Scale)
}

// Percent returns amount * percent / 100 at full precision.
func Percent(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
}

// Format renders an amount with exactly Scale fractional digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Scale)
}

// Parse reads a decimal string such as "19.99".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MinorUnits converts a rounded amount into integer cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(Scale).Round(0).IntPart()
}
