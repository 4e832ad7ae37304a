// Package format converts stored values into their display form.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// MaxAmountCents is the largest amount the invoices.amount INT column holds.
const MaxAmountCents = math.MaxInt32

// ErrAmountOutOfRange is returned for amounts that do not fit in an invoice.
var ErrAmountOutOfRange = errors.New("amount out of range")

// FormatCurrency renders an amount in cents as US dollars, e.g. 123456 -> "$1,234.56".
// Dollars and cents are formatted as integers, so every int64 is exact.
func FormatCurrency(cents int64) string {
	dollars, rem := cents/100, cents%100
	sign := ""
	if cents < 0 {
		sign = "-"
		dollars, rem = -dollars, -rem
	}
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprint(number.Decimal(dollars)), rem)
}

// CentsToDollars converts stored cents into a dollar amount for edit forms.
func CentsToDollars(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// ParseDollars parses a user-entered dollar amount such as "49.99" or "$1,200".
func ParseDollars(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// DollarsToCents converts dollars to integer cents, rounding half away from zero.
// Results outside ±MaxAmountCents return ErrAmountOutOfRange.
func DollarsToCents(dollars decimal.Decimal) (int64, error) {
	cents := dollars.Shift(2).Round(0)
	if cents.Abs().GreaterThan(decimal.NewFromInt(MaxAmountCents)) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, dollars.String())
	}
	return cents.IntPart(), nil
}
