// Package money converts between minor-unit amounts and their decimal representations.
// All supported currencies (NOK, EUR, SEK, DKK, USD) use two decimal places.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToDecimal converts minor units into a major-unit decimal.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FromDecimal rounds a major-unit decimal to minor units.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// Format renders minor units as "1234.56".
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(2)
}

// FormatCurrency renders minor units with a currency suffix, e.g. "499.00 NOK".
func FormatCurrency(minor int64, currency string) string {
	return Format(minor) + " " + currency
}

// ParseEuropean parses "1.234,56" style amounts into minor units.
func ParseEuropean(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return parse(clean, s)
}

// Parse accepts both "1234.56" and "1 234,56" forms. When both separators are
// present the right-most one is taken as the decimal separator.
func Parse(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\'':
			return -1
		}

		return r
	}, strings.TrimSpace(s))

	comma := strings.LastIndex(clean, ",")
	dot := strings.LastIndex(clean, ".")

	switch {
	case comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case dot > comma:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return parse(clean, s)
}

func parse(clean, original string) (int64, error) {
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", original, err)
	}

	return FromDecimal(d), nil
}

// RelativeDiff returns |a - base| / base. base must be positive.
func RelativeDiff(a, base int64) decimal.Decimal {
	diff := decimal.NewFromInt(a - base).Abs()
	return diff.Div(decimal.NewFromInt(base))
}

// Abs returns the absolute value of a minor-unit amount.
func Abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
