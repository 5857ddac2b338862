// Package money provides integer-cent money helpers.
//
// Amounts are carried as int64 cents everywhere; conversion to a display
// string happens only at the formatting boundary so repeated summation
// never accumulates floating-point error.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a decimal string cannot be read as a
// non-negative money amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Format renders cents as a display string with a dollar sign and exactly
// two fraction digits, e.g. 1234 -> "$12.34".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// ParseDecimal converts a decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) separators and performs
// half-up rounding on the third decimal place. Negative values are
// rejected; zero is allowed.
//
// Examples:
//
//	ParseDecimal("12.34") -> 1234, nil
//	ParseDecimal("12,34") -> 1234, nil
//	ParseDecimal("12.345") -> 1235, nil (rounds up)
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, ok := strings.Cut(s, ".")
	if !ok {
		whole, frac, _ = strings.Cut(s, ",")
	}
	if whole == "" {
		if frac == "" {
			return 0, ErrInvalidAmount
		}
		whole = "0"
	}
	// ParseUint rejects sign prefixes, so "-1" and "+1" fall out here.
	n, err := strconv.ParseUint(whole, 10, 63)
	if err != nil || n > (1<<63-1)/100 {
		return 0, ErrInvalidAmount
	}
	cents := int64(n) * 100
	for i, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
		switch i {
		case 0:
			cents += int64(r-'0') * 10
		case 1:
			cents += int64(r - '0')
		case 2:
			if r >= '5' {
				cents++
			}
		}
	}
	return cents, nil
}
