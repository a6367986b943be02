package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "$",
	"AUD": "$",
}

// MinorDigits returns how many fractional digits the currency uses (2 for
// USD, 0 for JPY). Unknown codes fall back to 2.
func MinorDigits(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// ISOCode normalizes a currency code to its upper-case ISO form.
func ISOCode(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// MajorAmount converts minor units to a decimal amount (2999 usd -> 29.99).
func MajorAmount(minor int64, code string) float64 {
	div := 1.0
	for i := 0; i < MinorDigits(code); i++ {
		div *= 10
	}
	return float64(minor) / div
}

// FormatAmount renders a minor-unit amount for display: 2999 usd -> "$29.99".
func FormatAmount(minor int64, code string) string {
	iso, err := ISOCode(code)
	if err != nil {
		iso = strings.ToUpper(code)
	}
	digits := MinorDigits(iso)

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	var number string
	if digits == 0 {
		number = fmt.Sprintf("%d", minor)
	} else {
		div := int64(1)
		for i := 0; i < digits; i++ {
			div *= 10
		}
		number = fmt.Sprintf("%d.%0*d", minor/div, digits, minor%div)
	}

	if sym, ok := symbols[iso]; ok {
		return sign + sym + number
	}
	return sign + number + " " + iso
}
