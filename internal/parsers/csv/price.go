package csv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var errNoDigits = errors.New("no numeric value found")

// ParsePrice parses a competitor price such as "149", "149,50", "1 299,50 kr",
// "1.299,50", "1,299.50" or "149:-". The last separator is the decimal mark
// when both appear; a lone comma is always decimal.
func ParsePrice(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimSuffix(cleaned, ":-")

	cleaned = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, cleaned)
	cleaned = strings.Trim(cleaned, ".,")

	if !strings.ContainsFunc(cleaned, unicode.IsDigit) {
		return 0, fmt.Errorf("parse price %q: %w", value, errNoDigits)
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", value, err)
	}
	return price, nil
}

// FormatPrice renders a price with two decimals and a dot separator
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
