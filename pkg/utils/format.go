// Package utils provides shared date and formatting helpers.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatValue formats a number with thousands grouping and two decimals,
// e.g. 21200.5 → "21,200.50".
func FormatValue(v float64) string {
	negative := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(v))

	dot := strings.IndexByte(s, '.')
	formatted := groupThousands(s[:dot]) + s[dot:]

	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatCompact formats a number in compact notation,
// e.g. 4_190_000 → "4.19M", 21_200_500_000_000 → "21.2T".
func FormatCompact(v float64) string {
	prefix := ""
	if v < 0 {
		prefix = "-"
		v = math.Abs(v)
	}

	switch {
	case v >= 1e12:
		return fmt.Sprintf("%s%sT", prefix, trimDecimals(v/1e12))
	case v >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, trimDecimals(v/1e9))
	case v >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, trimDecimals(v/1e6))
	case v >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, trimDecimals(v/1e3))
	default:
		return fmt.Sprintf("%s%.2f", prefix, v)
	}
}

// FormatPct formats a percentage value with sign and suffix,
// e.g. 4.95 → "+4.95%", -1.23 → "-1.23%".
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands inserts comma grouping into a digit string (groups of 3).
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]

	for len(remaining) > 0 {
		if len(remaining) > 3 {
			result = remaining[len(remaining)-3:] + "," + result
			remaining = remaining[:len(remaining)-3]
		} else {
			result = remaining + "," + result
			remaining = ""
		}
	}

	return result
}

// trimDecimals formats with up to 2 decimal places, removing trailing zeros.
func trimDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
