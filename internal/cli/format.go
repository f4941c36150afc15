// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/dupont/internal/model"
)

// FormatRate formats a fraction as a percentage with two decimals.
// e.g., 0.1234 -> "12.34%"
func FormatRate(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// FormatMultiple formats a plain ratio such as the equity multiplier.
// e.g., 4 -> "4.00"
func FormatMultiple(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// FormatDollars formats a dollar amount rounded to whole units.
// e.g., 1234.4 -> "$1,234", -1234 -> "-$1,234". Non-finite values render
// as "$Inf", "-$Inf" or "NaN".
func FormatDollars(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "$Inf"
	case math.IsInf(v, -1):
		return "-$Inf"
	}
	r := math.Round(v)
	digits := groupDigits(strconv.FormatFloat(math.Abs(r), 'f', 0, 64))
	if r < 0 {
		return "-$" + digits
	}
	return "$" + digits
}

// FormatMetric formats v the way metric m is displayed.
func FormatMetric(m model.Metric, v float64) string {
	switch {
	case m == model.MetricOperatingIncome:
		return FormatDollars(v)
	case m.IsRate():
		return FormatRate(v)
	default:
		return FormatMultiple(v)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		// Negate in uint64 so math.MinInt64 has a magnitude.
		return "-" + groupDigits(strconv.FormatUint(uint64(-(n+1))+1, 10))
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

// groupDigits inserts thousands separators into a run of decimal digits.
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
