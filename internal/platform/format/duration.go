// Package format provides the display helpers used by the HTML templates:
// humanized durations, date/datetime rendering and paragraph markup.
package format

import (
	"fmt"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// FormatDuration renders a number of seconds as a humanized duration.
//
//	3600   -> "1 hour"
//	258732 -> "2 days, 23 hours, 52 minutes, 12 seconds"
//	0      -> ""
//
// Only non-zero components are emitted. A negative duration is rendered from
// its absolute value with a leading "-".
func FormatDuration(seconds int64) string {
	sign := ""
	abs := uint64(seconds)
	if seconds < 0 {
		sign = "-"
		abs = -abs // exact for math.MinInt64
	}

	d := abs / secondsPerDay
	h := abs % secondsPerDay / secondsPerHour
	m := abs % secondsPerHour / secondsPerMinute
	s := abs % secondsPerMinute

	tokens := make([]string, 0, 4)
	tokens = appendUnit(tokens, d, "day")
	tokens = appendUnit(tokens, h, "hour")
	tokens = appendUnit(tokens, m, "minute")
	tokens = appendUnit(tokens, s, "second")
	if len(tokens) == 0 {
		return ""
	}
	return sign + strings.Join(tokens, ", ")
}

func appendUnit(tokens []string, n uint64, unit string) []string {
	switch {
	case n == 0:
		return tokens
	case n == 1:
		return append(tokens, fmt.Sprintf("%d %s", n, unit))
	default:
		return append(tokens, fmt.Sprintf("%d %ss", n, unit))
	}
}
