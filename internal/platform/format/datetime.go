package format

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultDatePattern is the strftime pattern used when no pattern is given.
const DefaultDatePattern = "%Y-%m-%d - %A"

// FormatDate renders the calendar date of t. The zero time renders as "".
// An optional strftime pattern overrides DefaultDatePattern.
func FormatDate(t time.Time, pattern ...string) string {
	if t.IsZero() {
		return ""
	}
	p := DefaultDatePattern
	if len(pattern) > 0 && pattern[0] != "" {
		p = pattern[0]
	}
	return strftime.Format(p, t)
}

// FormatDatetime renders date and time of t, e.g.
// "2024-05-01 - Wednesday at 2:30pm". The zero time renders as "".
// An optional strftime pattern replaces the default rendering entirely.
func FormatDatetime(t time.Time, pattern ...string) string {
	if t.IsZero() {
		return ""
	}
	if len(pattern) > 0 && pattern[0] != "" {
		return strftime.Format(pattern[0], t)
	}
	date := strftime.Format(DefaultDatePattern, t)
	clock := strings.ToLower(strings.TrimLeft(strftime.Format("%I:%M%p", t), "0"))
	return date + " at " + clock
}
