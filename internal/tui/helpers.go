package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes, truncating when longer.
func padRight(s string, width int) string {
	s = truncStr(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// formatAmount renders an amount with thousands separators and two decimals.
func formatAmount(a domain.Amount) string {
	f, _ := a.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// formatDate shortens a backend timestamp to its date part.
func formatDate(s string) string {
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	return s
}

// yesNo renders a boolean flag.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// orDash keeps empty cells from collapsing the table.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
