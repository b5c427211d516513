package tui

import (
	"testing"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hell…"},
		{"empty string", "", 5, ""},
		{"single char over", "ab", 1, "…"},
		{"zero width", "ab", 0, ""},
		{"CJK chars", "你好世界", 3, "你好…"},
		{"multi-byte at boundary", "cafés are nice", 5, "café…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncStr(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abc…"},
		{"é", 2, "é "},
	}
	for _, tc := range tests {
		if got := padRight(tc.s, tc.width); got != tc.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tc.s, tc.width, got, tc.want)
		}
	}
}

func TestAlignCell(t *testing.T) {
	if got := alignCell("12.50", 8, true); got != "   12.50" {
		t.Errorf("right-aligned = %q", got)
	}
	if got := alignCell("Food", 6, false); got != "Food  " {
		t.Errorf("left-aligned = %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{4.5, "4.50"},
		{1234.5, "1,234.50"},
		{1000000, "1,000,000.00"},
		{-12.5, "-12.50"},
	}
	for _, tc := range tests {
		if got := formatAmount(domain.AmountFromFloat(tc.in)); got != tc.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-03-14T09:30:00", "2026-03-14"},
		{"2026-03-14", "2026-03-14"},
		{"", ""},
		{"soon", "soon"},
	}
	for _, tc := range tests {
		if got := formatDate(tc.in); got != tc.want {
			t.Errorf("formatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOrDash(t *testing.T) {
	if orDash("  ") != "-" || orDash("x") != "x" {
		t.Error("orDash mismatch")
	}
}
