package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wealthwise/wealthwise/internal/notify"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// Logo colours: the wordmark rests in emerald and a gold highlight sweeps
// across it.
var (
	logoBase = rgb{74, 222, 128}
	logoGlow = rgb{212, 168, 68}
)

// logoSweep is the number of frames between the starts of two sweeps. The
// highlight moves a quarter letter per frame and rests off the end.
const logoSweep = 60

type rgb struct{ r, g, b float64 }

// blend mixes a towards b by t in [0, 1].
func blend(a, b rgb, t float64) lipgloss.Color {
	mix := func(x, y float64) int { return clampByte(x + (y-x)*t) }
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", mix(a.r, b.r), mix(a.g, b.g), mix(a.b, b.b)))
}

// renderShimmerLogo renders "W E A L T H W I S E" with the highlight at the
// position given by frame.
func renderShimmerLogo(frame int) string {
	const text = "WEALTHWISE"
	head := float64(frame%logoSweep) / 4

	letters := make([]string, len(text))
	for i := range len(text) {
		glow := math.Max(0, 1-math.Abs(float64(i)-head)/2)
		letters[i] = lipgloss.NewStyle().
			Bold(true).
			Foreground(blend(logoBase, logoGlow, glow)).
			Render(string(text[i]))
	}
	return strings.Join(letters, "  ")
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	// Money
	incomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	expenseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	borderColor = lipgloss.Color("#1e1e2a")
)

// severityStyles colour the status line by notice severity.
var severityStyles = map[notify.Severity]lipgloss.Style{
	notify.Success: accentStyle,
	notify.Info:    dimStyle,
	notify.Warning: goldStyle,
	notify.Error:   rejectStyle,
}

// SeverityStyle returns the status line style for sev.
func SeverityStyle(sev notify.Severity) lipgloss.Style {
	if s, ok := severityStyles[sev]; ok {
		return s
	}
	return dimStyle
}

// categoryColors keeps a stable colour per expense category in the chart.
var categoryColors = []lipgloss.Color{
	"#e06060", "#b080d0", "#f0944a", "#d4a844",
	"#60a0e0", "#3ecce4", "#c084e0", "#8890a0",
}

// CategoryStyle picks a chart colour for the i-th category.
func CategoryStyle(i int) lipgloss.Style {
	if i < 0 {
		i = -i
	}
	return lipgloss.NewStyle().Foreground(categoryColors[i%len(categoryColors)])
}

// amountStyle colours income green and expenses red.
func amountStyle(transactionType string) lipgloss.Style {
	switch transactionType {
	case "INCOME":
		return incomeStyle
	case "EXPENSE":
		return expenseStyle
	}
	return normalStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries with the standard spacing.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// helpView renders the key reference overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("W E A L T H W I S E")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	keys := []struct{ key, desc string }{
		{"1 2 3", "Dashboard, Transactions, Recurring"},
		{"j/k", "Move the selection"},
		{"enter", "Open details"},
		{"/", "Edit filters"},
		{"s", "Search with the current filters"},
		{"r", "Reset filters and list everything"},
		{"h/l  ←/→", "Previous / next page (month on the dashboard)"},
		{"+/-", "Grow / shrink the page size"},
		{"d", "Delete the selected row"},
		{"c", "Copy the selected id"},
		{"a", "Pause or resume a recurring transaction"},
		{"q", "Quit"},
	}
	commands := []struct{ cmd, desc string }{
		{"wealthwise login", "Sign in through the browser"},
		{"wealthwise logout", "End the session"},
		{"wealthwise transactions", "List, search and edit transactions"},
		{"wealthwise receipt", "View, download or upload receipts"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-12s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	return b.String()
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}
