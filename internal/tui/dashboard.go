package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/wealthwise/wealthwise/pkg/dashboard"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
)

// barWidth is the widest expense bar in the category chart.
const barWidth = 30

type dashboardLoadedMsg struct {
	req  dashboard.Request
	data dashboard.Data
	err  error
}

type dashboardModel struct {
	loader  *dashboard.Loader
	month   string
	spinner spinner.Model
	width   int
	height  int
}

func newDashboardModel(l *dashboard.Loader, month string) dashboardModel {
	if month == "" {
		month = dashboard.CurrentMonth(time.Now())
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return dashboardModel{loader: l, month: month, spinner: sp}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.load()
}

func (m dashboardModel) load() tea.Cmd {
	l := m.loader
	req := l.Request(m.month)
	fetch := func() tea.Msg {
		data, err := l.Fetch(context.Background(), req)
		return dashboardLoadedMsg{req: req, data: data, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.loader.Snapshot().State != listing.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		m.loader.Apply(msg.req, msg.data, msg.err)

	case tea.KeyMsg:
		switch msg.String() {
		case "h", "left":
			m.month = dashboard.ShiftMonth(m.month, -1)
			return m, m.load()
		case "l", "right":
			m.month = dashboard.ShiftMonth(m.month, 1)
			return m, m.load()
		case "t":
			m.month = dashboard.CurrentMonth(time.Now())
			return m, m.load()
		case "r":
			return m, m.load()
		}
	}
	return m, nil
}

func (m dashboardModel) helpKeys() string {
	return helpBar(
		helpEntry("1-3", "tabs"), helpEntry("h/l", "month"), helpEntry("t", "this month"),
		helpEntry("r", "reload"), helpEntry("?", "help"), helpEntry("q", "quit"),
	)
}

func (m dashboardModel) View() string {
	snap := m.loader.Snapshot()
	var b strings.Builder

	title := " " + selectedStyle.Render("Dashboard") + "  " + metaStyle.Render(monthLabel(m.month))
	if snap.State == listing.Loading {
		title += "  " + m.spinner.View()
	}
	b.WriteString(title + "\n\n")

	if snap.State == listing.Error {
		b.WriteString("  " + rejectStyle.Render(snap.Message) + "\n")
		return b.String()
	}
	if snap.State != listing.Loaded {
		return b.String()
	}

	s := snap.Data.Summary
	b.WriteString("  " + dimStyle.Render(padRight("Income", 12)) + incomeStyle.Render(formatAmount(s.Income)) + "\n")
	b.WriteString("  " + dimStyle.Render(padRight("Expenses", 12)) + expenseStyle.Render(formatAmount(s.Expenses)) + "\n")
	savings := goldStyle
	if s.Savings.IsNegative() {
		savings = rejectStyle
	}
	b.WriteString("  " + dimStyle.Render(padRight("Savings", 12)) + savings.Render(formatAmount(s.Savings)) + "\n\n")

	b.WriteString("  " + sectionHeaderStyle.Render("Expenses by category") + "\n")
	if len(snap.Data.Categories) == 0 {
		b.WriteString("  " + dimStyle.Render("No expenses this month.") + "\n")
		return b.String()
	}
	b.WriteString(renderCategoryChart(snap.Data.Categories))
	return b.String()
}

// renderCategoryChart draws a horizontal bar per category, largest first.
func renderCategoryChart(rows []domain.CategoryExpense) string {
	rows = append([]domain.CategoryExpense(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.GreaterThan(rows[j].Amount.Decimal)
	})

	top := rows[0].Amount.Decimal
	var b strings.Builder
	for i, r := range rows {
		n := 0
		if top.IsPositive() {
			n = int(r.Amount.Div(top).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
		}
		switch {
		case n < 1 && r.Amount.IsPositive():
			n = 1
		case n < 0:
			n = 0
		case n > barWidth:
			n = barWidth
		}
		bar := CategoryStyle(i).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "  %s %s %s\n",
			normalStyle.Render(padRight(orDash(r.Category), 16)),
			bar+strings.Repeat(" ", barWidth-n),
			dimStyle.Render(formatAmount(r.Amount)))
	}
	return b.String()
}

// monthLabel renders 2026-03 as "March 2026".
func monthLabel(month string) string {
	t, err := time.Parse(dashboard.MonthLayout, month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}
