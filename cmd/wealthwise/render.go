package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes command output, styled on a terminal and tab-separated
// otherwise so results can be piped.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, styled: isTerminal(w)}
}

// columns describes a table. right marks columns aligned to the right.
type columns struct {
	headers []string
	right   map[int]bool
}

func (p printer) table(cols columns, rows [][]string) {
	if !p.styled {
		fmt.Fprintln(p.w, strings.Join(cols.headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(p.w, strings.Join(row, "\t"))
		}
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(cols.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cellStyle
			if row == table.HeaderRow {
				s = s.Inherit(headerStyle)
			}
			if cols.right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	fmt.Fprintln(p.w, t.Render())
}

// fields prints label/value pairs, one per line.
func (p printer) fields(pairs [][2]string) {
	for _, kv := range pairs {
		if p.styled {
			fmt.Fprintln(p.w, labelStyle.Render(kv[0])+" "+kv[1])
			continue
		}
		fmt.Fprintf(p.w, "%s\t%s\n", kv[0], kv[1])
	}
}

// meta prints a secondary line such as a page footer.
func (p printer) meta(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.styled {
		line = metaStyle.Render(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// amount renders a with thousands separators, coloured by transaction type
// on a terminal.
func (p printer) amount(a domain.Amount, transactionType string) string {
	s := formatAmount(a)
	if !p.styled {
		return s
	}
	switch transactionType {
	case domain.TransactionIncome:
		return incomeStyle.Render(s)
	case domain.TransactionExpense:
		return expenseStyle.Render(s)
	}
	return s
}

func formatAmount(a domain.Amount) string {
	f, _ := a.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// formatDate shortens a backend timestamp to its date part.
func formatDate(s string) string {
	if len(s) > 10 && s[10] == 'T' {
		return s[:10]
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
