package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/dashboard"
	"github.com/wealthwise/wealthwise/pkg/domain"
)

func newDashboardCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly summary and expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = dashboard.CurrentMonth(time.Now())
			}
			if err := dashboard.ValidateMonth(month); err != nil {
				return err
			}
			if err := a.setup(cmd, false); err != nil {
				return err
			}

			loader := dashboard.New(a.client, a.logger)
			if err := loader.Load(cmd.Context(), month); err != nil {
				if client.Code(err) == client.CodeUnauthenticated || client.Code(err) == client.CodeCredentialRefreshFailed {
					return err
				}
				a.logger.Warn("dashboard load failed", log.FieldMonth, month, log.FieldError, err)
				return errors.New(loader.Snapshot().Message)
			}
			printDashboard(newPrinter(cmd.OutOrStdout()), loader.Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show, YYYY-MM (default current)")
	return cmd
}

func printDashboard(p printer, snap dashboard.Snapshot) {
	label := snap.Month
	if t, err := time.Parse(dashboard.MonthLayout, snap.Month); err == nil {
		label = t.Format("January 2006")
	}
	p.meta("Dashboard · %s", label)

	s := snap.Data.Summary
	p.fields([][2]string{
		{"Income", p.amount(s.Income, domain.TransactionIncome)},
		{"Expenses", p.amount(s.Expenses, domain.TransactionExpense)},
		{"Savings", p.amount(s.Savings, "")},
	})
	p.line("")

	cats := append([]domain.CategoryExpense(nil), snap.Data.Categories...)
	if len(cats) == 0 {
		p.line("No expenses this month.")
		return
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Amount.GreaterThan(cats[j].Amount.Decimal)
	})
	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Amount.Decimal)
	}

	rows := make([][]string, len(cats))
	for i, c := range cats {
		rows[i] = []string{c.Category, formatAmount(c.Amount), share(c.Amount.Decimal, total)}
	}
	p.table(columns{
		headers: []string{"Category", "Amount", "Share"},
		right:   map[int]bool{1: true, 2: true},
	}, rows)
}

// share renders part as a percentage of total.
func share(part, total decimal.Decimal) string {
	if !total.IsPositive() {
		return "-"
	}
	pct := part.Div(total).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s%%", pct.StringFixed(1))
}
