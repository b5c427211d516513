package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

// MonthLayout is the month parameter format.
const MonthLayout = "2006-01"

// TransactionSummary returns income, expenses and savings for month (YYYY-MM).
func (c *Client) TransactionSummary(ctx context.Context, month string) (*domain.TransactionSummary, error) {
	params := url.Values{}
	params.Set("month", month)

	var s domain.TransactionSummary
	if err := c.get(ctx, "/dashboard/transaction-summary", params, &s); err != nil {
		return nil, fmt.Errorf("client.TransactionSummary: %w", err)
	}
	return &s, nil
}

// ExpensesByCategory returns the month's expenses grouped by category.
func (c *Client) ExpensesByCategory(ctx context.Context, month string) ([]domain.CategoryExpense, error) {
	params := url.Values{}
	params.Set("month", month)

	var rows []domain.CategoryExpense
	if err := c.get(ctx, "/chart/expense-summary-by-category", params, &rows); err != nil {
		return nil, fmt.Errorf("client.ExpensesByCategory: %w", err)
	}
	return rows, nil
}
