package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// ListRecurring fetches one page of recurring transactions.
func (c *Client) ListRecurring(ctx context.Context, p query.PageRequest) (*domain.PageResult[domain.RecurringTransaction], error) {
	var page domain.PageResult[domain.RecurringTransaction]
	if err := c.get(ctx, "/recurring-transactions", query.ListParams(p), &page); err != nil {
		return nil, fmt.Errorf("client.ListRecurring: %w", err)
	}
	return &page, nil
}

// SearchRecurring fetches one page of recurring transactions matching f.
func (c *Client) SearchRecurring(ctx context.Context, f query.FilterSet, p query.PageRequest) (*domain.PageResult[domain.RecurringTransaction], error) {
	params, err := query.Build(query.Recurring, f, p)
	if err != nil {
		return nil, fmt.Errorf("client.SearchRecurring: %w", err)
	}
	var page domain.PageResult[domain.RecurringTransaction]
	if err := c.get(ctx, "/recurring-transactions/search", params, &page); err != nil {
		return nil, fmt.Errorf("client.SearchRecurring: %w", err)
	}
	return &page, nil
}

// CreateRecurring creates a recurring transaction.
func (c *Client) CreateRecurring(ctx context.Context, r domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	r.RecurringTransactionID = ""
	var created domain.RecurringTransaction
	if err := c.post(ctx, "/recurring-transactions", r, &created); err != nil {
		return nil, fmt.Errorf("client.CreateRecurring: %w", err)
	}
	return &created, nil
}

// UpdateRecurring patches a recurring transaction.
func (c *Client) UpdateRecurring(ctx context.Context, id domain.ID, r domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	r.RecurringTransactionID = id
	var updated domain.RecurringTransaction
	if err := c.patch(ctx, "/recurring-transactions/"+url.PathEscape(id.String()), r, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateRecurring: %w", err)
	}
	return &updated, nil
}

// DeleteRecurring deletes a recurring transaction by ID.
func (c *Client) DeleteRecurring(ctx context.Context, id domain.ID) error {
	if err := c.delete(ctx, "/recurring-transactions/"+url.PathEscape(id.String())); err != nil {
		return fmt.Errorf("client.DeleteRecurring: %w", err)
	}
	return nil
}
