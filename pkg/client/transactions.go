package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// ListTransactions fetches one page of transactions.
func (c *Client) ListTransactions(ctx context.Context, p query.PageRequest) (*domain.PageResult[domain.Transaction], error) {
	var page domain.PageResult[domain.Transaction]
	if err := c.get(ctx, "/transactions", query.ListParams(p), &page); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return &page, nil
}

// SearchTransactions fetches one page of transactions matching f.
func (c *Client) SearchTransactions(ctx context.Context, f query.FilterSet, p query.PageRequest) (*domain.PageResult[domain.Transaction], error) {
	params, err := query.Build(query.Transactions, f, p)
	if err != nil {
		return nil, fmt.Errorf("client.SearchTransactions: %w", err)
	}
	var page domain.PageResult[domain.Transaction]
	if err := c.get(ctx, "/transactions/search", params, &page); err != nil {
		return nil, fmt.Errorf("client.SearchTransactions: %w", err)
	}
	return &page, nil
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, id domain.ID) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.get(ctx, "/transactions/"+url.PathEscape(id.String()), nil, &tx); err != nil {
		return nil, fmt.Errorf("client.GetTransaction: %w", err)
	}
	return &tx, nil
}

// CreateTransaction creates a transaction and returns the stored copy.
func (c *Client) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	tx.TransactionID = ""
	var created domain.Transaction
	if err := c.post(ctx, "/transactions", tx, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	return &created, nil
}

// UpdateTransaction patches a transaction and returns the stored copy.
func (c *Client) UpdateTransaction(ctx context.Context, id domain.ID, tx domain.Transaction) (*domain.Transaction, error) {
	tx.TransactionID = id
	var updated domain.Transaction
	if err := c.patch(ctx, "/transactions/"+url.PathEscape(id.String()), tx, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateTransaction: %w", err)
	}
	return &updated, nil
}

// DeleteTransaction deletes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, id domain.ID) error {
	if err := c.delete(ctx, "/transactions/"+url.PathEscape(id.String())); err != nil {
		return fmt.Errorf("client.DeleteTransaction: %w", err)
	}
	return nil
}
