package client

import (
	"context"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// TransactionResource exposes the transaction endpoints as a listing
// resource.
type TransactionResource struct{ c *Client }

// Transactions returns the transaction resource.
func (c *Client) Transactions() TransactionResource { return TransactionResource{c} }

func (r TransactionResource) List(ctx context.Context, p query.PageRequest) (domain.PageResult[domain.Transaction], error) {
	return deref(r.c.ListTransactions(ctx, p))
}

func (r TransactionResource) Search(ctx context.Context, f query.FilterSet, p query.PageRequest) (domain.PageResult[domain.Transaction], error) {
	return deref(r.c.SearchTransactions(ctx, f, p))
}

func (r TransactionResource) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	return deref(r.c.CreateTransaction(ctx, tx))
}

func (r TransactionResource) Update(ctx context.Context, id domain.ID, tx domain.Transaction) (domain.Transaction, error) {
	return deref(r.c.UpdateTransaction(ctx, id, tx))
}

func (r TransactionResource) Delete(ctx context.Context, id domain.ID) error {
	return r.c.DeleteTransaction(ctx, id)
}

// RecurringResource exposes the recurring transaction endpoints as a listing
// resource.
type RecurringResource struct{ c *Client }

// Recurring returns the recurring transaction resource.
func (c *Client) Recurring() RecurringResource { return RecurringResource{c} }

func (r RecurringResource) List(ctx context.Context, p query.PageRequest) (domain.PageResult[domain.RecurringTransaction], error) {
	return deref(r.c.ListRecurring(ctx, p))
}

func (r RecurringResource) Search(ctx context.Context, f query.FilterSet, p query.PageRequest) (domain.PageResult[domain.RecurringTransaction], error) {
	return deref(r.c.SearchRecurring(ctx, f, p))
}

func (r RecurringResource) Create(ctx context.Context, rt domain.RecurringTransaction) (domain.RecurringTransaction, error) {
	return deref(r.c.CreateRecurring(ctx, rt))
}

func (r RecurringResource) Update(ctx context.Context, id domain.ID, rt domain.RecurringTransaction) (domain.RecurringTransaction, error) {
	return deref(r.c.UpdateRecurring(ctx, id, rt))
}

func (r RecurringResource) Delete(ctx context.Context, id domain.ID) error {
	return r.c.DeleteRecurring(ctx, id)
}

func deref[T any](v *T, err error) (T, error) {
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}
