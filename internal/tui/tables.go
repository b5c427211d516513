package tui

import (
	"context"

	"github.com/charmbracelet/lipgloss"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// TransactionSource is what the transaction detail view needs beyond the list.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id domain.ID) (*domain.Transaction, error)
	ViewReceipt(ctx context.Context, id domain.ID) (*domain.Receipt, error)
}

func transactionTable(src TransactionSource) listConfig[domain.Transaction] {
	byType := func(t domain.Transaction) lipgloss.Style { return amountStyle(t.TransactionType) }
	cfg := listConfig[domain.Transaction]{
		title:  "Transactions",
		noun:   "transaction",
		entity: query.Transactions,
		idOf:   domain.Transaction.EntityID,
		nameOf: func(t domain.Transaction) string { return t.Name },
		columns: []column[domain.Transaction]{
			{title: "Date", width: 10, cell: func(t domain.Transaction) string { return formatDate(t.Date) }},
			{title: "Name", width: 22, cell: func(t domain.Transaction) string { return t.Name }},
			{title: "Category", width: 14, cell: func(t domain.Transaction) string { return orDash(t.Category) }},
			{title: "Payment", width: 10, cell: func(t domain.Transaction) string { return orDash(t.PaymentType) }},
			{title: "Type", width: 8, cell: func(t domain.Transaction) string { return orDash(t.TransactionType) }, style: byType},
			{title: "Amount", width: 12, right: true, cell: func(t domain.Transaction) string { return formatAmount(t.Amount) }, style: byType},
		},
		fields: []detailField[domain.Transaction]{
			{"Name", func(t domain.Transaction) string { return t.Name }},
			{"Description", func(t domain.Transaction) string { return t.Description }},
			{"Amount", func(t domain.Transaction) string { return formatAmount(t.Amount) }},
			{"Type", func(t domain.Transaction) string { return t.TransactionType }},
			{"Category", func(t domain.Transaction) string { return t.Category }},
			{"Payment type", func(t domain.Transaction) string { return t.PaymentType }},
			{"Date", func(t domain.Transaction) string { return t.Date }},
		},
	}
	if src != nil {
		cfg.reload = func(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
			fresh, err := src.GetTransaction(ctx, t.TransactionID)
			if err != nil {
				return t, err
			}
			return *fresh, nil
		}
		cfg.receipt = src.ViewReceipt
	}
	return cfg
}

func recurringTable() listConfig[domain.RecurringTransaction] {
	type rt = domain.RecurringTransaction
	byType := func(r rt) lipgloss.Style { return amountStyle(r.TransactionType) }
	return listConfig[rt]{
		title:  "Recurring",
		noun:   "recurring transaction",
		entity: query.Recurring,
		idOf:   rt.EntityID,
		nameOf: func(r rt) string { return r.RecurringTransactionName },
		columns: []column[rt]{
			{title: "Name", width: 22, cell: func(r rt) string { return r.RecurringTransactionName }},
			{title: "Frequency", width: 9, cell: func(r rt) string { return orDash(r.Frequency) }},
			{title: "Next", width: 10, cell: func(r rt) string { return orDash(formatDate(r.NextOccurrence)) }},
			{title: "Category", width: 14, cell: func(r rt) string { return orDash(r.Category) }},
			{title: "Active", width: 6, cell: func(r rt) string { return yesNo(r.IsActive) }},
			{title: "Amount", width: 12, right: true, cell: func(r rt) string { return formatAmount(r.Amount) }, style: byType},
		},
		fields: []detailField[rt]{
			{"Name", func(r rt) string { return r.RecurringTransactionName }},
			{"Description", func(r rt) string { return r.Description }},
			{"Amount", func(r rt) string { return formatAmount(r.Amount) }},
			{"Type", func(r rt) string { return r.TransactionType }},
			{"Category", func(r rt) string { return r.Category }},
			{"Payment type", func(r rt) string { return r.PaymentType }},
			{"Frequency", func(r rt) string { return r.Frequency }},
			{"Start", func(r rt) string { return formatDate(r.StartDate) }},
			{"End", func(r rt) string { return formatDate(r.EndDate) }},
			{"Next", func(r rt) string { return formatDate(r.NextOccurrence) }},
			{"Active", func(r rt) string { return yesNo(r.IsActive) }},
		},
		toggle: func(r rt) rt {
			r.IsActive = !r.IsActive
			return r
		},
	}
}
