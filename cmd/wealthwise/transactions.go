package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
	"github.com/wealthwise/wealthwise/pkg/query"
)

var transactions = entity[domain.Transaction]{
	noun:     "transaction",
	plural:   "transactions",
	query:    query.Transactions,
	messages: listing.TransactionMessages,
	insert:   listing.Append,
	idOf:     domain.Transaction.EntityID,
	setters:  transactionSetters,
	validate: domain.Transaction.Validate,
	cols: columns{
		headers: []string{"ID", "Date", "Name", "Category", "Payment", "Type", "Amount"},
		right:   map[int]bool{6: true},
	},
	row: func(p printer, t domain.Transaction) []string {
		return []string{
			t.TransactionID.String(),
			orDash(formatDate(t.Date)),
			t.Name,
			orDash(t.Category),
			orDash(t.PaymentType),
			orDash(t.TransactionType),
			p.amount(t.Amount, t.TransactionType),
		}
	},
	detail: func(p printer, t domain.Transaction) [][2]string {
		return [][2]string{
			{"ID", t.TransactionID.String()},
			{"Name", t.Name},
			{"Description", orDash(t.Description)},
			{"Amount", p.amount(t.Amount, t.TransactionType)},
			{"Type", orDash(t.TransactionType)},
			{"Category", orDash(t.Category)},
			{"Payment", orDash(t.PaymentType)},
			{"Date", orDash(t.Date)},
		}
	},
}

func newTransactionsCmd(a *app) *cobra.Command {
	res := func() listing.Resource[domain.Transaction] { return a.client.Transactions() }

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List, search and edit transactions",
	}
	cmd.AddCommand(
		transactions.listCmd(a, res),
		transactions.searchCmd(a, res),
		newTransactionShowCmd(a),
		newTransactionAddCmd(a, res),
		newTransactionEditCmd(a, res),
		transactions.deleteCmd(a, res),
	)
	return cmd
}

func newTransactionShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			t, err := a.client.GetTransaction(cmd.Context(), domain.ID(args[0]))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.fields(transactions.detail(p, *t))
			return nil
		},
	}
}

func newTransactionAddCmd(a *app, res func() listing.Resource[domain.Transaction]) *cobra.Command {
	var receipt string
	cmd := &cobra.Command{
		Use:   "add key=value...",
		Short: "Add a transaction",
		Long: "Add a transaction from key=value fields, for example:\n" +
			"  wealthwise transactions add name=Coffee amount=4.50 transactionType=EXPENSE category=Food date=2026-03-01\n" +
			"Fields: " + strings.Join(fieldNames(transactionSetters), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctrl := transactions.controller(a, res(), query.DefaultPage(), out)
			created, err := transactions.create(cmd.Context(), ctrl, args)
			if err != nil {
				return err
			}
			p := newPrinter(out)
			p.fields(transactions.detail(p, created))

			if receipt == "" {
				return nil
			}
			if err := a.uploadReceipt(cmd.Context(), created.TransactionID, receipt); err != nil {
				return fmt.Errorf("transaction saved but the receipt upload failed: %w", err)
			}
			fmt.Fprintln(out, "Receipt uploaded.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&receipt, "receipt", "r", "", "receipt file to attach")
	return cmd
}

func newTransactionEditCmd(a *app, res func() listing.Resource[domain.Transaction]) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> key=value...",
		Short: "Change fields of a transaction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			id := domain.ID(args[0])
			current, err := a.client.GetTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			t := *current
			if err := assign(&t, transactionSetters, args[1:]); err != nil {
				return err
			}
			if err := t.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ctrl := transactions.controller(a, res(), query.DefaultPage(), out)
			updated, err := ctrl.Update(cmd.Context(), id, t)
			if err != nil {
				return err
			}
			p := newPrinter(out)
			p.fields(transactions.detail(p, updated))
			return nil
		},
	}
}
