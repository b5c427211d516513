package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
	"github.com/wealthwise/wealthwise/pkg/query"
)

var recurring = entity[domain.RecurringTransaction]{
	noun:     "recurring transaction",
	plural:   "recurring transactions",
	query:    query.Recurring,
	messages: listing.RecurringMessages,
	insert:   listing.Prepend,
	idOf:     domain.RecurringTransaction.EntityID,
	setters:  recurringSetters,
	validate: domain.RecurringTransaction.Validate,
	cols: columns{
		headers: []string{"ID", "Name", "Frequency", "Next", "Category", "Active", "Amount"},
		right:   map[int]bool{6: true},
	},
	row: func(p printer, r domain.RecurringTransaction) []string {
		return []string{
			r.RecurringTransactionID.String(),
			r.RecurringTransactionName,
			orDash(r.Frequency),
			orDash(formatDate(r.NextOccurrence)),
			orDash(r.Category),
			yesNo(r.IsActive),
			p.amount(r.Amount, r.TransactionType),
		}
	},
	detail: func(p printer, r domain.RecurringTransaction) [][2]string {
		return [][2]string{
			{"ID", r.RecurringTransactionID.String()},
			{"Name", r.RecurringTransactionName},
			{"Description", orDash(r.Description)},
			{"Amount", p.amount(r.Amount, r.TransactionType)},
			{"Type", orDash(r.TransactionType)},
			{"Frequency", orDash(r.Frequency)},
			{"Category", orDash(r.Category)},
			{"Payment", orDash(r.PaymentType)},
			{"Start", orDash(r.StartDate)},
			{"End", orDash(r.EndDate)},
			{"Next", orDash(r.NextOccurrence)},
			{"Active", yesNo(r.IsActive)},
		}
	},
}

func newRecurringCmd(a *app) *cobra.Command {
	res := func() listing.Resource[domain.RecurringTransaction] { return a.client.Recurring() }

	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rt"},
		Short:   "Manage recurring transactions",
	}
	cmd.AddCommand(
		recurring.listCmd(a, res),
		recurring.searchCmd(a, res),
		newRecurringAddCmd(a, res),
		newRecurringEditCmd(a, res),
		recurring.deleteCmd(a, res),
	)
	return cmd
}

func newRecurringAddCmd(a *app, res func() listing.Resource[domain.RecurringTransaction]) *cobra.Command {
	return &cobra.Command{
		Use:   "add key=value...",
		Short: "Add a recurring transaction",
		Long: "Add a recurring transaction from key=value fields, for example:\n" +
			"  wealthwise recurring add name=Rent amount=900 transactionType=EXPENSE frequency=MONTHLY startDate=2026-01-01\n" +
			"Fields: " + strings.Join(fieldNames(recurringSetters), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctrl := recurring.controller(a, res(), query.DefaultPage(), out)
			// New schedules start active unless told otherwise.
			created, err := recurring.create(cmd.Context(), ctrl, append([]string{"active=true"}, args...))
			if err != nil {
				return err
			}
			p := newPrinter(out)
			p.fields(recurring.detail(p, created))
			return nil
		},
	}
}

func newRecurringEditCmd(a *app, res func() listing.Resource[domain.RecurringTransaction]) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> key=value...",
		Short: "Change fields of a recurring transaction",
		Long: "Change fields of a recurring transaction; active=false pauses it, for example:\n" +
			"  wealthwise recurring edit 7 active=false\n" +
			"Fields: " + strings.Join(fieldNames(recurringSetters), ", "),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			id := domain.ID(args[0])
			ctrl := recurring.controller(a, res(), query.PageRequest{Size: findPageSize}.Normalize(), out)
			r, err := recurring.find(cmd.Context(), ctrl, id)
			if err != nil {
				return err
			}
			if err := assign(&r, recurringSetters, args[1:]); err != nil {
				return err
			}
			if err := r.Validate(); err != nil {
				return err
			}

			updated, err := ctrl.Update(cmd.Context(), id, r)
			if err != nil {
				return err
			}
			p := newPrinter(out)
			p.fields(recurring.detail(p, updated))
			return nil
		},
	}
}
