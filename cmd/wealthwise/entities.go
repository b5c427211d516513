package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// entity describes how one resource is listed, edited and printed.
type entity[T any] struct {
	noun     string
	plural   string
	query    query.Entity
	messages listing.Messages
	insert   listing.Insert
	idOf     func(T) domain.ID
	setters  map[string]setter[T]
	validate func(T) error
	cols     columns
	row      func(p printer, item T) []string
	detail   func(p printer, item T) [][2]string
}

// noticeWriter prints success notices; failures come back as errors and are
// reported once by main.
type noticeWriter struct{ w io.Writer }

func (n noticeWriter) Notify(message string, severity notify.Severity) {
	if severity == notify.Success || severity == notify.Info {
		fmt.Fprintln(n.w, message)
	}
}

// pageFlags are the paging options shared by list and search.
type pageFlags struct {
	page int
	size int
	sort string
	asc  bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().IntVarP(&f.size, "size", "n", 0, "rows per page (default from config)")
	cmd.Flags().StringVar(&f.sort, "sort", query.DefaultSortBy, "field to sort search results by")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "sort search results ascending")
}

func (f pageFlags) request(defaultSize int) query.PageRequest {
	p := query.PageRequest{Page: f.page - 1, Size: f.size, SortBy: f.sort, Direction: query.Desc}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if f.asc {
		p.Direction = query.Asc
	}
	return p.Normalize()
}

func (e entity[T]) controller(a *app, res listing.Resource[T], page query.PageRequest, out io.Writer) *listing.Controller[T] {
	return listing.New(res, e.idOf, listing.Options{
		Insert:   e.insert,
		Page:     page,
		Notifier: noticeWriter{out},
		Messages: e.messages,
		Logger:   a.logger,
	})
}

// list fetches one page, in search mode when filters is non-nil, and prints it.
func (e entity[T]) list(ctx context.Context, ctrl *listing.Controller[T], filters query.FilterSet, p printer) error {
	req := ctrl.Mount()
	if filters != nil {
		page := req.Page.Page
		req = ctrl.Search(filters)
		if page > 0 {
			req = ctrl.SetPage(page)
		}
	}
	if err := ctrl.Load(ctx, req); err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	if len(snap.Rows) == 0 {
		p.line("No %s found.", e.plural)
		return nil
	}
	rows := make([][]string, len(snap.Rows))
	for i, item := range snap.Rows {
		rows[i] = e.row(p, item)
	}
	p.table(e.cols, rows)
	footer := fmt.Sprintf("page %d of %d", snap.Page.Page+1, max(snap.TotalPages, 1))
	if snap.Mode == listing.SearchMode {
		footer += " · " + summarize(snap.Filters)
	}
	p.meta("%s", footer)
	return nil
}

func (e entity[T]) listCmd(a *app, res func() listing.Resource[T]) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + e.plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctrl := e.controller(a, res(), pf.request(a.cfg.PageSize), out)
			return e.list(cmd.Context(), ctrl, nil, newPrinter(out))
		},
	}
	pf.register(cmd)
	return cmd
}

func (e entity[T]) searchCmd(a *app, res func() listing.Resource[T]) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "search key=value...",
		Short: "Search " + e.plural + " by filter",
		Long: "Search " + e.plural + ". Filters are key=value pairs; empty values are ignored.\n" +
			"Keys: " + strings.Join(e.query.Keys(), ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := query.ParseAssignments(e.query, args)
			if err != nil {
				return err
			}
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctrl := e.controller(a, res(), pf.request(a.cfg.PageSize), out)
			return e.list(cmd.Context(), ctrl, filters, newPrinter(out))
		},
	}
	pf.register(cmd)
	return cmd
}

// create validates the fields and stores a new entity.
func (e entity[T]) create(ctx context.Context, ctrl *listing.Controller[T], pairs []string) (T, error) {
	var item T
	if err := assign(&item, e.setters, pairs); err != nil {
		return item, err
	}
	if err := e.validate(item); err != nil {
		return item, err
	}
	return ctrl.Create(ctx, item)
}

func (e entity[T]) deleteCmd(a *app, res func() listing.Resource[T]) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + e.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ID(args[0])
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %s %s? (y/N) ", e.noun, id))
				if err != nil || !ok {
					return err
				}
			}
			if err := a.setup(cmd, false); err != nil {
				return err
			}
			ctrl := e.controller(a, res(), query.DefaultPage(), cmd.OutOrStdout())
			return ctrl.Delete(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// findPageSize is the page size used when scanning the list for one row.
const findPageSize = 50

// find walks the list pages through ctrl until it reaches the row with id.
func (e entity[T]) find(ctx context.Context, ctrl *listing.Controller[T], id domain.ID) (T, error) {
	var zero T
	req := ctrl.Mount()
	for {
		if err := ctrl.Load(ctx, req); err != nil {
			return zero, err
		}
		for _, item := range ctrl.Snapshot().Rows {
			if e.idOf(item) == id {
				return item, nil
			}
		}
		next, ok := ctrl.NextPage()
		if !ok {
			break
		}
		req = next
	}
	return zero, goerrors.New(fmt.Sprintf("%s %s not found", e.noun, id), goerrors.CategoryNotFound).
		WithTextCode(client.CodeNotFound)
}

var errNeedConfirmation = errors.New("refusing to delete without confirmation; pass --yes")

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses, so scripts must pass --yes.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	in := cmd.InOrStdin()
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, errNeedConfirmation
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// summarize renders active filters as "k=v k=v".
func summarize(f query.FilterSet) string {
	var parts []string
	for _, k := range f.Active() {
		v, _ := query.Format(f[k])
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}
