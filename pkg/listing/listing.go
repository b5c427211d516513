// Package listing drives a paginated list view: list or search mode, page
// and size, last-request-wins fetching and local reconciliation after
// mutations.
package listing

import (
	"context"
	"errors"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// State of the view.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	}
	return "idle"
}

// Mode selects the endpoint.
type Mode int

const (
	ListMode Mode = iota
	SearchMode
)

func (m Mode) String() string {
	if m == SearchMode {
		return "search"
	}
	return "list"
}

// Resource is the server side of a listing.
type Resource[T any] interface {
	List(ctx context.Context, p query.PageRequest) (domain.PageResult[T], error)
	Search(ctx context.Context, f query.FilterSet, p query.PageRequest) (domain.PageResult[T], error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id domain.ID, item T) (T, error)
	Delete(ctx context.Context, id domain.ID) error
}

// Insert controls where a created row is placed.
type Insert int

const (
	Append Insert = iota
	Prepend
)

// Messages are the notices published for each outcome. Empty messages are
// not published.
type Messages struct {
	LoadFailed   string
	Created      string
	CreateFailed string
	Duplicate    string // fallback when the server gives no message
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

// Options configure a Controller.
type Options struct {
	Insert Insert
	// ClearOnError drops the current rows when a fetch fails.
	ClearOnError bool
	Page         query.PageRequest
	Notifier     notify.Notifier
	Messages     Messages
	Logger       *log.Logger
}

// Request identifies one issued fetch.
type Request struct {
	Generation uint64
	Mode       Mode
	Page       query.PageRequest
	Filters    query.FilterSet
}

// Snapshot is a copy of the controller's view state.
type Snapshot[T any] struct {
	State      State
	Mode       Mode
	Rows       []T
	TotalPages int
	Page       query.PageRequest
	Filters    query.FilterSet
	Err        error
	Generation uint64
}

// ErrStale is returned by Load when a newer request superseded this one.
var ErrStale = errors.New("listing: superseded by a newer request")

// Controller holds the state of one list view. It is safe for concurrent use;
// fetches run outside the lock and are applied only if still current.
type Controller[T any] struct {
	mu         sync.Mutex
	res        Resource[T]
	idOf       func(T) domain.ID
	opts       Options
	state      State
	mode       Mode
	page       query.PageRequest
	filters    query.FilterSet
	rows       []T
	totalPages int
	err        error
	gen        uint64
}

// New returns an Idle controller. idOf extracts a row's identifier.
func New[T any](res Resource[T], idOf func(T) domain.ID, opts Options) *Controller[T] {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	opts.Logger = opts.Logger.WithComponent(log.ComponentListing)
	return &Controller[T]{
		res:  res,
		idOf: idOf,
		opts: opts,
		page: opts.Page.Normalize(),
	}
}

// issue moves to Loading and returns a request for the current parameters.
// Callers hold c.mu.
func (c *Controller[T]) issue() Request {
	c.gen++
	c.state = Loading
	return Request{
		Generation: c.gen,
		Mode:       c.mode,
		Page:       c.page,
		Filters:    c.filters.Clone(),
	}
}

// Mount starts the first fetch.
func (c *Controller[T]) Mount() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue()
}

// Refresh refetches with unchanged parameters.
func (c *Controller[T]) Refresh() Request {
	return c.Mount()
}

// SetPage moves to page n (clamped at 0).
func (c *Controller[T]) SetPage(n int) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	c.page.Page = n
	return c.issue()
}

// NextPage advances one page if there is one.
func (c *Controller[T]) NextPage() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page.Page+1 >= c.totalPages {
		return Request{}, false
	}
	c.page.Page++
	return c.issue(), true
}

// PrevPage goes back one page if not on the first.
func (c *Controller[T]) PrevPage() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page.Page == 0 {
		return Request{}, false
	}
	c.page.Page--
	return c.issue(), true
}

// SetSize changes the page size and returns to page 0.
func (c *Controller[T]) SetSize(size int) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size <= 0 {
		size = query.DefaultSize
	}
	c.page.Size = size
	c.page.Page = 0
	return c.issue()
}

// Search submits filters, switches to search mode and returns to page 0.
func (c *Controller[T]) Search(f query.FilterSet) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = SearchMode
	c.filters = f.Clone()
	c.page.Page = 0
	return c.issue()
}

// Reset leaves search mode, clears the filters and returns to page 0.
func (c *Controller[T]) Reset() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ListMode
	c.filters = nil
	c.page.Page = 0
	return c.issue()
}

// Fetch performs req against the resource without touching controller state.
func (c *Controller[T]) Fetch(ctx context.Context, req Request) (domain.PageResult[T], error) {
	if req.Mode == SearchMode {
		return c.res.Search(ctx, req.Filters, req.Page)
	}
	return c.res.List(ctx, req.Page)
}

// Apply records the outcome of req. It reports false, changing nothing, when
// a newer request has been issued since.
func (c *Controller[T]) Apply(req Request, res domain.PageResult[T], err error) bool {
	c.mu.Lock()
	if req.Generation != c.gen {
		c.mu.Unlock()
		c.opts.Logger.Debug("discarding stale response",
			log.FieldGeneration, req.Generation, log.FieldPage, req.Page.Page)
		return false
	}
	if err != nil {
		c.state = Error
		c.err = err
		if c.opts.ClearOnError {
			c.rows = nil
			c.totalPages = 0
		}
		c.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			c.opts.Logger.Warn("fetch failed", log.FieldMode, req.Mode.String(), log.FieldError, err)
			c.notify(c.opts.Messages.LoadFailed, notify.Error)
		}
		return true
	}
	c.state = Loaded
	c.err = nil
	c.rows = res.Content
	c.totalPages = res.TotalPages
	c.mu.Unlock()
	return true
}

// Load fetches and applies req. It returns ErrStale if the response was
// discarded, or the fetch error.
func (c *Controller[T]) Load(ctx context.Context, req Request) error {
	res, err := c.Fetch(ctx, req)
	if !c.Apply(req, res, err) {
		return ErrStale
	}
	return err
}

// Create stores item and inserts the server's copy locally without a refetch.
// A conflict leaves the rows untouched and is published as a warning with
// the server's message.
func (c *Controller[T]) Create(ctx context.Context, item T) (T, error) {
	created, err := c.res.Create(ctx, item)
	if err != nil {
		var zero T
		if goerrors.IsCategory(err, goerrors.CategoryConflict) {
			msg := errMessage(err)
			if msg == "" {
				msg = c.opts.Messages.Duplicate
			}
			c.notify(msg, notify.Warning)
		} else {
			c.notify(c.opts.Messages.CreateFailed, notify.Error)
		}
		return zero, err
	}

	c.mu.Lock()
	if c.opts.Insert == Prepend {
		c.rows = append([]T{created}, c.rows...)
	} else {
		c.rows = append(append([]T(nil), c.rows...), created)
	}
	c.mu.Unlock()
	c.notify(c.opts.Messages.Created, notify.Success)
	return created, nil
}

// Update stores item and replaces the row with the same id.
func (c *Controller[T]) Update(ctx context.Context, id domain.ID, item T) (T, error) {
	updated, err := c.res.Update(ctx, id, item)
	if err != nil {
		var zero T
		c.notify(c.opts.Messages.UpdateFailed, notify.Error)
		return zero, err
	}

	c.mu.Lock()
	rows := make([]T, len(c.rows))
	for i, row := range c.rows {
		if c.idOf(row) == id {
			row = updated
		}
		rows[i] = row
	}
	c.rows = rows
	c.mu.Unlock()
	c.notify(c.opts.Messages.Updated, notify.Success)
	return updated, nil
}

// Delete removes the entity on the server and drops the row with that id.
func (c *Controller[T]) Delete(ctx context.Context, id domain.ID) error {
	if err := c.res.Delete(ctx, id); err != nil {
		c.notify(c.opts.Messages.DeleteFailed, notify.Error)
		return err
	}

	c.mu.Lock()
	rows := make([]T, 0, len(c.rows))
	for _, row := range c.rows {
		if c.idOf(row) != id {
			rows = append(rows, row)
		}
	}
	c.rows = rows
	c.mu.Unlock()
	c.notify(c.opts.Messages.Deleted, notify.Success)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		State:      c.state,
		Mode:       c.mode,
		Rows:       append([]T(nil), c.rows...),
		TotalPages: c.totalPages,
		Page:       c.page,
		Filters:    c.filters.Clone(),
		Err:        c.err,
		Generation: c.gen,
	}
}

func (c *Controller[T]) notify(msg string, sev notify.Severity) {
	if msg != "" {
		c.opts.Notifier.Notify(msg, sev)
	}
}

func errMessage(err error) string {
	var ge *goerrors.Error
	if goerrors.As(err, &ge) {
		return ge.Message
	}
	return ""
}
