// Package dashboard loads the monthly summary and expense chart together.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
)

// FailedMessage is shown when either dashboard request fails.
const FailedMessage = "Failed to fetch dashboard data. Please try again."

// MonthLayout is the YYYY-MM month format.
const MonthLayout = "2006-01"

// Source provides the dashboard data. *client.Client implements it.
type Source interface {
	TransactionSummary(ctx context.Context, month string) (*domain.TransactionSummary, error)
	ExpensesByCategory(ctx context.Context, month string) ([]domain.CategoryExpense, error)
}

// Data is one month of dashboard content.
type Data struct {
	Summary    domain.TransactionSummary
	Categories []domain.CategoryExpense
}

// Request identifies one issued load.
type Request struct {
	Generation uint64
	Month      string
}

// Snapshot is a copy of the loader state.
type Snapshot struct {
	State   listing.State
	Month   string
	Data    Data
	Err     error
	Message string
}

// Loader holds dashboard state. The last issued request wins; a failure
// clears the data.
type Loader struct {
	mu     sync.Mutex
	src    Source
	logger *log.Logger

	state listing.State
	month string
	data  Data
	err   error
	gen   uint64
}

// New returns an Idle loader.
func New(src Source, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Nop()
	}
	return &Loader{src: src, logger: logger.WithComponent(log.ComponentDashboard)}
}

// CurrentMonth formats now as YYYY-MM.
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// ValidateMonth checks s is a YYYY-MM month.
func ValidateMonth(s string) error {
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return goerrors.New(fmt.Sprintf("invalid month %q, expected YYYY-MM", s), goerrors.CategoryValidation).
			WithTextCode("VALIDATION_ERROR")
	}
	return nil
}

// ShiftMonth moves a YYYY-MM month by delta months.
func ShiftMonth(month string, delta int) string {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return month
	}
	return t.AddDate(0, delta, 0).Format(MonthLayout)
}

// Request moves to Loading for month, or the current month when empty.
func (l *Loader) Request(month string) Request {
	if month == "" {
		month = CurrentMonth(time.Now())
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = listing.Loading
	l.month = month
	return Request{Generation: l.gen, Month: month}
}

// Fetch loads the summary and the category chart concurrently. Both must
// succeed.
func (l *Loader) Fetch(ctx context.Context, req Request) (Data, error) {
	if err := ValidateMonth(req.Month); err != nil {
		return Data{}, err
	}
	var data Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := l.src.TransactionSummary(gctx, req.Month)
		if err != nil {
			return err
		}
		if s != nil {
			data.Summary = *s
		}
		return nil
	})
	g.Go(func() error {
		rows, err := l.src.ExpensesByCategory(gctx, req.Month)
		if err != nil {
			return err
		}
		data.Categories = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Data{}, fmt.Errorf("dashboard.Fetch: %w", err)
	}
	return data, nil
}

// Apply records the outcome of req. It reports false when req is stale.
func (l *Loader) Apply(req Request, data Data, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req.Generation != l.gen {
		return false
	}
	if err != nil {
		l.state = listing.Error
		l.err = err
		l.data = Data{}
		if !errors.Is(err, context.Canceled) {
			l.logger.Warn("dashboard load failed", log.FieldMonth, req.Month, log.FieldError, err)
		}
		return true
	}
	l.state = listing.Loaded
	l.err = nil
	l.data = data
	return true
}

// Load requests month, fetches and applies. It returns listing.ErrStale if a
// newer load superseded it.
func (l *Loader) Load(ctx context.Context, month string) error {
	req := l.Request(month)
	data, err := l.Fetch(ctx, req)
	if !l.Apply(req, data, err) {
		return listing.ErrStale
	}
	return err
}

// Snapshot returns a copy of the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot{
		State: l.state,
		Month: l.month,
		Data: Data{
			Summary:    l.data.Summary,
			Categories: append([]domain.CategoryExpense(nil), l.data.Categories...),
		},
		Err: l.err,
	}
	if l.state == listing.Error {
		s.Message = FailedMessage
	}
	return s
}
