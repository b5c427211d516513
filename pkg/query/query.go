// Package query turns sparse filter and pagination state into request
// parameters for the search and list endpoints.
package query

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"
)

// Entity selects the filter vocabulary.
type Entity int

const (
	Transactions Entity = iota
	Recurring
)

func (e Entity) String() string {
	if e == Recurring {
		return "recurring-transaction"
	}
	return "transaction"
}

// Keys returns the filter keys accepted for the entity.
func (e Entity) Keys() []string {
	if e == Recurring {
		return recurringKeys
	}
	return transactionKeys
}

// Allows reports whether key is a filter key for the entity.
func (e Entity) Allows(key string) bool {
	for _, k := range e.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

var transactionKeys = []string{
	"transactionName", "minAmount", "maxAmount", "category",
	"paymentType", "transactionType", "date",
}

var recurringKeys = []string{
	"recurringTransactionName", "minAmount", "maxAmount", "category",
	"paymentType", "transactionType", "date", "isActive", "frequency",
}

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Defaults used when a PageRequest field is unset.
const (
	DefaultSize   = 5
	DefaultSortBy = "amount"
)

// PageRequest describes one page of a listing.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction Direction
}

// DefaultPage returns page 0 of size 5 sorted by amount descending.
func DefaultPage() PageRequest {
	return PageRequest{Page: 0, Size: DefaultSize, SortBy: DefaultSortBy, Direction: Desc}
}

// Normalize fills unset fields with defaults and clamps negative pages to 0.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.Direction != Asc && p.Direction != Desc {
		p.Direction = Desc
	}
	return p
}

// FilterSet maps filter keys to optional scalar values. Nil values, nil
// pointers and empty strings are treated as absent.
type FilterSet map[string]any

// Clone returns a shallow copy of f.
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Active returns the keys that would be transmitted, sorted.
func (f FilterSet) Active() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if _, ok := Format(v); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every key belongs to the entity, whether or not its value
// is set.
func (f FilterSet) Validate(e Entity) error {
	var unknown []string
	for k := range f {
		if !e.Allows(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return goerrors.New(
		fmt.Sprintf("unknown %s filter: %s", e, strings.Join(unknown, ", ")),
		goerrors.CategoryValidation,
	).WithTextCode("VALIDATION_ERROR").WithMetadata(map[string]any{"keys": unknown})
}

// Build returns the search parameters for f and p. Absent filters are
// dropped; page, size, sortBy and direction are always present.
func Build(e Entity, f FilterSet, p PageRequest) (url.Values, error) {
	if err := f.Validate(e); err != nil {
		return nil, err
	}
	params := ListParams(p)
	p = p.Normalize()
	params.Set("sortBy", p.SortBy)
	params.Set("direction", string(p.Direction))

	for k, v := range f {
		s, ok := Format(v)
		if !ok {
			continue
		}
		if k == "date" {
			s = normalizeDate(s)
		}
		params.Set(k, s)
	}
	return params, nil
}

// ListParams returns the page and size parameters used by plain listing.
func ListParams(p PageRequest) url.Values {
	p = p.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("size", strconv.Itoa(p.Size))
	return params
}

// Format renders a filter value canonically. It reports false when the value
// is absent.
func Format(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return Format(rv.Elem().Interface())
	}

	switch x := v.(type) {
	case string:
		return x, x != ""
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case decimal.Decimal:
		return x.String(), true
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format(DateTimeLayout), true
	case fmt.Stringer:
		s := x.String()
		return s, s != ""
	}
	return fmt.Sprint(v), true
}

// DateTimeLayout is the zone-less timestamp format the API expects.
const DateTimeLayout = "2006-01-02T15:04:05"

func normalizeDate(s string) string {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return s + "T00:00:00"
	}
	return s
}
