package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

// setter assigns one key=value field to an entity.
type setter[T any] func(item *T, value string) error

var transactionSetters = map[string]setter[domain.Transaction]{
	"name":            func(t *domain.Transaction, v string) error { t.Name = v; return nil },
	"description":     func(t *domain.Transaction, v string) error { t.Description = v; return nil },
	"category":        func(t *domain.Transaction, v string) error { t.Category = v; return nil },
	"paymentType":     func(t *domain.Transaction, v string) error { t.PaymentType = v; return nil },
	"transactionType": func(t *domain.Transaction, v string) error { t.TransactionType = strings.ToUpper(v); return nil },
	"amount": func(t *domain.Transaction, v string) error {
		return parseAmount(v, &t.Amount)
	},
	"date": func(t *domain.Transaction, v string) error {
		t.Date = dateTime(v)
		return nil
	},
}

var recurringSetters = map[string]setter[domain.RecurringTransaction]{
	"name":            func(r *domain.RecurringTransaction, v string) error { r.RecurringTransactionName = v; return nil },
	"description":     func(r *domain.RecurringTransaction, v string) error { r.Description = v; return nil },
	"category":        func(r *domain.RecurringTransaction, v string) error { r.Category = v; return nil },
	"paymentType":     func(r *domain.RecurringTransaction, v string) error { r.PaymentType = v; return nil },
	"transactionType": func(r *domain.RecurringTransaction, v string) error { r.TransactionType = strings.ToUpper(v); return nil },
	"frequency":       func(r *domain.RecurringTransaction, v string) error { r.Frequency = strings.ToUpper(v); return nil },
	"startDate":       func(r *domain.RecurringTransaction, v string) error { r.StartDate = v; return nil },
	"endDate":         func(r *domain.RecurringTransaction, v string) error { r.EndDate = v; return nil },
	"amount": func(r *domain.RecurringTransaction, v string) error {
		return parseAmount(v, &r.Amount)
	},
	"active": func(r *domain.RecurringTransaction, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false")
		}
		r.IsActive = b
		return nil
	},
}

// assign applies key=value pairs to item.
func assign[T any](item *T, setters map[string]setter[T], pairs []string) error {
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" {
			return invalidField(pair, "expected key=value")
		}
		set, ok := setters[k]
		if !ok {
			return invalidField(k, "unknown field; use one of "+strings.Join(fieldNames(setters), ", "))
		}
		if err := set(item, v); err != nil {
			return invalidField(k, err.Error())
		}
	}
	return nil
}

func fieldNames[T any](setters map[string]setter[T]) []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func invalidField(field, message string) error {
	return goerrors.NewValidation(
		fmt.Sprintf("%s: %s", field, message),
		goerrors.FieldError{Field: field, Message: message},
	).WithTextCode("VALIDATION_ERROR")
}

func parseAmount(s string, dst *domain.Amount) error {
	a, err := domain.NewAmount(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*dst = a
	return nil
}

// dateTime widens a bare date to the zone-less timestamp the API stores.
func dateTime(s string) string {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return s + "T00:00:00"
	}
	return s
}
