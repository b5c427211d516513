package domain

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// DateLayouts are the date forms accepted for entity dates.
var DateLayouts = []string{time.DateOnly, "2006-01-02T15:04", "2006-01-02T15:04:05"}

var errNotPositive = errors.New("must be greater than zero")

func positive(value any) error {
	a, ok := value.(Amount)
	if !ok {
		return nil
	}
	if !a.IsPositive() {
		return errNotPositive
	}
	return nil
}

func date(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return errors.New("must be a date like 2026-03-01 or 2026-03-01T14:30")
}

// Validate checks the fields a new or edited transaction needs before it is
// sent. The server remains the authority; this only catches typos early.
func (t Transaction) Validate() error {
	err := validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Amount, validation.By(positive)),
		validation.Field(&t.TransactionType, validation.Required, validation.In(TransactionIncome, TransactionExpense)),
		validation.Field(&t.Date, validation.By(date)),
	)
	return invalid(err, "invalid transaction")
}

// Validate checks the fields of a recurring schedule.
func (r RecurringTransaction) Validate() error {
	frequencies := make([]any, len(Frequencies))
	for i, f := range Frequencies {
		frequencies[i] = f
	}
	err := validation.ValidateStruct(&r,
		validation.Field(&r.RecurringTransactionName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Amount, validation.By(positive)),
		validation.Field(&r.TransactionType, validation.Required, validation.In(TransactionIncome, TransactionExpense)),
		validation.Field(&r.Frequency, validation.Required, validation.In(frequencies...)),
		validation.Field(&r.StartDate, validation.By(date)),
		validation.Field(&r.EndDate, validation.By(date)),
	)
	return invalid(err, "invalid recurring transaction")
}

func invalid(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, message+": "+err.Error()).
		WithTextCode("VALIDATION_ERROR")
}
