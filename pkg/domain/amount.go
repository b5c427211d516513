package domain

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. It encodes as a bare JSON number and decodes from
// either a number or a quoted string.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses a decimal string such as "1250.50".
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// AmountFromFloat converts f to an Amount.
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves the zero value.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		data = []byte(s)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}
