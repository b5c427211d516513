package query

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ParseAssignments builds a FilterSet from key=value pairs, as given on the
// command line. Values stay strings; the server parses them.
func ParseAssignments(e Entity, pairs []string) (FilterSet, error) {
	f := FilterSet{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, goerrors.New(
				fmt.Sprintf("filter %q: expected key=value", pair),
				goerrors.CategoryValidation,
			).WithTextCode("VALIDATION_ERROR")
		}
		f[k] = strings.TrimSpace(v)
	}
	if err := f.Validate(e); err != nil {
		return nil, err
	}
	return f, nil
}
