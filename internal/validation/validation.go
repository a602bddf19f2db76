package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Errors collects per-field validation messages. It satisfies the
// error interface so services can return it directly and handlers can
// recover the field map with errors.As.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}
