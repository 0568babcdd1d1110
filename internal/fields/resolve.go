// Package fields expands declared output/graph field lists into concrete
// ordered column lists against a table view.
//
// The one piece of syntax is the wildcard: the literal "*" stands for "every
// column of the view not explicitly named in the same list". Explicit names
// keep their declared order; the wildcard's columns follow them in
// alphabetical order. "*" may appear at most once per list.
package fields

import (
	"fmt"
	"strings"

	"transform/internal/table"
)

// Wildcard is the token that expands to the remaining columns of a view.
const Wildcard = "*"

// InvalidWildcardError reports malformed wildcard usage in a field list.
type InvalidWildcardError struct {
	List []string
}

func (e *InvalidWildcardError) Error() string {
	return fmt.Sprintf("field list [%s] uses %q more than once; at most one wildcard is allowed per list",
		strings.Join(e.List, ", "), Wildcard)
}

// Resolve turns a declared field list into a concrete ordered column list
// against view.
//
// Every explicitly named field must exist in view (table.MissingFieldError
// otherwise). When the list contains the wildcard, all view columns not named
// elsewhere in the list are appended after the explicit fields, sorted
// alphabetically. More than one wildcard fails with InvalidWildcardError.
// Resolution is idempotent: a resolved list contains no wildcard and resolves
// to itself.
func Resolve(list []string, view *table.Table) ([]string, error) {
	explicit := make([]string, 0, len(list))
	wildcards := 0
	for _, f := range list {
		if f == Wildcard {
			wildcards++
			continue
		}
		explicit = append(explicit, f)
	}
	if wildcards > 1 {
		return nil, &InvalidWildcardError{List: list}
	}

	for _, f := range explicit {
		if !view.Has(f) {
			return nil, &table.MissingFieldError{Field: f, Available: view.Columns()}
		}
	}
	if wildcards == 0 {
		return explicit, nil
	}

	named := make(map[string]struct{}, len(explicit))
	for _, f := range explicit {
		named[f] = struct{}{}
	}
	out := explicit
	for _, col := range view.SortedColumns() {
		if _, ok := named[col]; ok {
			continue
		}
		out = append(out, col)
	}
	return out, nil
}
