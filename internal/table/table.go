// Package table defines the in-memory tabular value used throughout the
// pipeline: an ordered mapping from column name to a column of values, with
// the invariant that every column holds the same number of rows.
//
// Table is deliberately simple and storage-agnostic. It is the unit the CSV
// reader produces, the unit transform functions consume and return, and the
// unit output destinations receive (as an ordered column list plus rows).
package table

import (
	"fmt"
	"sort"
	"strings"
)

// MissingFieldError reports a reference to a column that does not exist in
// the table it was looked up in. Callers wrap it with step/destination
// context; errors.As still reaches it through the wrapping.
type MissingFieldError struct {
	Field     string
	Available []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q does not exist (available: %s)",
		e.Field, strings.Join(e.Available, ", "))
}

// RowCountMismatchError reports an attempt to combine columns or tables of
// incompatible row counts.
type RowCountMismatchError struct {
	Got  int
	Want int
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("row count mismatch: got %d rows, want %d", e.Got, e.Want)
}

// Table is an ordered set of named columns. The zero value is not usable;
// construct with New.
type Table struct {
	names []string
	cols  map[string][]any
}

// New returns an empty table with no columns and no rows.
func New() *Table {
	return &Table{cols: map[string][]any{}}
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.names) }

// NumRows returns the shared row count, or 0 for a table with no columns.
func (t *Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return len(t.cols[t.names[0]])
}

// Empty reports whether the table has no columns.
func (t *Table) Empty() bool { return len(t.names) == 0 }

// Columns returns the column names in insertion order. The returned slice is
// a copy and safe for the caller to modify.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the values of the named column. The slice is shared with
// the table; callers must not modify it.
func (t *Table) Column(name string) ([]any, bool) {
	c, ok := t.cols[name]
	return c, ok
}

// AppendColumn adds a new column at the end of the column order. It fails
// with RowCountMismatchError when the value count differs from the existing
// row count (the first column establishes the count), and with a plain error
// when the name is already taken.
func (t *Table) AppendColumn(name string, values []any) error {
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(t.names) > 0 && len(values) != t.NumRows() {
		return &RowCountMismatchError{Got: len(values), Want: t.NumRows()}
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// Rename changes a column's name in place, keeping its position. Renaming a
// column that does not exist is a no-op. Renaming onto an existing name is
// an error so the uniqueness invariant cannot be broken silently.
func (t *Table) Rename(old, new string) error {
	if old == new {
		return nil
	}
	values, ok := t.cols[old]
	if !ok {
		return nil
	}
	if _, taken := t.cols[new]; taken {
		return fmt.Errorf("cannot rename column %q to %q: target already exists", old, new)
	}
	for i, n := range t.names {
		if n == old {
			t.names[i] = new
			break
		}
	}
	delete(t.cols, old)
	t.cols[new] = values
	return nil
}

// Clone returns a deep copy of the column order and a fresh slice per column.
// Cell values themselves are shared (they are treated as immutable).
func (t *Table) Clone() *Table {
	out := &Table{
		names: append([]string(nil), t.names...),
		cols:  make(map[string][]any, len(t.cols)),
	}
	for name, values := range t.cols {
		out.cols[name] = append([]any(nil), values...)
	}
	return out
}

// Project returns a new table containing exactly the named columns in the
// given order. It fails with MissingFieldError on the first absent name.
func (t *Table) Project(names []string) (*Table, error) {
	out := New()
	for _, name := range names {
		values, ok := t.cols[name]
		if !ok {
			return nil, &MissingFieldError{Field: name, Available: t.Columns()}
		}
		if err := out.AppendColumn(name, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rows materializes the table into row-major order for the given columns.
// It fails with MissingFieldError when a name is absent.
func (t *Table) Rows(columns []string) ([][]any, error) {
	cols := make([][]any, len(columns))
	for i, name := range columns {
		c, ok := t.cols[name]
		if !ok {
			return nil, &MissingFieldError{Field: name, Available: t.Columns()}
		}
		cols[i] = c
	}
	rows := make([][]any, t.NumRows())
	for r := range rows {
		row := make([]any, len(columns))
		for c := range columns {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

// SortedColumns returns the column names in alphabetical order.
func (t *Table) SortedColumns() []string {
	out := t.Columns()
	sort.Strings(out)
	return out
}
