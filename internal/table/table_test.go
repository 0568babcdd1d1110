package table

import (
	"errors"
	"reflect"
	"testing"
)

func TestAppendColumn_RowCountInvariant(t *testing.T) {
	t.Parallel()

	tbl := New()
	if err := tbl.AppendColumn("a", []any{"1", "2", "3"}); err != nil {
		t.Fatalf("AppendColumn(a): %v", err)
	}
	if got := tbl.NumRows(); got != 3 {
		t.Fatalf("NumRows = %d, want 3 (first column establishes the count)", got)
	}

	err := tbl.AppendColumn("b", []any{"1", "2"})
	var rc *RowCountMismatchError
	if !errors.As(err, &rc) {
		t.Fatalf("AppendColumn(b) err = %v, want RowCountMismatchError", err)
	}
	if rc.Got != 2 || rc.Want != 3 {
		t.Fatalf("RowCountMismatchError = %+v, want Got=2 Want=3", rc)
	}

	// The failed append must not leave a partial column behind.
	if tbl.Has("b") {
		t.Fatalf("column b present after failed append")
	}
	if err := tbl.AppendColumn("a", []any{"x", "y", "z"}); err == nil {
		t.Fatalf("duplicate AppendColumn(a) succeeded, want error")
	}
}

func TestRename(t *testing.T) {
	t.Parallel()

	tbl := New()
	_ = tbl.AppendColumn("a", []any{1})
	_ = tbl.AppendColumn("b", []any{2})

	// Renaming an absent column is a no-op, not an error.
	if err := tbl.Rename("nope", "c"); err != nil {
		t.Fatalf("Rename(absent): %v", err)
	}
	if err := tbl.Rename("a", "a2"); err != nil {
		t.Fatalf("Rename(a, a2): %v", err)
	}
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"a2", "b"}) {
		t.Fatalf("Columns = %v, want [a2 b] (rename keeps position)", got)
	}
	if err := tbl.Rename("a2", "b"); err == nil {
		t.Fatalf("Rename onto existing column succeeded, want error")
	}
}

func TestProject(t *testing.T) {
	t.Parallel()

	tbl := New()
	_ = tbl.AppendColumn("name", []any{"John Doe", "Jane Smith"})
	_ = tbl.AppendColumn("city", []any{"Oslo", "Bergen"})

	got, err := tbl.Project([]string{"city"})
	if err != nil {
		t.Fatalf("Project(city): %v", err)
	}
	if !reflect.DeepEqual(got.Columns(), []string{"city"}) || got.NumRows() != 2 {
		t.Fatalf("Project = cols %v rows %d, want [city] 2", got.Columns(), got.NumRows())
	}

	_, err = tbl.Project([]string{"zip"})
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "zip" {
		t.Fatalf("Project(zip) err = %v, want MissingFieldError{Field: zip}", err)
	}
}

func TestRows(t *testing.T) {
	t.Parallel()

	tbl := New()
	_ = tbl.AppendColumn("a", []any{1, 2})
	_ = tbl.AppendColumn("b", []any{"x", "y"})

	rows, err := tbl.Rows([]string{"b", "a"})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	want := [][]any{{"x", 1}, {"y", 2}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("Rows = %v, want %v", rows, want)
	}
}

func TestClone_Isolation(t *testing.T) {
	t.Parallel()

	tbl := New()
	_ = tbl.AppendColumn("a", []any{1, 2})
	cp := tbl.Clone()

	if err := tbl.Rename("a", "renamed"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !cp.Has("a") || cp.Has("renamed") {
		t.Fatalf("clone mutated by rename on the original")
	}
}

func TestSortedColumns(t *testing.T) {
	t.Parallel()

	tbl := New()
	for _, n := range []string{"d", "b", "a", "c"} {
		_ = tbl.AppendColumn(n, []any{nil})
	}
	if got := tbl.SortedColumns(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("SortedColumns = %v", got)
	}
	// Insertion order must be preserved separately.
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"d", "b", "a", "c"}) {
		t.Fatalf("Columns = %v", got)
	}
}
