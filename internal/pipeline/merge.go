package pipeline

import (
	"fmt"
	"sort"

	"transform/internal/config"
	"transform/internal/table"
)

// MergeOptions controls how a new table is folded into the namespace.
type MergeOptions struct {
	// Prefix/Suffix are applied to every incoming column name first, joined
	// with "_" ("<prefix>_<name>", "<name>_<suffix>"). Independently optional.
	Prefix string
	Suffix string

	// Rename maps already-prefixed/suffixed names to new names. A rename for
	// a name that is not present is a no-op.
	Rename map[string]string

	// Replace discards the entire prior namespace and installs only the new
	// table's columns (the clear_input_data behavior). The new table's row
	// count becomes authoritative.
	Replace bool
}

// Merge folds t into the field namespace and registers it as the immutable
// snapshot for (source, entry).
//
// Processing order is fixed: affixes, then renames (keyed on the affixed
// names), then snapshot registration, then the merge itself. At merge time,
// an incoming column whose name already exists in the namespace is discarded
// and the existing column kept: first-writer-wins, silent and deterministic.
//
// A merge either fully succeeds or leaves the namespace untouched. The row
// count check happens before any column is appended: merging a table whose
// row count differs from the namespace's fails with RowCountMismatchError,
// unless the namespace is still empty (the first table establishes the row
// count) or Replace applies.
func (e *Engine) Merge(source, entry string, t *table.Table, opt MergeOptions) error {
	incoming := t.Clone()

	for _, name := range incoming.Columns() {
		affixed := name
		if opt.Prefix != "" {
			affixed = opt.Prefix + "_" + affixed
		}
		if opt.Suffix != "" {
			affixed = affixed + "_" + opt.Suffix
		}
		if affixed == name {
			continue
		}
		if err := incoming.Rename(name, affixed); err != nil {
			return fmt.Errorf("source %s/%s: %w", source, entry, err)
		}
	}

	// Sorted iteration keeps rename-collision errors deterministic.
	renameKeys := make([]string, 0, len(opt.Rename))
	for from := range opt.Rename {
		renameKeys = append(renameKeys, from)
	}
	sort.Strings(renameKeys)
	for _, from := range renameKeys {
		if err := incoming.Rename(from, opt.Rename[from]); err != nil {
			return fmt.Errorf("source %s/%s: %w", source, entry, err)
		}
	}

	e.register(source, entry, incoming.Clone())

	if opt.Replace {
		e.ns = incoming
		e.logf("namespace replaced by %s/%s: fields %v (%d rows)", source, entry, incoming.Columns(), incoming.NumRows())
		return nil
	}

	if !e.ns.Empty() && incoming.NumRows() != e.ns.NumRows() {
		return fmt.Errorf("merging source %s/%s: %w", source, entry,
			&table.RowCountMismatchError{Got: incoming.NumRows(), Want: e.ns.NumRows()})
	}

	for _, name := range incoming.Columns() {
		if e.ns.Has(name) {
			// First-writer-wins: the existing column is kept.
			e.logf("source %s/%s: field %q already present, keeping existing values", source, entry, name)
			continue
		}
		values, _ := incoming.Column(name)
		if err := e.ns.AppendColumn(name, values); err != nil {
			return fmt.Errorf("merging source %s/%s: %w", source, entry, err)
		}
	}
	return nil
}

// LoadInput merges an already-read input table into the namespace under the
// positional source key "input_<n>" (1-based), entry "csv", applying the
// input file's prefix/suffix/rename settings.
func (e *Engine) LoadInput(n int, in config.InputFile, t *table.Table) error {
	source := fmt.Sprintf("input_%d", n)
	err := e.Merge(source, "csv", t, MergeOptions{
		Prefix: in.FieldPrefix,
		Suffix: in.FieldSuffix,
		Rename: in.RenameFields,
	})
	if err != nil {
		return fmt.Errorf("input file #%d (%s): %w", n, in.Filename, err)
	}
	e.logf("input file #%d (%s): fields %v (%d rows)", n, in.Filename, e.mustView(source, "csv").Columns(), t.NumRows())
	return nil
}

func (e *Engine) mustView(source, entry string) *table.Table {
	t, err := e.View(source, entry)
	if err != nil {
		panic(err) // only called right after registration
	}
	return t
}
