package builtin

import (
	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

// mergeByColumn folds every registered data source entry into a single
// table, in registration order. Column collisions are resolved cell by cell:
// the earlier source wins, but nil cells are filled from later sources.
// Sources of different lengths are padded with nil to the longest row count.
//
// Typically the first transformation of a multi-input run; the result merges
// into the (still empty) namespace and establishes its row count.
func mergeByColumn(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	maxRows := 0
	for _, snap := range in.Snapshots {
		if n := snap.Table.NumRows(); n > maxRows {
			maxRows = n
		}
	}

	out := table.New()
	for _, snap := range in.Snapshots {
		for _, name := range snap.Table.Columns() {
			values, _ := snap.Table.Column(name)
			padded := make([]any, maxRows)
			copy(padded, values)

			if !out.Has(name) {
				if err := out.AppendColumn(name, padded); err != nil {
					return nil, nil, err
				}
				continue
			}
			existing, _ := out.Column(name)
			for i, v := range existing {
				if v == nil && padded[i] != nil {
					existing[i] = padded[i]
				}
			}
		}
	}
	return out, nil, nil
}
