package builtin

import (
	"fmt"
	"strings"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"

	"github.com/zeebo/xxh3"
)

// dedupe collapses duplicate rows by a business key. It takes structured
// input so it sees the whole table, not a projection:
//
//	{"keys": ["first_name", "last_name"], "policy": "keep-last"}
//
// "policy" selects the winner among duplicates: "keep-first" (the default)
// keeps the earliest occurrence, "keep-last" the latest. Every column of the
// table survives into the result. Rows shrink, so the result replaces the
// namespace via clear_input_data.
//
// Keys are xxh3 hashes of the key field values joined with an unlikely
// separator; nil hashes differently from the empty string. Run normalize
// before dedupe when values need canonicalizing first.
func dedupe(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if in.Params == nil {
		return nil, nil, fmt.Errorf("dedupe requires structured input with a keys list")
	}
	keys := in.Params.StringSlice("keys")
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("dedupe requires at least one key field")
	}

	policy := strings.ToLower(strings.TrimSpace(in.Params.String("policy", "keep-first")))
	switch policy {
	case "keep-first", "keep-last":
	default:
		return nil, nil, fmt.Errorf("dedupe: unknown policy %q (want keep-first or keep-last)", policy)
	}

	keyCols := make([][]any, len(keys))
	for i, name := range keys {
		col, ok := in.Table.Column(name)
		if !ok {
			return nil, nil, &table.MissingFieldError{Field: name, Available: in.Table.Columns()}
		}
		keyCols[i] = col
	}

	keyOf := func(row int) uint64 {
		var b strings.Builder
		for _, col := range keyCols {
			if col[row] == nil {
				b.WriteByte(0x00)
			} else {
				b.WriteString(cell(col[row]))
			}
			b.WriteByte(0x1f)
		}
		return xxh3.HashString(b.String())
	}

	// Winner row index per key.
	winners := map[uint64]int{}
	var order []uint64
	for row := 0; row < in.Table.NumRows(); row++ {
		key := keyOf(row)
		if _, exists := winners[key]; !exists {
			order = append(order, key)
			winners[key] = row
			continue
		}
		if policy == "keep-last" {
			winners[key] = row
		}
	}

	// Winning rows in first-occurrence key order, so keep-first preserves the
	// input order exactly.
	keep := make([]int, 0, len(order))
	for _, key := range order {
		keep = append(keep, winners[key])
	}

	out := table.New()
	for _, name := range in.Table.Columns() {
		values, _ := in.Table.Column(name)
		kept := make([]any, len(keep))
		for i, row := range keep {
			kept[i] = values[row]
		}
		if err := out.AppendColumn(name, kept); err != nil {
			return nil, nil, err
		}
	}

	return out, registry.Metadata{registry.MetaClearInputData: true}, nil
}
