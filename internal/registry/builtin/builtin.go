// Package builtin contains the compiled-in transform function modules.
//
// All functions here register under the "public" module from init, so a
// transform file selects them with:
//
//	"import": [
//	    {"module": "public", "functions": ["split_name", "pivot"]}
//	]
//
// Functions follow the shared contract: input is resolved by the executor
// (positional field projection or structured parameters), output names are
// declared in the transform file, and the result table merges back into the
// field namespace unless clear_input_data metadata says otherwise.
package builtin

import (
	"fmt"

	"transform/internal/registry"
)

func init() {
	registry.RegisterModule("public", map[string]registry.Func{
		"split_name":      splitName,
		"combine_name":    combineName,
		"split_address":   splitAddress,
		"merge_by_column": mergeByColumn,
		"pivot":           pivot,
		"dedupe":          dedupe,
		"normalize":       normalize,
		"constant":        constant,
	})
}

// cell renders a table value as a string; nil is the empty string.
func cell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
