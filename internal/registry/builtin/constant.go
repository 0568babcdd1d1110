package builtin

import (
	"fmt"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

// constant produces template variables without touching the namespace:
//
//	{"values": {"site": "oslo", "run": 7}}
//
// Every entry becomes a variable substitution usable as {site} or {run} in
// output filenames and graph titles. The function returns no table at all,
// which also exercises the metadata-only step path of the executor.
func constant(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if in.Params == nil {
		return nil, nil, fmt.Errorf("constant requires structured input with a values object")
	}
	values, ok := in.Params.Any("values").(map[string]any)
	if !ok || len(values) == 0 {
		return nil, nil, fmt.Errorf("constant requires a non-empty values object")
	}

	subs := make(map[string]any, len(values))
	for k, v := range values {
		subs[k] = v
	}
	return nil, registry.Metadata{registry.MetaVariableSubstitutions: subs}, nil
}
