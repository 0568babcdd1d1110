package builtin

import (
	"fmt"
	"strings"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

// splitName splits a full-name field into first and last name columns.
// "Last, First" takes precedence over "First Last"; a single token becomes
// the first name with an empty last name.
func splitName(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if len(in.Fields) != 1 {
		return nil, nil, fmt.Errorf("split_name requires exactly one input field, got %v", in.Fields)
	}
	if len(output) != 2 {
		return nil, nil, fmt.Errorf("split_name requires exactly two output fields (first name, last name), got %v", output)
	}

	values, _ := in.Table.Column(in.Fields[0])
	firsts := make([]any, len(values))
	lasts := make([]any, len(values))
	for i, v := range values {
		name := cell(v)
		var first, last string
		switch {
		case strings.Contains(name, ","):
			parts := strings.SplitN(name, ",", 2)
			last, first = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		case strings.Contains(name, " "):
			idx := strings.LastIndex(name, " ")
			first, last = strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+1:])
		default:
			first = name
		}
		firsts[i] = strings.TrimSpace(first)
		lasts[i] = last
	}

	out := table.New()
	if err := out.AppendColumn(output[0], firsts); err != nil {
		return nil, nil, err
	}
	if err := out.AppendColumn(output[1], lasts); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

// combineName joins a first-name and last-name field with a single space.
func combineName(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if len(in.Fields) != 2 {
		return nil, nil, fmt.Errorf("combine_name requires exactly two input fields (first name, last name), got %v", in.Fields)
	}
	if len(output) != 1 {
		return nil, nil, fmt.Errorf("combine_name requires exactly one output field, got %v", output)
	}

	firsts, _ := in.Table.Column(in.Fields[0])
	lasts, _ := in.Table.Column(in.Fields[1])
	names := make([]any, len(firsts))
	for i := range firsts {
		names[i] = cell(firsts[i]) + " " + cell(lasts[i])
	}

	out := table.New()
	if err := out.AppendColumn(output[0], names); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}
