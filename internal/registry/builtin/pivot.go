package builtin

import (
	"fmt"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

// pivot reshapes a long table into a wide one. Structured input selects the
// three roles:
//
//	{"index_column": "time", "pivot_column": "cycle", "data_column": "capacity"}
//
// The result has one row per distinct index value and one column per
// distinct pivot value, named "<pivot> <value> <data>" (e.g. "cycle 1
// capacity"). Distinct values keep first-appearance order; a missing
// (index, pivot) combination yields a nil cell, a duplicated one keeps the
// last value.
//
// The shape differs from the input on both axes, so the result replaces the
// namespace via clear_input_data.
func pivot(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if in.Params == nil {
		return nil, nil, fmt.Errorf("pivot requires structured input with index_column, pivot_column and data_column")
	}
	indexCol := in.Params.String("index_column", "")
	pivotCol := in.Params.String("pivot_column", "")
	dataCol := in.Params.String("data_column", "")
	if indexCol == "" || pivotCol == "" || dataCol == "" {
		return nil, nil, fmt.Errorf("pivot requires index_column, pivot_column and data_column, got %v", in.Params)
	}

	src, err := in.Table.Project([]string{indexCol, pivotCol, dataCol})
	if err != nil {
		return nil, nil, err
	}
	indexValues, _ := src.Column(indexCol)
	pivotValues, _ := src.Column(pivotCol)
	dataValues, _ := src.Column(dataCol)

	var indexOrder []string
	indexPos := map[string]int{}
	var pivotOrder []string
	pivotSeen := map[string]struct{}{}
	cells := map[string]map[string]any{}

	for i := range indexValues {
		idx := cell(indexValues[i])
		piv := cell(pivotValues[i])

		if _, ok := indexPos[idx]; !ok {
			indexPos[idx] = len(indexOrder)
			indexOrder = append(indexOrder, idx)
		}
		if _, ok := pivotSeen[piv]; !ok {
			pivotSeen[piv] = struct{}{}
			pivotOrder = append(pivotOrder, piv)
		}
		if cells[piv] == nil {
			cells[piv] = map[string]any{}
		}
		cells[piv][idx] = dataValues[i]
	}

	out := table.New()
	idxOut := make([]any, len(indexOrder))
	for i, v := range indexOrder {
		idxOut[i] = v
	}
	if err := out.AppendColumn(indexCol, idxOut); err != nil {
		return nil, nil, err
	}
	for _, piv := range pivotOrder {
		name := fmt.Sprintf("%s %s %s", pivotCol, piv, dataCol)
		values := make([]any, len(indexOrder))
		for i, idx := range indexOrder {
			values[i] = cells[piv][idx]
		}
		if err := out.AppendColumn(name, values); err != nil {
			return nil, nil, err
		}
	}

	return out, registry.Metadata{registry.MetaClearInputData: true}, nil
}
