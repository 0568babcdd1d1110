package pipeline

import (
	"fmt"

	"transform/internal/config"
	"transform/internal/fields"
	"transform/internal/table"
	"transform/internal/template"
)

// ResolvedOutput is a fully materialized output destination: wildcards
// expanded, templates substituted, and the column data projected out of the
// namespace (or a registered snapshot).
type ResolvedOutput struct {
	Config   config.OutputFile
	Filename string
	Columns  []string
	Table    *table.Table
}

// ResolveOutputs expands every output file specification against the final
// pipeline state. Wildcard expansion and template substitution happen here,
// after all steps have run, so outputs always see the complete namespace
// and the complete substitution map. Every failure names the 1-based
// destination index and configured filename; the underlying typed error
// stays reachable through errors.As.
func (e *Engine) ResolveOutputs(outputs []config.OutputFile) ([]ResolvedOutput, error) {
	resolved := make([]ResolvedOutput, 0, len(outputs))
	for i, out := range outputs {
		one, err := e.resolveOutput(out)
		if err != nil {
			return nil, fmt.Errorf("output file #%d (%s): %w", i+1, out.Filename, err)
		}
		resolved = append(resolved, one)
	}
	return resolved, nil
}

func (e *Engine) resolveOutput(out config.OutputFile) (ResolvedOutput, error) {
	view, err := e.View(out.DataSource, out.DataEntry)
	if err != nil {
		return ResolvedOutput{}, err
	}

	cols, err := fields.Resolve(out.Fields, view)
	if err != nil {
		return ResolvedOutput{}, err
	}

	proj, err := view.Project(cols)
	if err != nil {
		return ResolvedOutput{}, err
	}

	filename, err := template.Resolve(out.Filename, e.subs)
	if err != nil {
		return ResolvedOutput{}, err
	}

	return ResolvedOutput{
		Config:   out,
		Filename: filename,
		Columns:  cols,
		Table:    proj,
	}, nil
}
