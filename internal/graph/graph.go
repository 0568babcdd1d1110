// Package graph turns declarative chart sections into fully resolved graph
// specifications: templates substituted, series columns verified against the
// data, defaults applied. Rendering is pluggable; the shipped renderer
// writes the resolved specification as JSON so an external charting tool can
// draw it.
package graph

import (
	"fmt"

	"transform/internal/config"
	"transform/internal/table"
	"transform/internal/template"
)

// Default figure size, in the original's (width, height) units.
var defaultSize = [2]int{16, 8}

// Spec is a fully resolved graph: every placeholder substituted, every
// series column verified to exist, defaults applied.
type Spec struct {
	Filename   string   `json:"filename"`
	Title      string   `json:"title"`
	Size       [2]int   `json:"size"`
	ShowLegend bool     `json:"show_legend"`
	XAxis      Axis     `json:"x_axis"`
	YAxis      Axis     `json:"y_axis"`
	Series     []Series `json:"series"`
}

// Axis is one resolved chart axis.
type Axis struct {
	Title string `json:"title,omitempty"`
}

// Series is one resolved plotted line with its data attached.
type Series struct {
	Label   string `json:"label"`
	XColumn string `json:"x_column"`
	YColumn string `json:"y_column"`
	X       []any  `json:"x"`
	Y       []any  `json:"y"`
}

// View resolves a (source, entry) data reference; the pipeline engine
// provides it.
type View func(source, entry string) (*table.Table, error)

// Resolve materializes every graph section against the pipeline's final
// state. Filenames, titles, axis titles and series labels go through
// template substitution; every series column must exist in the referenced
// data.
func Resolve(graphs []config.Graph, view View, subs map[string]any) ([]Spec, error) {
	specs := make([]Spec, 0, len(graphs))
	for i, g := range graphs {
		spec, err := resolveOne(g, view, subs)
		if err != nil {
			return nil, fmt.Errorf("graph #%d: %w", i+1, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func resolveOne(g config.Graph, view View, subs map[string]any) (Spec, error) {
	data, err := view(g.DataSource, g.DataEntry)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{ShowLegend: g.ShowLegend, Size: defaultSize}
	if len(g.Size) == 2 {
		spec.Size = [2]int{g.Size[0], g.Size[1]}
	}

	if spec.Filename, err = template.Resolve(g.Filename, subs); err != nil {
		return Spec{}, err
	}
	if spec.Title, err = template.Resolve(g.Title, subs); err != nil {
		return Spec{}, err
	}
	if spec.XAxis.Title, err = template.Resolve(g.XAxis.Title, subs); err != nil {
		return Spec{}, err
	}
	if spec.YAxis.Title, err = template.Resolve(g.YAxis.Title, subs); err != nil {
		return Spec{}, err
	}

	for j, s := range g.Series {
		x, ok := data.Column(s.XColumn)
		if !ok {
			return Spec{}, fmt.Errorf("series #%d: %w", j+1,
				&table.MissingFieldError{Field: s.XColumn, Available: data.Columns()})
		}
		y, ok := data.Column(s.YColumn)
		if !ok {
			return Spec{}, fmt.Errorf("series #%d: %w", j+1,
				&table.MissingFieldError{Field: s.YColumn, Available: data.Columns()})
		}
		label, err := template.Resolve(s.Label, subs)
		if err != nil {
			return Spec{}, err
		}
		if label == "" {
			label = s.YColumn
		}
		spec.Series = append(spec.Series, Series{
			Label:   label,
			XColumn: s.XColumn,
			YColumn: s.YColumn,
			X:       x,
			Y:       y,
		})
	}
	return spec, nil
}
