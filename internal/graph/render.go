package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Renderer draws one resolved graph.
type Renderer interface {
	Render(spec Spec) error
}

// JSONRenderer writes the resolved specification, data included, as an
// indented JSON file at spec.Filename. External plotting tools consume it.
type JSONRenderer struct{}

func (JSONRenderer) Render(spec Spec) error {
	if spec.Filename == "" {
		return fmt.Errorf("graph %q has no filename", spec.Title)
	}
	b, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph %q: %w", spec.Title, err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(spec.Filename, b, 0o644); err != nil {
		return fmt.Errorf("write graph %q: %w", spec.Title, err)
	}
	return nil
}

// RenderAll renders every spec, stopping at the first failure.
func RenderAll(r Renderer, specs []Spec) error {
	for _, spec := range specs {
		if err := r.Render(spec); err != nil {
			return err
		}
	}
	return nil
}
