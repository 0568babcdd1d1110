package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"transform/internal/config"
	"transform/internal/graph"
	"transform/internal/metrics"
	csvparser "transform/internal/parser/csv"
	jsonparser "transform/internal/parser/json"
	"transform/internal/pipeline"
	"transform/internal/registry"
	"transform/internal/storage"
	"transform/internal/table"
)

// run executes one transform file end to end: register the imported
// functions, load the inputs into the field namespace, run the steps in
// order, then resolve and write the outputs and graphs.
func run(ctx context.Context, job string, cfg config.Config, quiet bool) error {
	reg := registry.New()
	if err := reg.Import(cfg.Import); err != nil {
		return err
	}

	eng := pipeline.New(reg)
	eng.Quiet = quiet

	for i, in := range cfg.InputFiles {
		t, err := readInput(in)
		if err != nil {
			return fmt.Errorf("input file #%d (%s): %w", i+1, in.Filename, err)
		}
		metrics.RecordRows(job, "loaded", int64(t.NumRows()))
		if err := eng.LoadInput(i+1, in, t); err != nil {
			return err
		}
	}

	if err := eng.Run(job, cfg.Transformations); err != nil {
		return err
	}

	outputs, err := eng.ResolveOutputs(cfg.OutputFiles)
	if err != nil {
		return err
	}
	if err := storage.WriteAll(ctx, job, outputs); err != nil {
		return err
	}

	if len(cfg.Graphs) > 0 {
		specs, err := graph.Resolve(cfg.Graphs, eng.View, eng.Substitutions())
		if err != nil {
			return err
		}
		if err := graph.RenderAll(graph.JSONRenderer{}, specs); err != nil {
			return err
		}
	}
	return nil
}

// readInput reads one input file into a table, choosing the parser by the
// "format" option first and the filename extension second. Anything not
// recognized as JSON is read as CSV.
func readInput(in config.InputFile) (*table.Table, error) {
	format := in.Options.String("format", "")
	if format == "" {
		switch strings.ToLower(filepath.Ext(in.Filename)) {
		case ".json", ".ndjson", ".jsonl":
			format = "json"
		default:
			format = "csv"
		}
	}

	switch format {
	case "json":
		return jsonparser.ReadFile(in.Filename, jsonparser.OptionsFrom(in.Options))
	case "csv":
		return csvparser.ReadFile(in.Filename, csvparser.OptionsFrom(in.Options))
	default:
		return nil, fmt.Errorf("unknown input format %q (want csv or json)", format)
	}
}
