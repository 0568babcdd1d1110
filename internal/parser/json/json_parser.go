// Package json reads JSON input files into tables.
//
// It is deliberately simple and conservative:
//
//   - Supports newline-delimited JSON objects (NDJSON):
//     {"id":1,"name":"a"}
//     {"id":2,"name":"b"}
//   - Optionally accepts a single top-level array of objects.
//   - Rejects other top-level values.
//
// Column order is first-appearance order across the stream; an object
// missing a key contributes a nil cell, so the shared row count invariant
// holds for ragged inputs.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"transform/internal/config"
	"transform/internal/table"
)

// Options configures the JSON reader.
//
//   - "allow_arrays" (bool): when true, a top-level JSON array of objects
//     is accepted.
type Options struct {
	AllowArrays bool
}

// OptionsFrom constructs JSON Options from an input file's free-form options
// block (the same bag the csv reader draws from).
func OptionsFrom(o config.Options) Options {
	return Options{
		AllowArrays: o.Bool("allow_arrays", false),
	}
}

// Read decodes all objects from r and assembles them into a table.
func Read(r io.Reader, opt Options) (*table.Table, error) {
	dec := json.NewDecoder(r)
	// UseNumber keeps numeric values lossless; destinations decide how to
	// render them.
	dec.UseNumber()

	var objects []map[string]any

	append1 := func(raw any) error {
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("json input: top-level value is %T, want object", raw)
		}
		objects = append(objects, obj)
		return nil
	}

	first := true
	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("json input: decode: %w", err)
		}

		if arr, ok := raw.([]any); ok && first {
			if !opt.AllowArrays {
				return nil, fmt.Errorf("json input: top-level array encountered but allow_arrays=false")
			}
			for i, elem := range arr {
				obj, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("json input: array element %d is %T, want object", i, elem)
				}
				objects = append(objects, obj)
			}
			first = false
			continue
		}
		first = false

		if err := append1(raw); err != nil {
			return nil, err
		}
	}

	return assemble(objects)
}

// ReadFile opens filename and parses it with Read.
func ReadFile(filename string, opt Options) (*table.Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	t, err := Read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

// assemble builds a table whose columns are the union of keys seen, in
// first-appearance order, padding missing cells with nil.
func assemble(objects []map[string]any) (*table.Table, error) {
	var names []string
	seen := map[string]struct{}{}
	for _, obj := range objects {
		// encoding/json loses key order inside one object; scanning the raw
		// bytes would preserve it, but the union order across rows is what
		// callers actually depend on, and duplicates dominate after row one.
		for _, key := range sortedKeys(obj) {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, key)
		}
	}

	t := table.New()
	for _, name := range names {
		values := make([]any, len(objects))
		for i, obj := range objects {
			values[i] = obj[name]
		}
		if err := t.AppendColumn(name, values); err != nil {
			return nil, fmt.Errorf("json column %q: %w", name, err)
		}
	}
	return t, nil
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Keep per-object key order deterministic.
	sort.Strings(out)
	return out
}
