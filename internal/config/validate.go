// This file adds a lightweight linter/validator for transform files. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
//
// The linter only sees the configuration, not the data, so data-dependent
// failures (missing columns, row count mismatches, unresolved placeholders)
// are left to the engine. What it can see statically it reports eagerly,
// including the deliberately silent engine policies: a step output that an
// earlier step already produced will lose to first-writer-wins at merge time,
// which is legal but usually a configuration smell, so it is surfaced as a
// warning here rather than changed in the engine.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "output_files[1].fields",
// "transformations[0].function"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a transform file.
//
// It does not mutate the config. Callers may decide whether to treat
// warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	imported := map[string]struct{}{}
	issues = append(issues, validateImports(c.Import, imported)...)
	issues = append(issues, validateInputs(c.InputFiles)...)
	issues = append(issues, validateSteps(c.Transformations, imported)...)
	issues = append(issues, validateOutputs(c.OutputFiles)...)
	issues = append(issues, validateGraphs(c.Graphs)...)

	return issues
}

func validateImports(imports []Import, imported map[string]struct{}) []Issue {
	var issues []Issue
	for i, imp := range imports {
		if strings.TrimSpace(imp.Module) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("import[%d].module", i),
				Message:  "module must not be empty",
			})
		}
		if len(imp.Functions) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("import[%d].functions", i),
				Message:  "import lists no functions; the module registration has no effect",
			})
		}
		for _, fn := range imp.Functions {
			imported[fn] = struct{}{}
		}
	}
	return issues
}

func validateInputs(inputs []InputFile) []Issue {
	var issues []Issue
	if len(inputs) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input_files",
			Message:  "no input files declared; they must then be given with -input",
		})
	}
	for i, in := range inputs {
		if strings.TrimSpace(in.Filename) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("input_files[%d].filename", i),
				Message:  "no filename; it must then be given positionally with -input",
			})
		}
		for from, to := range in.RenameFields {
			if strings.TrimSpace(to) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("input_files[%d].rename_fields[%q]", i, from),
					Message:  "rename target must not be empty",
				})
			}
		}
	}
	return issues
}

func validateSteps(steps []Step, imported map[string]struct{}) []Issue {
	var issues []Issue
	if len(steps) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transformations",
			Message:  "no transformations configured; output data will equal input data",
		})
	}

	// Output names produced so far, for first-writer-wins shadow warnings.
	produced := map[string]int{}

	for i, s := range steps {
		path := fmt.Sprintf("transformations[%d]", i)
		if strings.TrimSpace(s.Function) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".function",
				Message:  "function must not be empty",
			})
			continue
		}
		if len(imported) > 0 {
			if _, ok := imported[s.Function]; !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".function",
					Message:  fmt.Sprintf("function %q is not named in the import section", s.Function),
				})
			}
		}

		seen := map[string]struct{}{}
		for _, out := range s.Output {
			if out == "*" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".output",
					Message:  `"*" is only valid in output/graph field lists, not step outputs`,
				})
				continue
			}
			if _, dup := seen[out]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".output",
					Message:  fmt.Sprintf("output field %q declared twice", out),
				})
			}
			seen[out] = struct{}{}
			if prev, ok := produced[out]; ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".output",
					Message: fmt.Sprintf("field %q is already produced by transformation #%d; the earlier column wins at merge time (first-writer-wins)",
						out, prev+1),
				})
			} else {
				produced[out] = i
			}
		}

		if src, entry, fields, ok := s.Input.SourceRef(); ok {
			if entry == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".input.data_entry",
					Message:  fmt.Sprintf("data_source %q given without data_entry", src),
				})
			}
			if len(fields) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".input.fields",
					Message:  "data source reference lists no fields; the whole entry will be passed",
				})
			}
		}
	}
	return issues
}

func validateOutputs(outputs []OutputFile) []Issue {
	var issues []Issue
	for i, out := range outputs {
		path := fmt.Sprintf("output_files[%d]", i)
		if len(out.Fields) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".fields",
				Message:  "output declares no fields; nothing would be written",
			})
		}
		issues = append(issues, lintFieldList(out.Fields, path+".fields")...)

		kind := out.Kind
		if kind == "" {
			kind = "csv"
		}
		switch kind {
		case "csv":
		case "sqlite", "postgres":
			if out.Options.String("dsn", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.dsn",
					Message:  fmt.Sprintf("%s output requires options.dsn", kind),
				})
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown output kind %q; ensure a matching destination is registered", kind),
			})
		}

		if (out.DataSource == "") != (out.DataEntry == "") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "data_source and data_entry must be given together",
			})
		}
	}
	return issues
}

func validateGraphs(graphs []Graph) []Issue {
	var issues []Issue
	for i, g := range graphs {
		path := fmt.Sprintf("graphs[%d]", i)
		if strings.TrimSpace(g.Filename) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".filename",
				Message:  "graph filename must not be empty",
			})
		}
		if strings.TrimSpace(g.Title) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".title",
				Message:  "graph title must not be empty",
			})
		}
		if len(g.Series) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".series",
				Message:  "graph declares no series",
			})
		}
		for j, s := range g.Series {
			if s.XColumn == "" || s.YColumn == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.series[%d]", path, j),
					Message:  "series requires both x_column and y_column",
				})
			}
		}
		if len(g.Size) != 0 && len(g.Size) != 2 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".size",
				Message:  "size must be [width, height]",
			})
		}
		if (g.DataSource == "") != (g.DataEntry == "") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "data_source and data_entry must be given together",
			})
		}
	}
	return issues
}

// lintFieldList checks wildcard usage in an output/graph field list: at most
// one "*", and no explicit duplicates.
func lintFieldList(fields []string, path string) []Issue {
	var issues []Issue
	stars := 0
	seen := map[string]struct{}{}
	for _, f := range fields {
		if f == "*" {
			stars++
			continue
		}
		if _, dup := seen[f]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("field %q listed twice", f),
			})
		}
		seen[f] = struct{}{}
	}
	if stars > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  `"*" may appear at most once per field list`,
		})
	}
	return issues
}
