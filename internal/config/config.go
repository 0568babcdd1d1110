// Package config defines the canonical, JSON-serializable model for transform
// files: the declarative description of which functions to register, which
// input files to load, which transformation steps to run in order, and which
// output files and graphs to produce.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in transform
//     files.
//  3. Minimalism: decoding is performed by the standard library, with a light
//     Options helper for typed access to free-form step parameters.
//
// Example (trimmed):
//
//	{
//	  "import": [
//	    { "module": "name", "functions": ["split_name"] }
//	  ],
//	  "input_files": [
//	    { "filename": "people.csv", "field_prefix": "crm", "rename_fields": { "crm_id": "customer_id" } }
//	  ],
//	  "transformations": [
//	    { "function": "split_name", "input": ["name"], "output": ["first_name", "last_name"] }
//	  ],
//	  "output_files": [
//	    { "filename": "out_{run}.csv", "fields": ["first_name", "last_name", "*"] }
//	  ]
//	}
package config

import "encoding/json"

// Config is the top-level object decoded from a transform file.
type Config struct {
	// Import lists the function modules to register before the run. Steps may
	// only call functions named here; unknown references fail closed.
	Import []Import `json:"import"`

	// InputFiles describes the tabular sources loaded before the first step,
	// in order. The JSON key "input" is accepted as an alias.
	InputFiles []InputFile `json:"input_files"`

	// Transformations is the ordered list of steps executed against the field
	// namespace. Step N's output is visible to step N+1.
	Transformations []Step `json:"transformations"`

	// OutputFiles describes the destinations written after the last step.
	// The JSON key "output" is accepted as an alias.
	OutputFiles []OutputFile `json:"output_files"`

	// Graphs lists chart specifications resolved against the final namespace.
	Graphs []Graph `json:"graphs"`
}

// UnmarshalJSON decodes a Config accepting "input"/"output" as aliases for
// "input_files"/"output_files". When both spellings are present the
// *_files form wins.
func (c *Config) UnmarshalJSON(b []byte) error {
	type alias Config
	var tmp struct {
		alias
		Input  []InputFile  `json:"input"`
		Output []OutputFile `json:"output"`
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*c = Config(tmp.alias)
	if len(c.InputFiles) == 0 {
		c.InputFiles = tmp.Input
	}
	if len(c.OutputFiles) == 0 {
		c.OutputFiles = tmp.Output
	}
	return nil
}

// Import names a function module and the functions to take from it.
type Import struct {
	Module    string   `json:"module"`
	Functions []string `json:"functions"`
}

// InputFile describes one tabular input source.
type InputFile struct {
	// Filename is the path to the input file. It may be overridden
	// positionally from the command line.
	Filename string `json:"filename"`

	// FieldPrefix, when set, is prepended to every incoming column name as
	// "<prefix>_<name>". Applied before RenameFields.
	FieldPrefix string `json:"field_prefix"`

	// FieldSuffix, when set, is appended to every incoming column name as
	// "<name>_<suffix>". Applied before RenameFields.
	FieldSuffix string `json:"field_suffix"`

	// RenameFields maps already-prefixed/suffixed column names to new names.
	// A rename for a name that is not present is a no-op.
	RenameFields map[string]string `json:"rename_fields"`

	// Options is a free-form bag interpreted by the reader (e.g. "comma",
	// "trim_space").
	Options Options `json:"options"`
}

// Step is one configured invocation of a registered function.
type Step struct {
	// Function is the registered function name to dispatch to.
	Function string `json:"function"`

	// Input is polymorphic: a JSON array of existing field names (positional
	// call) or a JSON object of named parameters (structured call). See
	// StepInput.
	Input StepInput `json:"input"`

	// Output lists the field names the function is expected to produce, in
	// order. May be empty for steps with only metadata results. When
	// non-empty, the engine verifies the result contains exactly these names.
	Output []string `json:"output"`

	// Options is a free-form bag passed to the function as its step config
	// (e.g. a dedupe policy or a date layout).
	Options Options `json:"options"`
}

// OutputFile describes one output destination.
type OutputFile struct {
	// Filename is the destination path (or table name for database kinds).
	// It may contain {placeholder} tokens resolved from metadata, and may be
	// overridden positionally from the command line.
	Filename string `json:"filename"`

	// Kind selects the destination implementation. Empty means "csv".
	Kind string `json:"kind"`

	// Fields lists the columns to write, in order. The literal "*" expands to
	// all remaining columns of the referenced view, alphabetically.
	Fields []string `json:"fields"`

	// DataSource/DataEntry optionally reference an immutable snapshot instead
	// of the final namespace state.
	DataSource string `json:"data_source"`
	DataEntry  string `json:"data_entry"`

	// Options carries destination-specific settings (e.g. "dsn", "table" for
	// database kinds).
	Options Options `json:"options"`
}

// Graph is a declarative chart specification. Filename, Title and series
// labels may contain {placeholder} tokens.
type Graph struct {
	Filename   string        `json:"filename"`
	Title      string        `json:"title"`
	Size       []int         `json:"size"`
	ShowLegend bool          `json:"show_legend"`
	XAxis      Axis          `json:"x_axis"`
	YAxis      Axis          `json:"y_axis"`
	Series     []GraphSeries `json:"series"`

	// DataSource/DataEntry optionally reference an immutable snapshot instead
	// of the final namespace state.
	DataSource string `json:"data_source"`
	DataEntry  string `json:"data_entry"`
}

// Axis configures one chart axis.
type Axis struct {
	Title string `json:"title"`
}

// GraphSeries is one plotted line: a label plus the X and Y column names.
type GraphSeries struct {
	Label   string `json:"label"`
	XColumn string `json:"x_column"`
	YColumn string `json:"y_column"`
}
