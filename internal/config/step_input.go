package config

import (
	"encoding/json"
	"fmt"
)

// StepInput is the polymorphic "input" of a transformation step, decoded as a
// tagged variant with two cases:
//
//   - a JSON array of field names -> positional call (Fields set)
//   - a JSON object of parameters -> structured call (Params set)
//
// A structured input may reference a specific data source snapshot through
// the reserved keys "data_source", "data_entry" and "fields"; SourceRef
// extracts that triple. Absent or null input decodes to the zero value.
type StepInput struct {
	Fields []string
	Params Options
}

// IsPositional reports whether the input was a JSON array of field names.
func (s StepInput) IsPositional() bool { return s.Fields != nil }

// IsStructured reports whether the input was a JSON object.
func (s StepInput) IsStructured() bool { return s.Params != nil }

// SourceRef returns the (data_source, data_entry, fields) triple of a
// structured input that references an immutable snapshot. ok is false when
// the input is positional or carries no "data_source" key.
func (s StepInput) SourceRef() (source, entry string, fields []string, ok bool) {
	if s.Params == nil {
		return "", "", nil, false
	}
	source = s.Params.String("data_source", "")
	if source == "" {
		return "", "", nil, false
	}
	return source, s.Params.String("data_entry", ""), s.Params.StringSlice("fields"), true
}

// UnmarshalJSON implements the array-or-object decoding described above.
func (s *StepInput) UnmarshalJSON(b []byte) error {
	*s = StepInput{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '[':
		var fields []string
		if err := json.Unmarshal(b, &fields); err != nil {
			return fmt.Errorf("step input: %w", err)
		}
		if fields == nil {
			fields = []string{}
		}
		s.Fields = fields
	case '{':
		var params Options
		if err := json.Unmarshal(b, &params); err != nil {
			return fmt.Errorf("step input: %w", err)
		}
		s.Params = params
	default:
		return fmt.Errorf("step input must be an array of field names or an object of parameters")
	}
	return nil
}

// MarshalJSON renders the variant back to its JSON form.
func (s StepInput) MarshalJSON() ([]byte, error) {
	if s.Params != nil {
		return json.Marshal(s.Params)
	}
	if s.Fields != nil {
		return json.Marshal(s.Fields)
	}
	return []byte("null"), nil
}
