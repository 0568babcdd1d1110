package config

import "encoding/json"

// Options is a free-form parameter bag decoded from JSON objects whose shape
// varies by consumer (step config, reader settings, destination settings).
// Accessors perform minimal coercion and fall back to the provided default
// when a key is absent or has an unexpected type.
type Options map[string]any

// String returns the string value for key, or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key, or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key, or def. encoding/json decodes numbers as
// float64, so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Rune returns the first rune of the string value for key, or def. Useful for
// single-character settings such as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && s != "" {
		return []rune(s)[0]
	}
	return def
}

// StringSlice returns the []string value for key, accepting both []string and
// a JSON array of strings. Returns nil when absent or of another type.
func (o Options) StringSlice(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringMap returns a map[string]string for key when the value is a JSON
// object with string values; non-string values are skipped. Always non-nil.
func (o Options) StringMap(key string) map[string]string {
	out := map[string]string{}
	if m, ok := o[key].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// Any returns the raw value for key, or nil. Useful for nested blocks the
// caller decodes into a typed struct.
func (o Options) Any(key string) any { return o[key] }

// UnmarshalJSON decodes a missing or null options object to a non-nil, empty
// map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
