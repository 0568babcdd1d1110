// Package template resolves {name} placeholders in filenames, titles and
// other user-facing strings using the variable substitutions accumulated from
// transform step metadata.
//
// Substitution is late-bound: it runs once, after all transform steps have
// executed, so a template may reference a variable produced by any step
// regardless of position. A placeholder with no substitution is a hard error;
// literal braces never silently pass through to output files.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// UnresolvedPlaceholderError reports a {placeholder} with no corresponding
// substitution value.
type UnresolvedPlaceholderError struct {
	Placeholder string
	Template    string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("no substitution value for placeholder {%s} in %q", e.Placeholder, e.Template)
}

// placeholderPattern matches {identifier} tokens. Identifiers follow the
// usual rules (letters, digits, underscores, not starting with a digit);
// anything else between braces is left alone so data containing braces does
// not trip the engine.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolve replaces every {identifier} token in s with the stringified
// substitution value. It fails with UnresolvedPlaceholderError on the first
// placeholder that has no value.
func Resolve(s string, substitutions map[string]any) (string, error) {
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1 : len(tok)-1]
		value, ok := substitutions[name]
		if !ok {
			if firstErr == nil {
				firstErr = &UnresolvedPlaceholderError{Placeholder: name, Template: s}
			}
			return tok
		}
		return fmt.Sprint(value)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// Placeholders returns the distinct placeholder names referenced by s, in
// order of first appearance.
func Placeholders(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Merge folds the entries of src into dst, later keys winning on collision,
// and returns dst. A nil dst is allocated first. This is the accumulation
// rule for the global variable_substitutions table.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Describe renders a substitution table for log lines, sorted-free and
// compact: "run=7 site=oslo".
func Describe(subs map[string]any) string {
	parts := make([]string, 0, len(subs))
	for k, v := range subs {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}
