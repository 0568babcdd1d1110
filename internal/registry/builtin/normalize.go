package builtin

import (
	"fmt"
	"strings"
	"unicode"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes, strips combining marks and recomposes, so
// "Åse Grünerløkka" folds to "Ase Grunerlokka" minus the marks it can
// actually decompose (ø and similar atomic letters pass through).
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize canonicalizes string values of the positional input fields into
// equally many declared output columns. Options:
//
//	"trim_space":      trim surrounding whitespace (default true)
//	"lower":           lowercase values (default false)
//	"fold_diacritics": strip combining marks after NFD decomposition
//	                   (default false)
//
// Values always pass through NFC so visually identical strings compare
// equal downstream (dedupe keys, merge columns).
func normalize(in registry.Input, output []string, opts config.Options) (*table.Table, registry.Metadata, error) {
	if len(in.Fields) == 0 {
		return nil, nil, fmt.Errorf("normalize requires at least one input field")
	}
	if len(output) != len(in.Fields) {
		return nil, nil, fmt.Errorf("normalize requires one output field per input field, got %d inputs and %d outputs",
			len(in.Fields), len(output))
	}

	trimSpace := opts.Bool("trim_space", true)
	lower := opts.Bool("lower", false)
	fold := opts.Bool("fold_diacritics", false)

	out := table.New()
	for i, name := range in.Fields {
		values, _ := in.Table.Column(name)
		normalized := make([]any, len(values))
		for j, v := range values {
			if v == nil {
				continue
			}
			s := cell(v)
			if trimSpace {
				s = strings.TrimSpace(s)
			}
			if fold {
				if folded, _, err := transform.String(foldDiacritics, s); err == nil {
					s = folded
				}
			} else {
				s = norm.NFC.String(s)
			}
			if lower {
				s = strings.ToLower(s)
			}
			normalized[j] = s
		}
		if err := out.AppendColumn(output[i], normalized); err != nil {
			return nil, nil, err
		}
	}
	return out, nil, nil
}
