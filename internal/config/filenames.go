package config

import (
	"fmt"
	"strings"
)

// splitArg splits a comma separated command line file list. An entry that is
// empty (after trimming) or the placeholder "_" means "keep the filename
// declared in the transform file at this position". splitArg("") is nil.
func splitArg(arg string) []string {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	parts := strings.Split(arg, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "_" {
			p = ""
		}
		parts[i] = p
	}
	return parts
}

// ApplyInputOverrides merges a positional command line file list over the
// configured input files. Command line names win; "_" or an empty position
// keeps the configured name. When more names are given than the config
// declares, bare entries are appended (a file can be loaded without any
// configured prefix/suffix/rename). Every resulting input must end up with a
// filename.
func ApplyInputOverrides(files []InputFile, arg string) ([]InputFile, error) {
	override := splitArg(arg)

	out := make([]InputFile, len(files))
	copy(out, files)
	for len(out) < len(override) {
		out = append(out, InputFile{})
	}

	for i := range out {
		if i < len(override) && override[i] != "" {
			out[i].Filename = override[i]
		}
		if out[i].Filename == "" {
			return nil, fmt.Errorf("input file #%d has no filename (set it in the transform file or with -input)", i+1)
		}
	}
	return out, nil
}

// ApplyOutputOverrides merges a positional command line file list over the
// configured output files. Unlike inputs, extra command line names are an
// error: an output needs its configured field list, so every position must
// exist in the transform file.
func ApplyOutputOverrides(files []OutputFile, arg string) ([]OutputFile, error) {
	override := splitArg(arg)
	if len(override) > len(files) {
		return nil, fmt.Errorf("-output names %d files but the transform file declares %d output(s); outputs must be declared so their fields are known", len(override), len(files))
	}

	out := make([]OutputFile, len(files))
	copy(out, files)
	for i := range out {
		if i < len(override) && override[i] != "" {
			out[i].Filename = override[i]
		}
		if out[i].Filename == "" {
			return nil, fmt.Errorf("output file #%d has no filename (set it in the transform file or with -output)", i+1)
		}
	}
	return out, nil
}
