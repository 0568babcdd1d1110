// Package csv reads delimited input files into tables and writes resolved
// output tables back out. It streams through encoding/csv and never buffers
// the whole file beyond the column data itself, so large inputs are safe.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"transform/internal/config"
	"transform/internal/table"
)

// Options configures the CSV reader behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// NoHeader indicates the first row is data, not column names. Columns
	// are then named "col_0", "col_1", ...
	NoHeader bool

	// HeaderMap maps source header names to canonical field names before
	// any prefix/suffix/rename processing. Only applies when the file has
	// a header row.
	HeaderMap map[string]string
}

// OptionsFrom builds reader Options from an input file's free-form options
// block. Recognized keys: "comma", "trim_space", "no_header", "header_map".
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:     o.Rune("comma", 0),
		TrimSpace: o.Bool("trim_space", false),
		NoHeader:  o.Bool("no_header", false),
		HeaderMap: stringMapOrNil(o, "header_map"),
	}
}

func stringMapOrNil(o config.Options, key string) map[string]string {
	m := o.StringMap(key)
	if len(m) == 0 {
		return nil
	}
	return m
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// Read parses CSV records from r into a table. Every row must have the same
// width as the header (or the first row when NoHeader is set); a short or
// long row is a hard error naming the 1-based line, since silently dropping
// rows would corrupt downstream merges.
func Read(r io.Reader, opt Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}

	var headers []string
	var rows [][]string

	if !opt.NoHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return table.New(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, opt)
	}

	line := 1
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i := range headers {
				headers[i] = fmt.Sprintf("col_%d", i)
			}
			cr.FieldsPerRecord = len(row)
		}
		if opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		rows = append(rows, row)
	}

	t := table.New()
	for i, name := range headers {
		values := make([]any, len(rows))
		for j, row := range rows {
			values[j] = row[i]
		}
		if err := t.AppendColumn(name, values); err != nil {
			return nil, fmt.Errorf("csv column %q: %w", name, err)
		}
	}
	return t, nil
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

// Write renders the named columns of t to w as CSV, header row first.
// Values are stringified with fmt; nil renders as an empty cell.
func Write(w io.Writer, columns []string, t *table.Table, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	cols := make([][]any, len(columns))
	for i, name := range columns {
		values, ok := t.Column(name)
		if !ok {
			return &table.MissingFieldError{Field: name, Available: t.Columns()}
		}
		cols[i] = values
	}

	record := make([]string, len(columns))
	for row := 0; row < t.NumRows(); row++ {
		for i := range columns {
			record[i] = cell(cols[i][row])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// normalizeHeaders trims each header cell, strips a UTF-8 BOM from the first
// one, and applies HeaderMap when provided.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = c
	}
	return res
}
