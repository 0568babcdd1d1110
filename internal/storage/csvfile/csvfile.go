// Package csvfile implements the default file-based output destination. It
// delegates rendering to the csv parser package so read and write share one
// set of delimiter and cell conventions.
package csvfile

import (
	"context"
	"fmt"
	"os"

	"transform/internal/parser/csv"
	"transform/internal/storage"
	"transform/internal/table"
)

type destination struct {
	filename string
	comma    rune
	file     *os.File
}

var _ storage.Destination = (*destination)(nil)

func init() {
	storage.Register("csv", func(ctx context.Context, cfg storage.Config) (storage.Destination, error) {
		if cfg.Filename == "" {
			return nil, fmt.Errorf("csv destination: filename is required")
		}
		return &destination{
			filename: cfg.Filename,
			comma:    cfg.Options.Rune("comma", 0),
		}, nil
	})
}

func (d *destination) Write(ctx context.Context, columns []string, data *table.Table) (int64, error) {
	f, err := os.Create(d.filename)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	d.file = f

	if err := csv.Write(f, columns, data, d.comma); err != nil {
		return 0, fmt.Errorf("%s: %w", d.filename, err)
	}
	return int64(data.NumRows()), nil
}

func (d *destination) Close() error {
	if d.file == nil {
		return nil
	}
	f := d.file
	d.file = nil
	return f.Close()
}
