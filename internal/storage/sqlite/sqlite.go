// Package sqlite implements a SQLite output destination using database/sql.
// It replaces the destination table wholesale and performs batched INSERTs
// inside one transaction; SQLite has no dedicated bulk-load API, but a
// single transaction keeps performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"transform/internal/storage"
	"transform/internal/table"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo
)

type destination struct {
	db         *sql.DB
	tbl        string
	appendRows bool
}

var _ storage.Destination = (*destination)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Destination, error) {
		dsn := strings.TrimSpace(cfg.Options.String("dsn", ""))
		if dsn == "" {
			return nil, fmt.Errorf("sqlite destination: options.dsn is required")
		}

		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlite: open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: ping: %w", err)
		}

		return &destination{
			db:         db,
			tbl:        storage.TableName(cfg),
			appendRows: cfg.Options.Bool("append", false),
		}, nil
	})
}

// Write creates the destination table (dropping a previous one unless the
// "append" option is set) and inserts every row in one transaction. All
// columns are TEXT; values are stored as the driver renders them.
func (d *destination) Write(ctx context.Context, columns []string, data *table.Table) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: no columns to write")
	}
	rows, err := data.Rows(columns)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if !d.appendRows {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(d.tbl)); err != nil {
			return 0, fmt.Errorf("sqlite: drop table: %w", err)
		}
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(d.tbl), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("sqlite: create table: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(d.tbl), strings.Join(quoted, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, normalizeArgs(row)...); err != nil {
			return n, fmt.Errorf("sqlite: insert row %d: %w", i+1, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return n, nil
}

func (d *destination) Close() error {
	if d.db == nil {
		return nil
	}
	db := d.db
	d.db = nil
	return db.Close()
}

// normalizeArgs coerces values the driver cannot bind (json.Number and the
// like) into strings, keeping nil as SQL NULL.
func normalizeArgs(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch v.(type) {
		case nil, string, int, int64, float64, bool, []byte, time.Time:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// quoteIdent wraps an identifier in double quotes, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
