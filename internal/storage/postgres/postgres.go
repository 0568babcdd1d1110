// Package postgres implements a Postgres output destination using pgx v5.
// Rows go in through the COPY protocol, which is the fastest bulk path the
// server offers; the destination table is created on demand with TEXT
// columns and truncated first unless the "append" option is set.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"transform/internal/storage"
	"transform/internal/table"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type destination struct {
	pool       *pgxpool.Pool
	tbl        string
	appendRows bool
}

var _ storage.Destination = (*destination)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Destination, error) {
		dsn := strings.TrimSpace(cfg.Options.String("dsn", ""))
		if dsn == "" {
			return nil, fmt.Errorf("postgres destination: options.dsn is required")
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		return &destination{
			pool:       pool,
			tbl:        storage.TableName(cfg),
			appendRows: cfg.Options.Bool("append", false),
		}, nil
	})
}

func (d *destination) Write(ctx context.Context, columns []string, data *table.Table) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: no columns to write")
	}
	rows, err := data.Rows(columns)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		stringifyRow(row)
	}

	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(d.tbl), strings.Join(defs, ", "))
	if _, err := conn.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("postgres: create table: %w", err)
	}
	if !d.appendRows {
		if _, err := conn.Exec(ctx, "TRUNCATE "+quoteIdent(d.tbl)); err != nil {
			return 0, fmt.Errorf("postgres: truncate: %w", err)
		}
	}

	n, err := conn.CopyFrom(ctx,
		pgx.Identifier{d.tbl},
		columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

func (d *destination) Close() error {
	if d.pool == nil {
		return nil
	}
	pool := d.pool
	d.pool = nil
	pool.Close()
	return nil
}

// stringifyRow coerces values pgx cannot encode as TEXT (json.Number and the
// like) into strings in place, keeping nil as NULL.
func stringifyRow(row []any) {
	for i, v := range row {
		switch v.(type) {
		case nil, string:
		default:
			row[i] = fmt.Sprint(v)
		}
	}
}

// quoteIdent wraps an identifier in double quotes, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
