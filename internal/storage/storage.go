// Package storage contains the backend-agnostic output destination contract
// and the factory that concrete backends register into.
//
// A Destination receives a fully resolved output: wildcards expanded,
// templates substituted, columns projected. Backends stay isolated in
// subpackages and self-register at init; importing storage/all (even blank)
// makes every built-in kind available, the same wiring pattern the metrics
// backends use.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"transform/internal/config"
	"transform/internal/metrics"
	"transform/internal/pipeline"
	"transform/internal/table"

	"golang.org/x/sync/errgroup"
)

// Config is the backend-agnostic destination configuration.
type Config struct {
	// Filename is the template-resolved output filename. File-based backends
	// write to it; database backends may derive a table name from it.
	Filename string

	// Options is the output file section's free-form options block
	// (dsn, table, comma, append, ...), interpreted per backend.
	Options config.Options
}

// Destination writes one resolved output. Implementations are single-use:
// one Write, then Close.
type Destination interface {
	// Write delivers the named columns of data, in order, and reports the
	// number of rows written.
	Write(ctx context.Context, columns []string, data *table.Table) (int64, error)
	Close() error
}

// Factory constructs a Destination for one output.
type Factory func(ctx context.Context, cfg Config) (Destination, error)

var factories = map[string]Factory{}

// Register wires a backend kind into the factory. Meant to be called from
// init; duplicate kinds panic, since that is a programming error.
func Register(kind string, f Factory) {
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: kind %q registered twice", kind))
	}
	factories[kind] = f
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New constructs a Destination of the given kind. An empty kind means "csv".
func New(ctx context.Context, kind string, cfg Config) (Destination, error) {
	if kind == "" {
		kind = "csv"
	}
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown output kind %q (available: %s)",
			kind, strings.Join(Kinds(), ", "))
	}
	return f(ctx, cfg)
}

// WriteAll delivers every resolved output through its configured backend.
// Outputs are independent of each other once resolved, so they are written
// concurrently; the first failure cancels the rest.
func WriteAll(ctx context.Context, job string, outputs []pipeline.ResolvedOutput) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, out := range outputs {
		out := out
		g.Go(func() error {
			start := time.Now()
			n, err := writeOne(ctx, out)
			metrics.RecordOutput(job, kindOf(out), err, time.Since(start))
			if err != nil {
				return fmt.Errorf("output %s: %w", out.Filename, err)
			}
			metrics.RecordRows(job, "written", n)
			return nil
		})
	}
	return g.Wait()
}

func writeOne(ctx context.Context, out pipeline.ResolvedOutput) (int64, error) {
	dest, err := New(ctx, out.Config.Kind, Config{
		Filename: out.Filename,
		Options:  out.Config.Options,
	})
	if err != nil {
		return 0, err
	}
	n, err := dest.Write(ctx, out.Columns, out.Table)
	if err != nil {
		dest.Close()
		return n, err
	}
	return n, dest.Close()
}

func kindOf(out pipeline.ResolvedOutput) string {
	if out.Config.Kind == "" {
		return "csv"
	}
	return out.Config.Kind
}

// TableName derives a database table name for a destination: the explicit
// "table" option when set, otherwise the filename base with its extension
// and non-identifier characters stripped.
func TableName(cfg Config) string {
	if t := cfg.Options.String("table", ""); t != "" {
		return t
	}
	base := cfg.Filename
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "transform_output"
	}
	return b.String()
}
