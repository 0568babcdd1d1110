package storage

import (
	"context"
	"strings"
	"sync"
	"testing"

	"transform/internal/config"
	"transform/internal/pipeline"
	"transform/internal/table"
)

type fakeDest struct {
	rows   int64
	closed bool
}

func (f *fakeDest) Write(ctx context.Context, columns []string, data *table.Table) (int64, error) {
	f.rows = int64(data.NumRows())
	return f.rows, nil
}

func (f *fakeDest) Close() error {
	f.closed = true
	return nil
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), "parquet", Config{})
	if err == nil {
		t.Fatal("New(parquet) succeeded, want error")
	}
	if !strings.Contains(err.Error(), "parquet") {
		t.Fatalf("error = %v, want the unknown kind named", err)
	}
}

func TestRegisterAndNew(t *testing.T) {
	fd := &fakeDest{}
	Register("fake", func(ctx context.Context, cfg Config) (Destination, error) {
		return fd, nil
	})

	d, err := New(context.Background(), "fake", Config{})
	if err != nil {
		t.Fatalf("New(fake) error = %v", err)
	}
	if d != Destination(fd) {
		t.Fatal("New(fake) did not return the registered destination")
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds() = %v, want fake included", Kinds())
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register did not panic")
		}
	}()
	Register("dup", func(ctx context.Context, cfg Config) (Destination, error) { return nil, nil })
	Register("dup", func(ctx context.Context, cfg Config) (Destination, error) { return nil, nil })
}

func TestWriteAll(t *testing.T) {
	var mu sync.Mutex
	var written []*fakeDest
	Register("capture", func(ctx context.Context, cfg Config) (Destination, error) {
		fd := &fakeDest{}
		mu.Lock()
		written = append(written, fd)
		mu.Unlock()
		return fd, nil
	})

	tbl := table.New()
	if err := tbl.AppendColumn("a", []any{"1", "2"}); err != nil {
		t.Fatalf("AppendColumn() error = %v", err)
	}

	outputs := []pipeline.ResolvedOutput{
		{Config: config.OutputFile{Kind: "capture"}, Filename: "x.csv", Columns: []string{"a"}, Table: tbl},
		{Config: config.OutputFile{Kind: "capture"}, Filename: "y.csv", Columns: []string{"a"}, Table: tbl},
	}
	if err := WriteAll(context.Background(), "test", outputs); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	if len(written) != 2 {
		t.Fatalf("constructed %d destinations, want 2", len(written))
	}
	for i, fd := range written {
		if fd.rows != 2 {
			t.Fatalf("destination %d wrote %d rows, want 2", i, fd.rows)
		}
		if !fd.closed {
			t.Fatalf("destination %d was not closed", i)
		}
	}
}

func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit table option wins",
			cfg:  Config{Filename: "out.csv", Options: config.Options{"table": "people"}},
			want: "people",
		},
		{
			name: "derived from filename base",
			cfg:  Config{Filename: "/tmp/run-7 Output.csv"},
			want: "run_7_output",
		},
		{
			name: "empty filename falls back",
			cfg:  Config{Filename: ""},
			want: "transform_output",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TableName(tt.cfg); got != tt.want {
				t.Fatalf("TableName() = %q, want %q", got, tt.want)
			}
		})
	}
}
