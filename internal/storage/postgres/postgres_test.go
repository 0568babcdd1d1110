package postgres

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"transform/internal/storage"
)

func TestNew_RequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := storage.New(context.Background(), "postgres", storage.Config{Filename: "x.csv"})
	if err == nil {
		t.Fatal("New() without dsn succeeded, want error")
	}
}

func TestStringifyRow(t *testing.T) {
	t.Parallel()

	row := []any{nil, "s", json.Number("42"), 7}
	stringifyRow(row)
	want := []any{nil, "s", "42", "7"}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("stringifyRow() = %v, want %v", row, want)
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"name", `"name"`},
		{`we"ird`, `"we""ird"`},
		{"first name", `"first name"`},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.in); got != tt.want {
			t.Fatalf("quoteIdent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
