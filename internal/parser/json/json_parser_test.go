package json

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"transform/internal/config"
)

func TestRead_NDJSON(t *testing.T) {
	t.Parallel()

	in := `{"id":1,"name":"a"}
{"id":2,"name":"b"}`

	got, err := Read(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cols := got.Columns(); !reflect.DeepEqual(cols, []string{"id", "name"}) {
		t.Fatalf("columns = %v, want [id name]", cols)
	}
	ids, _ := got.Column("id")
	want := []any{json.Number("1"), json.Number("2")}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("id = %v, want %v", ids, want)
	}
}

func TestRead_TopLevelArray(t *testing.T) {
	t.Parallel()

	in := `[{"id":1},{"id":2}]`

	// Rejected by default.
	if _, err := Read(strings.NewReader(in), Options{}); err == nil {
		t.Fatal("Read() of array without allow_arrays succeeded, want error")
	}

	got, err := Read(strings.NewReader(in), Options{AllowArrays: true})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", got.NumRows())
	}
}

func TestRead_RaggedObjectsPadWithNil(t *testing.T) {
	t.Parallel()

	in := `{"id":1,"name":"a"}
{"id":2,"city":"Oslo"}`

	got, err := Read(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Union of keys, first appearance order (per-object keys sorted).
	if cols := got.Columns(); !reflect.DeepEqual(cols, []string{"id", "name", "city"}) {
		t.Fatalf("columns = %v, want [id name city]", cols)
	}
	names, _ := got.Column("name")
	if !reflect.DeepEqual(names, []any{"a", nil}) {
		t.Fatalf("name = %v, want [a <nil>]", names)
	}
	cities, _ := got.Column("city")
	if !reflect.DeepEqual(cities, []any{nil, "Oslo"}) {
		t.Fatalf("city = %v, want [<nil> Oslo]", cities)
	}
}

func TestRead_NonObjectFails(t *testing.T) {
	t.Parallel()

	if _, err := Read(strings.NewReader(`42`), Options{}); err == nil {
		t.Fatal("Read() of a bare number succeeded, want error")
	}
}

func TestRead_Empty(t *testing.T) {
	t.Parallel()

	got, err := Read(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !got.Empty() {
		t.Fatalf("columns = %v, want empty table", got.Columns())
	}
}

func TestOptionsFrom(t *testing.T) {
	t.Parallel()

	got := OptionsFrom(config.Options{"allow_arrays": true})
	if !got.AllowArrays {
		t.Fatal("AllowArrays = false, want true")
	}
	if OptionsFrom(config.Options{}).AllowArrays {
		t.Fatal("AllowArrays default = true, want false")
	}
}
