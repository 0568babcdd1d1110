package builtin

import (
	"reflect"
	"testing"

	"transform/internal/config"
	"transform/internal/registry"
	"transform/internal/table"
)

func mkTable(t *testing.T, pairs ...any) *table.Table {
	t.Helper()
	tbl := table.New()
	for i := 0; i < len(pairs); i += 2 {
		if err := tbl.AppendColumn(pairs[i].(string), pairs[i+1].([]any)); err != nil {
			t.Fatalf("AppendColumn(%q) error = %v", pairs[i], err)
		}
	}
	return tbl
}

func column(t *testing.T, tbl *table.Table, name string) []any {
	t.Helper()
	values, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %q missing (have %v)", name, tbl.Columns())
	}
	return values
}

func TestModuleRegistration(t *testing.T) {
	reg := registry.New()
	err := reg.Import([]config.Import{{
		Module:    "public",
		Functions: []string{"split_name", "pivot", "dedupe"},
	}})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if _, err := reg.Lookup("split_name"); err != nil {
		t.Fatalf("Lookup(split_name) error = %v", err)
	}

	// Functions not imported stay unavailable.
	if _, err := reg.Lookup("normalize"); err == nil {
		t.Fatal("Lookup(normalize) succeeded without import")
	}
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Fields: []string{"name"},
		Table: mkTable(t, "name", []any{
			"John Doe",
			"Jane H. Smith",
			"Johnson, Robert A.",
			"Prince",
		}),
	}

	got, md, err := splitName(in, []string{"first_name", "last_name"}, nil)
	if err != nil {
		t.Fatalf("splitName() error = %v", err)
	}
	if md != nil {
		t.Fatalf("splitName() metadata = %v, want nil", md)
	}

	wantFirst := []any{"John", "Jane H.", "Robert A.", "Prince"}
	wantLast := []any{"Doe", "Smith", "Johnson", ""}
	if first := column(t, got, "first_name"); !reflect.DeepEqual(first, wantFirst) {
		t.Fatalf("first_name = %v, want %v", first, wantFirst)
	}
	if last := column(t, got, "last_name"); !reflect.DeepEqual(last, wantLast) {
		t.Fatalf("last_name = %v, want %v", last, wantLast)
	}
}

func TestSplitName_Arity(t *testing.T) {
	t.Parallel()

	in := registry.Input{Fields: []string{"a", "b"}, Table: mkTable(t, "a", []any{"x"}, "b", []any{"y"})}
	if _, _, err := splitName(in, []string{"f", "l"}, nil); err == nil {
		t.Fatal("splitName() with two input fields succeeded, want error")
	}

	in = registry.Input{Fields: []string{"a"}, Table: mkTable(t, "a", []any{"x"})}
	if _, _, err := splitName(in, []string{"f"}, nil); err == nil {
		t.Fatal("splitName() with one output field succeeded, want error")
	}
}

func TestCombineName(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Fields: []string{"first", "last"},
		Table:  mkTable(t, "first", []any{"John", "Jane"}, "last", []any{"Doe", "Smith"}),
	}
	got, _, err := combineName(in, []string{"name"}, nil)
	if err != nil {
		t.Fatalf("combineName() error = %v", err)
	}
	want := []any{"John Doe", "Jane Smith"}
	if names := column(t, got, "name"); !reflect.DeepEqual(names, want) {
		t.Fatalf("name = %v, want %v", names, want)
	}
}

func TestSplitAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr        string
		street      string
		houseNumber string
		suffix      string
		postalCode  string
		city        string
	}{
		{
			addr:   "Storgata 6 leilighet 3, 0123 Oslo",
			street: "Storgata", houseNumber: "6", suffix: "leilighet 3",
			postalCode: "0123", city: "Oslo",
		},
		{
			addr:   "Parkveien 45, Seksjon 1, Inng.A, 1337 Sandvika",
			street: "Parkveien", houseNumber: "45", suffix: "Seksjon 1, Inng.A",
			postalCode: "1337", city: "Sandvika",
		},
		{
			addr:   "Nedre Kirkegate 7B, 5005 Bergen",
			street: "Nedre Kirkegate", houseNumber: "7B", suffix: "",
			postalCode: "5005", city: "Bergen",
		},
		{
			// Range house numbers beat the bare-digits alternative.
			addr:   "Markveien 1-3, N-0554 Oslo",
			street: "Markveien", houseNumber: "1-3", suffix: "",
			postalCode: "N-0554", city: "Oslo",
		},
		{
			// Street name starting with a number keeps the number.
			addr:   "7 Juni plassen 1, 0251 Oslo",
			street: "7 Juni plassen", houseNumber: "1", suffix: "",
			postalCode: "0251", city: "Oslo",
		},
		{
			// No postal code: everything after the last comma is the city.
			addr:   "Slottsplassen 1, Oslo",
			street: "Slottsplassen", houseNumber: "1", suffix: "",
			postalCode: "", city: "Oslo",
		},
		{
			// No comma at all: the whole value is the street.
			addr:   "Storgata",
			street: "Storgata",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()

			street, houseNumber, suffix, postalCode, city := splitOneAddress(tt.addr)
			if street != tt.street {
				t.Errorf("street = %q, want %q", street, tt.street)
			}
			if houseNumber != tt.houseNumber {
				t.Errorf("house number = %q, want %q", houseNumber, tt.houseNumber)
			}
			if suffix != tt.suffix {
				t.Errorf("suffix = %q, want %q", suffix, tt.suffix)
			}
			if postalCode != tt.postalCode {
				t.Errorf("postal code = %q, want %q", postalCode, tt.postalCode)
			}
			if city != tt.city {
				t.Errorf("city = %q, want %q", city, tt.city)
			}
		})
	}
}

func TestSplitAddress_Columns(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Fields: []string{"address"},
		Table:  mkTable(t, "address", []any{"Storgata 6, 0123 Oslo"}),
	}
	output := []string{"address_street", "address_house_number", "address_suffix", "postal_code", "city"}
	got, _, err := splitAddress(in, output, nil)
	if err != nil {
		t.Fatalf("splitAddress() error = %v", err)
	}
	if cols := got.Columns(); !reflect.DeepEqual(cols, output) {
		t.Fatalf("columns = %v, want %v", cols, output)
	}
}

func TestMergeByColumn(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Snapshots: []registry.Snapshot{
			{Source: "input_1", Entry: "csv", Table: mkTable(t,
				"id", []any{"1", "2"}, "name", []any{"a", nil})},
			{Source: "input_2", Entry: "csv", Table: mkTable(t,
				"name", []any{"x", "y"}, "city", []any{"Oslo", "Bergen"})},
		},
	}

	got, md, err := mergeByColumn(in, nil, nil)
	if err != nil {
		t.Fatalf("mergeByColumn() error = %v", err)
	}
	if md != nil {
		t.Fatalf("metadata = %v, want nil", md)
	}

	if cols := got.Columns(); !reflect.DeepEqual(cols, []string{"id", "name", "city"}) {
		t.Fatalf("columns = %v, want [id name city]", cols)
	}
	// First source wins cell-wise, nils filled from later sources.
	want := []any{"a", "y"}
	if names := column(t, got, "name"); !reflect.DeepEqual(names, want) {
		t.Fatalf("name = %v, want %v", names, want)
	}
}

func TestMergeByColumn_PadsShorterSources(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Snapshots: []registry.Snapshot{
			{Source: "input_1", Entry: "csv", Table: mkTable(t, "id", []any{"1", "2", "3"})},
			{Source: "input_2", Entry: "csv", Table: mkTable(t, "city", []any{"Oslo"})},
		},
	}
	got, _, err := mergeByColumn(in, nil, nil)
	if err != nil {
		t.Fatalf("mergeByColumn() error = %v", err)
	}
	if got.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", got.NumRows())
	}
	if cities := column(t, got, "city"); !reflect.DeepEqual(cities, []any{"Oslo", nil, nil}) {
		t.Fatalf("city = %v, want [Oslo <nil> <nil>]", cities)
	}
}

func TestPivot(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Params: config.Options{
			"index_column": "time",
			"pivot_column": "cycle",
			"data_column":  "capacity",
		},
		Table: mkTable(t,
			"cycle", []any{"1", "1", "2", "2"},
			"capacity", []any{"0.0", "0.007", "0.0", "0.008"},
			"time", []any{"0.0", "1.0", "0.0", "1.0"},
		),
	}

	got, md, err := pivot(in, nil, nil)
	if err != nil {
		t.Fatalf("pivot() error = %v", err)
	}
	if !md.ClearInputData() {
		t.Fatal("pivot() did not request clear_input_data")
	}

	wantCols := []string{"time", "cycle 1 capacity", "cycle 2 capacity"}
	if cols := got.Columns(); !reflect.DeepEqual(cols, wantCols) {
		t.Fatalf("columns = %v, want %v", cols, wantCols)
	}
	if got.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", got.NumRows())
	}
	if c1 := column(t, got, "cycle 1 capacity"); !reflect.DeepEqual(c1, []any{"0.0", "0.007"}) {
		t.Fatalf("cycle 1 capacity = %v, want [0.0 0.007]", c1)
	}
}

func TestPivot_MissingRoleFails(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Params: config.Options{"index_column": "time"},
		Table:  mkTable(t, "time", []any{"0"}),
	}
	if _, _, err := pivot(in, nil, nil); err == nil {
		t.Fatal("pivot() without pivot_column/data_column succeeded, want error")
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	tbl := mkTable(t,
		"name", []any{"a", "b", "a", "c"},
		"v", []any{"1", "2", "3", "4"},
	)

	tests := []struct {
		name   string
		policy string
		wantV  []any
	}{
		{name: "keep-first", policy: "keep-first", wantV: []any{"1", "2", "4"}},
		{name: "keep-last", policy: "keep-last", wantV: []any{"3", "2", "4"}},
		{name: "default is keep-first", policy: "", wantV: []any{"1", "2", "4"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := config.Options{"keys": []any{"name"}}
			if tt.policy != "" {
				params["policy"] = tt.policy
			}
			got, md, err := dedupe(registry.Input{Params: params, Table: tbl}, nil, nil)
			if err != nil {
				t.Fatalf("dedupe() error = %v", err)
			}
			if !md.ClearInputData() {
				t.Fatal("dedupe() did not request clear_input_data")
			}
			if v := column(t, got, "v"); !reflect.DeepEqual(v, tt.wantV) {
				t.Fatalf("v = %v, want %v", v, tt.wantV)
			}
		})
	}
}

func TestDedupe_Validation(t *testing.T) {
	t.Parallel()

	tbl := mkTable(t, "name", []any{"a"})

	if _, _, err := dedupe(registry.Input{Table: tbl}, nil, nil); err == nil {
		t.Fatal("dedupe() without structured input succeeded, want error")
	}
	in := registry.Input{Params: config.Options{"keys": []any{"name"}, "policy": "newest"}, Table: tbl}
	if _, _, err := dedupe(in, nil, nil); err == nil {
		t.Fatal("dedupe() with unknown policy succeeded, want error")
	}
	in = registry.Input{Params: config.Options{"keys": []any{"missing"}}, Table: tbl}
	if _, _, err := dedupe(in, nil, nil); err == nil {
		t.Fatal("dedupe() with missing key field succeeded, want error")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Fields: []string{"name"},
		Table:  mkTable(t, "name", []any{"  Åse  ", "Grünerløkka", nil}),
	}

	got, _, err := normalize(in, []string{"name_clean"},
		config.Options{"fold_diacritics": true, "lower": true})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}

	want := []any{"ase", "grunerløkka", nil}
	if v := column(t, got, "name_clean"); !reflect.DeepEqual(v, want) {
		t.Fatalf("name_clean = %v, want %v", v, want)
	}
}

func TestNormalize_DefaultTrimOnly(t *testing.T) {
	t.Parallel()

	in := registry.Input{
		Fields: []string{"a", "b"},
		Table:  mkTable(t, "a", []any{" x "}, "b", []any{"Y"}),
	}
	got, _, err := normalize(in, []string{"a2", "b2"}, nil)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if v := column(t, got, "a2"); !reflect.DeepEqual(v, []any{"x"}) {
		t.Fatalf("a2 = %v, want [x]", v)
	}
	if v := column(t, got, "b2"); !reflect.DeepEqual(v, []any{"Y"}) {
		t.Fatalf("b2 = %v, want [Y] (no lowercasing by default)", v)
	}
}

func TestConstant(t *testing.T) {
	t.Parallel()

	in := registry.Input{Params: config.Options{
		"values": map[string]any{"site": "oslo", "run": 7.0},
	}}
	tbl, md, err := constant(in, nil, nil)
	if err != nil {
		t.Fatalf("constant() error = %v", err)
	}
	if tbl != nil {
		t.Fatalf("constant() table = %v, want nil", tbl)
	}
	subs := md.VariableSubstitutions()
	if subs["site"] != "oslo" || subs["run"] != 7.0 {
		t.Fatalf("substitutions = %v, want site=oslo run=7", subs)
	}

	if _, _, err := constant(registry.Input{Params: config.Options{}}, nil, nil); err == nil {
		t.Fatal("constant() without values succeeded, want error")
	}
}
