package registry

import (
	"errors"
	"testing"

	"transform/internal/config"
	"transform/internal/table"
)

func nopFunc(in Input, output []string, opts config.Options) (*table.Table, Metadata, error) {
	return nil, nil, nil
}

func TestRegistry_LookupFailsClosed(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("split_name", nopFunc)

	if _, err := r.Lookup("split_name"); err != nil {
		t.Fatalf("Lookup(split_name): %v", err)
	}

	_, err := r.Lookup("split_address")
	var uf *UnknownFunctionError
	if !errors.As(err, &uf) {
		t.Fatalf("err = %v, want UnknownFunctionError", err)
	}
	if uf.Name != "split_address" || len(uf.Available) != 1 {
		t.Fatalf("UnknownFunctionError = %+v", uf)
	}
}

func TestRegistry_Import(t *testing.T) {
	// Not parallel: mutates the package-level module table.
	RegisterModule("registry_test_mod", map[string]Func{
		"fn_a": nopFunc,
		"fn_b": nopFunc,
	})

	r := New()
	err := r.Import([]config.Import{
		{Module: "registry_test_mod", Functions: []string{"fn_a"}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := r.Lookup("fn_a"); err != nil {
		t.Fatalf("fn_a not registered: %v", err)
	}
	// fn_b was not selected by the import section.
	if _, err := r.Lookup("fn_b"); err == nil {
		t.Fatalf("fn_b registered without being imported")
	}

	// Unknown function within a known module.
	err = r.Import([]config.Import{{Module: "registry_test_mod", Functions: []string{"fn_c"}}})
	var uf *UnknownFunctionError
	if !errors.As(err, &uf) || uf.Name != "fn_c" {
		t.Fatalf("err = %v, want UnknownFunctionError{fn_c}", err)
	}

	// Unknown module.
	if err := r.Import([]config.Import{{Module: "no_such_module"}}); err == nil {
		t.Fatalf("Import(unknown module) succeeded, want error")
	}
}

func TestMetadata_ReservedKeys(t *testing.T) {
	t.Parallel()

	md := Metadata{
		MetaClearInputData:        true,
		MetaVariableSubstitutions: map[string]any{"run": 7},
	}
	if !md.ClearInputData() {
		t.Fatalf("ClearInputData = false")
	}
	if md.VariableSubstitutions()["run"] != 7 {
		t.Fatalf("VariableSubstitutions = %v", md.VariableSubstitutions())
	}

	var none Metadata
	if none.ClearInputData() || none.VariableSubstitutions() != nil {
		t.Fatalf("zero Metadata should report no reserved keys")
	}
}
