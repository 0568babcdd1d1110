// Package registry implements the capability table of transform functions:
// an explicit mapping from registered name to a typed function value,
// populated from the transform file's import section and queried by exact
// name. Lookups fail closed with UnknownFunctionError; there is no reflection
// fallback.
//
// Function modules (groups of related functions, e.g. the name-splitting
// family) register themselves with RegisterModule from an init function, the
// same side-effect pattern the storage backends use. The transform file's
// import section then selects which functions become callable for a run.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"transform/internal/config"
	"transform/internal/table"
)

// Reserved metadata keys interpreted by the pipeline engine.
const (
	// MetaClearInputData, when truthy, makes a step's result replace the
	// namespace instead of merging into it.
	MetaClearInputData = "clear_input_data"

	// MetaVariableSubstitutions is a map of placeholder name -> value
	// accumulated into the global template substitution table.
	MetaVariableSubstitutions = "variable_substitutions"
)

// Metadata is the optional key/value mapping a function returns alongside its
// result table.
type Metadata map[string]any

// ClearInputData reports whether the reserved clear_input_data key is truthy.
func (m Metadata) ClearInputData() bool {
	b, _ := m[MetaClearInputData].(bool)
	return b
}

// VariableSubstitutions returns the reserved substitutions map, or nil.
func (m Metadata) VariableSubstitutions() map[string]any {
	v, _ := m[MetaVariableSubstitutions].(map[string]any)
	return v
}

// Snapshot is a read-only view of one registered immutable data source entry.
type Snapshot struct {
	Source string
	Entry  string
	Table  *table.Table
}

// Input is a step's resolved input, prepared by the executor before dispatch
// so functions never parse the polymorphic configuration themselves.
//
// Exactly one of Fields/Params is set: Fields for positional calls (with
// Table projected down to those columns, in order) and Params for structured
// calls (with Table being the referenced snapshot view, or the live namespace
// when no data_source was given). Snapshots lists every registered data
// source entry in registration order; functions must treat all tables as
// read-only.
type Input struct {
	Fields    []string
	Params    config.Options
	Table     *table.Table
	Snapshots []Snapshot
}

// Func is a registered transform function. It receives the resolved input,
// the declared output field names, and the step's free-form options, and
// returns a result table (which may be nil or empty for metadata-only steps)
// plus optional metadata.
type Func func(in Input, output []string, opts config.Options) (*table.Table, Metadata, error)

// UnknownFunctionError reports a reference to a function name that was never
// registered for the run.
type UnknownFunctionError struct {
	Name      string
	Available []string
}

func (e *UnknownFunctionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("transform function %q is not defined; add it to the import section of the transform file", e.Name)
	}
	return fmt.Sprintf("transform function %q is not defined; currently defined: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// modules holds every compiled-in function module, keyed by module name.
var modules = map[string]map[string]Func{}

// RegisterModule makes a named group of functions available to the import
// section. Meant to be called from init; duplicate module names panic, since
// that is a programming error, not a configuration error.
func RegisterModule(module string, funcs map[string]Func) {
	if _, dup := modules[module]; dup {
		panic(fmt.Sprintf("registry: module %q registered twice", module))
	}
	modules[module] = funcs
}

// ModuleNames returns the registered module names, sorted.
func ModuleNames() []string {
	out := make([]string, 0, len(modules))
	for name := range modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Registry is the per-run capability table.
type Registry struct {
	funcs map[string]Func
	names []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{funcs: map[string]Func{}}
}

// Register adds a function under name. Later registrations of the same name
// replace earlier ones (the import section is processed in order).
func (r *Registry) Register(name string, fn Func) {
	if _, exists := r.funcs[name]; !exists {
		r.names = append(r.names, name)
	}
	r.funcs[name] = fn
}

// Import binds the functions selected by the transform file's import section
// into the registry. An unknown module or function name fails closed.
func (r *Registry) Import(imports []config.Import) error {
	for _, imp := range imports {
		mod, ok := modules[imp.Module]
		if !ok {
			return fmt.Errorf("unknown function module %q (available: %s)",
				imp.Module, strings.Join(ModuleNames(), ", "))
		}
		for _, name := range imp.Functions {
			fn, ok := mod[name]
			if !ok {
				return fmt.Errorf("module %q: %w", imp.Module,
					&UnknownFunctionError{Name: name, Available: sortedKeys(mod)})
			}
			r.Register(name, fn)
		}
	}
	return nil
}

// Lookup returns the function registered under name, or
// UnknownFunctionError.
func (r *Registry) Lookup(name string) (Func, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, &UnknownFunctionError{Name: name, Available: r.Names()}
	}
	return fn, nil
}

// Names returns the registered function names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func sortedKeys(m map[string]Func) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
