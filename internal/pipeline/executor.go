package pipeline

import (
	"time"

	"transform/internal/config"
	"transform/internal/metrics"
	"transform/internal/registry"
	"transform/internal/table"
)

// Run executes the configured transform steps in declared order against the
// namespace, threading metadata forward. The first failing step aborts the
// whole run; a broken step invalidates every downstream reference, so there
// is no partial recovery.
func (e *Engine) Run(job string, steps []config.Step) error {
	for i, step := range steps {
		start := time.Now()
		err := e.runStep(i+1, step)
		metrics.RecordStep(job, step.Function, err, time.Since(start))
		if err != nil {
			return err
		}
	}
	return nil
}

// runStep executes one step: resolve input, dispatch, validate declared
// output, merge the result, record metadata. n is 1-based.
func (e *Engine) runStep(n int, step config.Step) error {
	fn, err := e.registry.Lookup(step.Function)
	if err != nil {
		return &StepError{Step: n, Function: step.Function, Err: err}
	}

	in, err := e.resolveInput(step)
	if err != nil {
		return &StepError{Step: n, Function: step.Function, Err: err}
	}

	result, md, err := fn(in, append([]string(nil), step.Output...), step.Options)
	if err != nil {
		return &StepError{Step: n, Function: step.Function, Err: err}
	}

	if len(md) > 0 {
		e.logf("transformation #%d (%s): metadata %v", n, step.Function, md)
		e.recordMetadata(step.Function, md)
	}

	if len(step.Output) > 0 {
		if err := checkDeclaredOutput(n, step, result); err != nil {
			return err
		}
	}

	// The store, not the single step result, decides the merge mode: a
	// function that asked for clear_input_data keeps it for its source key.
	replace := e.Metadata(step.Function).ClearInputData()

	if result == nil || result.Empty() {
		if replace {
			e.ns = table.New()
		}
		return nil
	}

	e.logf("transformation #%d (%s): produced fields %v (%d rows)", n, step.Function, result.Columns(), result.NumRows())

	err = e.Merge(step.Function, "data", result, MergeOptions{Replace: replace})
	if err != nil {
		return &StepError{Step: n, Function: step.Function, Err: err}
	}
	return nil
}

// resolveInput prepares a step's registry.Input before dispatch, so
// functions never inspect the polymorphic configuration themselves.
func (e *Engine) resolveInput(step config.Step) (registry.Input, error) {
	in := registry.Input{Snapshots: append([]registry.Snapshot(nil), e.snapshots...)}

	si := step.Input
	switch {
	case si.IsPositional():
		view, err := e.ns.Project(si.Fields)
		if err != nil {
			return registry.Input{}, err
		}
		in.Fields = append([]string(nil), si.Fields...)
		in.Table = view

	case si.IsStructured():
		in.Params = si.Params
		source, entry, fieldNames, ok := si.SourceRef()
		if !ok {
			// Fully custom parameter schema: pass the mapping through
			// unresolved, with the live namespace as the ambient view.
			in.Table = e.ns
			break
		}
		snap, err := e.View(source, entry)
		if err != nil {
			return registry.Input{}, err
		}
		if len(fieldNames) > 0 {
			view, err := snap.Project(fieldNames)
			if err != nil {
				return registry.Input{}, err
			}
			in.Fields = fieldNames
			in.Table = view
		} else {
			in.Table = snap
		}

	default:
		in.Table = e.ns
	}
	return in, nil
}

// checkDeclaredOutput enforces the configuration contract: when a step
// declares output names, the function must produce exactly those names, so
// later steps and output specs can reference fields by their configured
// names.
func checkDeclaredOutput(n int, step config.Step, result *table.Table) error {
	var produced []string
	if result != nil {
		produced = result.Columns()
	}

	have := make(map[string]struct{}, len(produced))
	for _, name := range produced {
		have[name] = struct{}{}
	}
	want := make(map[string]struct{}, len(step.Output))
	for _, name := range step.Output {
		want[name] = struct{}{}
	}

	var missing, extra []string
	for _, name := range step.Output {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	for _, name := range produced {
		if _, ok := want[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return &OutputMismatchError{
		Step:     n,
		Function: step.Function,
		Expected: append([]string(nil), step.Output...),
		Produced: produced,
		Missing:  missing,
		Extra:    extra,
	}
}
