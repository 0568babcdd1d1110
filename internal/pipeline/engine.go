// Package pipeline implements the transformation pipeline engine: it merges
// named data sources into a single evolving field namespace, executes the
// configured transform steps in order against that namespace, accumulates
// step metadata, and resolves output and graph field lists once all steps
// have run.
//
// The field namespace is an explicit, single-owner mutable table threaded
// through the Engine; it is never global. Every table that enters the
// namespace is also captured as an immutable snapshot under its
// (source, entry) key first, so later steps and output specs can reference
// pre-merge history safely.
package pipeline

import (
	"log"

	"transform/internal/registry"
	"transform/internal/table"
	"transform/internal/template"
)

// Engine owns the field namespace for the duration of one pipeline run.
// It is not safe for concurrent use; execution is strictly sequential, since
// each step may depend on the exact cumulative namespace state left by all
// prior steps.
type Engine struct {
	// Quiet suppresses informational log lines. Errors are returned, never
	// logged-and-swallowed.
	Quiet bool

	registry  *registry.Registry
	ns        *table.Table
	snapshots []registry.Snapshot
	index     map[string]map[string]*table.Table
	meta      map[string]registry.Metadata
	subs      map[string]any
}

// New returns an engine with an empty namespace backed by the given function
// registry.
func New(reg *registry.Registry) *Engine {
	return &Engine{
		registry: reg,
		ns:       table.New(),
		index:    map[string]map[string]*table.Table{},
		meta:     map[string]registry.Metadata{},
		subs:     map[string]any{},
	}
}

// Namespace returns the live field namespace. Callers must treat it as
// read-only; the engine is its single writer.
func (e *Engine) Namespace() *table.Table { return e.ns }

// Substitutions returns the global variable substitution table accumulated
// from step metadata. Read-only for callers.
func (e *Engine) Substitutions() map[string]any { return e.subs }

// Metadata returns the metadata recorded under the given source or function
// key, or nil. The executor consults it for the clear_input_data decision at
// merge time, so the store is authoritative, not the single step result.
func (e *Engine) Metadata(key string) registry.Metadata { return e.meta[key] }

// View resolves a (source, entry) reference to a table view: the live
// namespace when both are empty, otherwise the named immutable snapshot.
func (e *Engine) View(source, entry string) (*table.Table, error) {
	if source == "" && entry == "" {
		return e.ns, nil
	}
	if entries, ok := e.index[source]; ok {
		if t, ok := entries[entry]; ok {
			return t, nil
		}
	}
	return nil, &UnknownDataSourceError{Source: source, Entry: entry, Known: e.knownSources()}
}

func (e *Engine) knownSources() []string {
	out := make([]string, 0, len(e.snapshots))
	for _, s := range e.snapshots {
		out = append(out, s.Source+"/"+s.Entry)
	}
	return out
}

// register captures t as the immutable snapshot for (source, entry).
// Re-registering the same key replaces the old snapshot: a function that
// runs twice produces a fresh source, and references always see the latest
// one. The snapshot list keeps registration order for functions that fold
// over all sources.
func (e *Engine) register(source, entry string, t *table.Table) {
	if e.index[source] == nil {
		e.index[source] = map[string]*table.Table{}
	}
	if _, replaced := e.index[source][entry]; replaced {
		for i := range e.snapshots {
			if e.snapshots[i].Source == source && e.snapshots[i].Entry == entry {
				e.snapshots = append(e.snapshots[:i], e.snapshots[i+1:]...)
				break
			}
		}
	}
	e.index[source][entry] = t
	e.snapshots = append(e.snapshots, registry.Snapshot{Source: source, Entry: entry, Table: t})
}

// recordMetadata folds md into the metadata store under key and accumulates
// any variable substitutions into the global table, later keys winning.
func (e *Engine) recordMetadata(key string, md registry.Metadata) {
	if len(md) == 0 {
		return
	}
	e.meta[key] = registry.Metadata(template.Merge(e.meta[key], md))
	if subs := md.VariableSubstitutions(); len(subs) > 0 {
		e.subs = template.Merge(e.subs, subs)
		e.logf("substitutions: %s", template.Describe(e.subs))
	}
}

func (e *Engine) logf(format string, args ...any) {
	if e.Quiet {
		return
	}
	log.Printf(format, args...)
}
