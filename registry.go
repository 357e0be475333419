package framex

import (
	"errors"
	"sort"
)

// ErrGroupNotFound is returned when a registry lookup misses both the
// processed and source namespaces.
var ErrGroupNotFound = errors.New("group not found")

// Registry maps group names to their source and most-recently-processed
// tables. Resolution prefers processed over source, so a merge that
// references another group sees that group's latest engine output.
// A Registry belongs to one session; there is no process-wide instance.
type Registry struct {
	source    map[string]*Table
	processed map[string]*Table
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		source:    make(map[string]*Table),
		processed: make(map[string]*Table),
	}
}

// Resolve returns the table for a group, preferring the processed table.
func (r *Registry) Resolve(name string) (*Table, error) {
	if t, ok := r.processed[name]; ok {
		return t, nil
	}
	if t, ok := r.source[name]; ok {
		return t, nil
	}
	return nil, ErrGroupNotFound
}

// Source returns the as-ingested table for a group.
func (r *Registry) Source(name string) (*Table, bool) {
	t, ok := r.source[name]
	return t, ok
}

// Processed returns the latest engine output for a group.
func (r *Registry) Processed(name string) (*Table, bool) {
	t, ok := r.processed[name]
	return t, ok
}

// PutSource stores an as-ingested table under a group name.
func (r *Registry) PutSource(name string, t *Table) {
	r.source[name] = t
}

// PutProcessed stores an engine result under a group name.
func (r *Registry) PutProcessed(name string, t *Table) {
	r.processed[name] = t
}

// DeleteSource removes a group's source table and purges any processed
// entry for it.
func (r *Registry) DeleteSource(name string) {
	delete(r.source, name)
	delete(r.processed, name)
}

// ClearProcessed drops all processed tables. Processed tables are fully
// recomputed on every engine run across groups.
func (r *Registry) ClearProcessed() {
	r.processed = make(map[string]*Table)
}

// Groups returns the source group names in sorted order.
func (r *Registry) Groups() []string {
	names := make([]string, 0, len(r.source))
	for name := range r.source {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fork returns a registry sharing this registry's source tables with an
// empty processed namespace. A session run works against a fork and
// commits results back only on completion, so cancellation mid-run never
// leaves the live registry partially updated.
func (r *Registry) fork() *Registry {
	f := NewRegistry()
	for name, t := range r.source {
		f.source[name] = t
	}
	return f
}

// adoptProcessed installs another registry's processed tables wholesale.
func (r *Registry) adoptProcessed(from *Registry) {
	r.processed = make(map[string]*Table, len(from.processed))
	for name, t := range from.processed {
		r.processed[name] = t
	}
}
