package framex

import (
	"context"
	"fmt"
)

// Session is the explicit per-user context: one registry, one action
// list, one preset map. Nothing in this package holds process-wide state;
// concurrent users each get their own Session with no sharing.
type Session struct {
	opts     *Options
	registry *Registry
	actions  ActionList
	presets  map[string]GroupPreset
	ingestor *Ingestor
	engine   *Engine
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Session{
		opts:     o,
		registry: NewRegistry(),
		presets:  make(map[string]GroupPreset),
		ingestor: &Ingestor{opts: o},
		engine:   &Engine{opts: o},
	}
}

// Registry exposes the session's table registry.
func (s *Session) Registry() *Registry { return s.registry }

// Actions exposes the session's mutable action list.
func (s *Session) Actions() *ActionList { return &s.actions }

// Presets returns a copy of the recorded group presets.
func (s *Session) Presets() map[string]GroupPreset {
	out := make(map[string]GroupPreset, len(s.presets))
	for k, v := range s.presets {
		out[k] = v
	}
	return out
}

// CreateGroup ingests the sources into a combined table, stores it under
// the group name, and records the ingestion preset. On total ingestion
// failure no group is created and the error is returned alongside the
// per-source diagnostics.
func (s *Session) CreateGroup(name string, sources []Source, sheet string, headerRow, headerCol int) (*Table, []Diagnostic, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("group name must not be empty")
	}
	t, diags, err := s.ingestor.Combine(sources, sheet, headerRow, headerCol)
	if err != nil {
		return nil, diags, fmt.Errorf("create group %q: %w", name, err)
	}
	s.registry.PutSource(name, t)
	s.presets[name] = GroupPreset{
		GroupName:    name,
		SheetName:    sheet,
		HeaderRow:    headerRow,
		HeaderColumn: headerCol,
	}
	s.opts.logger.Info("group created", "group", name, "rows", t.NumRows(), "columns", t.NumCols())
	return t, diags, nil
}

// DeleteGroup removes a group's source table, its processed table, and
// its derived preset.
func (s *Session) DeleteGroup(name string) {
	s.registry.DeleteSource(name)
	delete(s.presets, name)
}

// ExportWorkflow captures the current action list and presets as a
// persisted workflow document.
func (s *Session) ExportWorkflow(name string) *Workflow {
	return NewWorkflow(name, s.actions.All(), s.presets)
}

// LoadWorkflow replaces the live action list with the document's actions
// verbatim and merges the document's presets. No validation against
// currently loaded tables is performed; validation happens at engine
// execution. Unknown document versions are accepted with a warning log.
func (s *Session) LoadWorkflow(w *Workflow) {
	if w.Version != "" && w.Version != WorkflowVersion {
		s.opts.logger.Warn("loading workflow with unknown version", "version", w.Version)
	}
	s.actions.Replace(w.Actions)
	for name, p := range w.GroupPresets {
		s.presets[name] = p
	}
}

// ProcessAll runs the engine over every group referenced by the action
// list, in first-reference order, and returns the processed tables. Later
// groups' merges see earlier groups' processed output. Results commit to
// the registry only when the whole run completes: a cancellation aborts
// the run with the registry untouched.
func (s *Session) ProcessAll(ctx context.Context) (map[string]*Table, []Diagnostic, error) {
	actions := s.actions.All()

	// Bucket actions by target group, preserving both group first-reference
	// order and within-group action order.
	var groupOrder []string
	grouped := make(map[string][]Action)
	for _, a := range actions {
		if _, ok := grouped[a.Group]; !ok {
			groupOrder = append(groupOrder, a.Group)
		}
		grouped[a.Group] = append(grouped[a.Group], a)
	}

	run := s.registry.fork()
	results := make(map[string]*Table, len(groupOrder))
	var diags []Diagnostic

	for _, group := range groupOrder {
		if err := ctx.Err(); err != nil {
			return nil, diags, fmt.Errorf("processing cancelled: %w", err)
		}
		src, ok := run.Source(group)
		if !ok {
			diags = append(diags, warnf("process", "group %q has actions but no table", group))
			continue
		}
		result, runDiags := s.engine.Apply(ctx, src, grouped[group], run)
		diags = append(diags, runDiags...)
		if err := ctx.Err(); err != nil {
			return nil, diags, fmt.Errorf("processing cancelled: %w", err)
		}
		run.PutProcessed(group, result)
		results[group] = result
	}

	s.registry.adoptProcessed(run)
	s.opts.logger.Info("processing completed", "groups", len(results), "diagnostics", len(diags))
	return results, diags, nil
}
