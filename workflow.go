package framex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// WorkflowVersion is the document version this package writes.
const WorkflowVersion = "1.0"

// ErrInvalidWorkflow is returned when a persisted workflow document does
// not have the expected shape. Loading aborts without partial mutation.
var ErrInvalidWorkflow = errors.New("invalid workflow document")

// GroupPreset records the ingestion settings a group was created with, so
// a reloaded workflow can recreate the group from fresh files.
type GroupPreset struct {
	GroupName    string `json:"group_name"`
	SheetName    string `json:"sheet_name"`
	HeaderRow    int    `json:"header_row"`
	HeaderColumn int    `json:"header_column"`
}

// Workflow is the persisted form of an action sequence plus optional
// per-group ingestion presets. TotalActions and GroupsUsed are
// informational and not re-validated on load.
type Workflow struct {
	WorkflowName string                 `json:"workflow_name"`
	Actions      []Action               `json:"actions"`
	GroupPresets map[string]GroupPreset `json:"group_presets,omitempty"`
	CreatedDate  string                 `json:"created_date"`
	TotalActions int                    `json:"total_actions"`
	GroupsUsed   []string               `json:"groups_used"`
	Version      string                 `json:"version"`
}

// NewWorkflow builds a workflow document from an action sequence and
// presets. GroupsUsed is derived from the actions; the name defaults to a
// timestamped one when empty, matching the exported-file convention.
func NewWorkflow(name string, actions []Action, presets map[string]GroupPreset) *Workflow {
	now := time.Now()
	if name == "" {
		name = "workflow_" + now.Format("20060102_150405")
	}
	used := make(map[string]bool)
	for _, a := range actions {
		if a.Group != "" {
			used[a.Group] = true
		}
	}
	groups := make([]string, 0, len(used))
	for g := range used {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var presetCopy map[string]GroupPreset
	if len(presets) > 0 {
		presetCopy = make(map[string]GroupPreset, len(presets))
		for k, v := range presets {
			presetCopy[k] = v
		}
	}

	return &Workflow{
		WorkflowName: name,
		Actions:      append([]Action(nil), actions...),
		GroupPresets: presetCopy,
		CreatedDate:  now.Format(time.RFC3339),
		TotalActions: len(actions),
		GroupsUsed:   groups,
		Version:      WorkflowVersion,
	}
}

// Write serializes the workflow as indented JSON.
func (w *Workflow) Write(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w); err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	return nil
}

// rawWorkflow distinguishes a missing actions field from an empty one.
type rawWorkflow struct {
	WorkflowName string                 `json:"workflow_name"`
	Actions      *[]Action              `json:"actions"`
	GroupPresets map[string]GroupPreset `json:"group_presets"`
	CreatedDate  string                 `json:"created_date"`
	TotalActions int                    `json:"total_actions"`
	GroupsUsed   []string               `json:"groups_used"`
	Version      string                 `json:"version"`
}

// LoadWorkflow parses a persisted workflow document. A document without
// an actions field is rejected with ErrInvalidWorkflow. Unknown versions
// are accepted permissively; callers may warn on them.
func LoadWorkflow(r io.Reader) (*Workflow, error) {
	var raw rawWorkflow
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}
	if raw.Actions == nil {
		return nil, fmt.Errorf("%w: missing actions field", ErrInvalidWorkflow)
	}
	return &Workflow{
		WorkflowName: raw.WorkflowName,
		Actions:      *raw.Actions,
		GroupPresets: raw.GroupPresets,
		CreatedDate:  raw.CreatedDate,
		TotalActions: raw.TotalActions,
		GroupsUsed:   raw.GroupsUsed,
		Version:      raw.Version,
	}, nil
}
