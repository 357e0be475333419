package framex

import "strings"

// ActionKind identifies a transformation step type.
type ActionKind string

const (
	ActionRenameColumn      ActionKind = "rename_column"
	ActionChangeType        ActionKind = "change_type"
	ActionFilter            ActionKind = "filter"
	ActionCreateColumn      ActionKind = "create_column"
	ActionDropColumns       ActionKind = "drop_columns"
	ActionMerge             ActionKind = "merge"
	ActionSort              ActionKind = "sort"
	ActionGroupAggregate    ActionKind = "group_aggregate"
	ActionRemoveDuplicates  ActionKind = "remove_duplicates"
	ActionFillMissing       ActionKind = "fill_missing"
	ActionAdjustColumnValue ActionKind = "adjust_column_value"
)

// ActionKinds lists every supported kind in UI order.
var ActionKinds = []ActionKind{
	ActionRenameColumn,
	ActionChangeType,
	ActionFilter,
	ActionCreateColumn,
	ActionDropColumns,
	ActionMerge,
	ActionSort,
	ActionGroupAggregate,
	ActionRemoveDuplicates,
	ActionFillMissing,
	ActionAdjustColumnValue,
}

// Action is one declarative transformation step. Only the fields relevant
// to its Kind are used; all parameters arrive as text and are parsed by
// the engine. The JSON field names match the persisted workflow format.
type Action struct {
	Kind  ActionKind `json:"type"`
	Group string     `json:"group"`

	OldName string `json:"old_name,omitempty"` // rename_column
	NewName string `json:"new_name,omitempty"` // rename_column

	Column  string `json:"column,omitempty"`   // change_type, filter, sort, fill_missing, adjust_column_value
	NewType string `json:"new_type,omitempty"` // change_type: string|int|float|datetime

	Values string `json:"values,omitempty"` // filter: comma-separated values to keep

	NewColumn string `json:"new_column,omitempty"` // create_column
	Formula   string `json:"formula,omitempty"`    // create_column, adjust_column_value

	Columns string `json:"columns,omitempty"` // drop_columns, remove_duplicates (comma-separated)

	RightGroup string `json:"right_df,omitempty"`   // merge: group to join with
	KeyColumn  string `json:"key_column,omitempty"` // merge

	Order string `json:"order,omitempty"` // sort: asc|desc

	GroupColumns string `json:"group_columns,omitempty"` // group_aggregate (comma-separated)
	AggColumn    string `json:"agg_column,omitempty"`    // group_aggregate
	AggFunction  string `json:"agg_function,omitempty"`  // group_aggregate: count|sum|mean|max|min

	Method    string `json:"method,omitempty"`     // fill_missing: value|forward|backward|mean
	FillValue string `json:"fill_value,omitempty"` // fill_missing with method=value
}

// splitList parses a comma-separated parameter into trimmed, non-empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ActionList is the user-visible ordered sequence of actions. Actions are
// immutable once added; the list itself supports the UI operations:
// append, reorder by swap, and remove by index.
type ActionList struct {
	actions []Action
}

// Append adds an action to the end of the list.
func (l *ActionList) Append(a Action) {
	l.actions = append(l.actions, a)
}

// Len returns the number of actions.
func (l *ActionList) Len() int { return len(l.actions) }

// All returns a copy of the ordered actions.
func (l *ActionList) All() []Action {
	return append([]Action(nil), l.actions...)
}

// At returns the action at index i.
func (l *ActionList) At(i int) Action { return l.actions[i] }

// MoveUp swaps the action at i with its predecessor. Out-of-range or
// first-position indexes are ignored.
func (l *ActionList) MoveUp(i int) {
	if i <= 0 || i >= len(l.actions) {
		return
	}
	l.actions[i-1], l.actions[i] = l.actions[i], l.actions[i-1]
}

// MoveDown swaps the action at i with its successor.
func (l *ActionList) MoveDown(i int) {
	if i < 0 || i >= len(l.actions)-1 {
		return
	}
	l.actions[i], l.actions[i+1] = l.actions[i+1], l.actions[i]
}

// Remove deletes the action at index i. Out-of-range indexes are ignored.
func (l *ActionList) Remove(i int) {
	if i < 0 || i >= len(l.actions) {
		return
	}
	l.actions = append(l.actions[:i], l.actions[i+1:]...)
}

// Clear removes all actions.
func (l *ActionList) Clear() { l.actions = nil }

// Replace swaps the whole sequence, as a workflow load does.
func (l *ActionList) Replace(actions []Action) {
	l.actions = append([]Action(nil), actions...)
}
