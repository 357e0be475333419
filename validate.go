package framex

import (
	"fmt"
)

// ValidationIssue represents a single problem found while validating a
// workflow document before execution.
type ValidationIssue struct {
	Severity Severity
	Index    int // action index (0-based), or -1 for document-level issues
	Message  string
}

// String formats the issue as "[ERROR] action 3: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	if v.Index < 0 {
		return fmt.Sprintf("[%s] workflow: %s", sev, v.Message)
	}
	return fmt.Sprintf("[%s] action %d: %s", sev, v.Index+1, v.Message)
}

func issueErr(index int, format string, args ...any) ValidationIssue {
	return ValidationIssue{Severity: SeverityError, Index: index, Message: fmt.Sprintf(format, args...)}
}

func issueWarn(index int, format string, args ...any) ValidationIssue {
	return ValidationIssue{Severity: SeverityWarning, Index: index, Message: fmt.Sprintf(format, args...)}
}

var knownKinds = func() map[ActionKind]bool {
	m := make(map[ActionKind]bool, len(ActionKinds))
	for _, k := range ActionKinds {
		m[k] = true
	}
	return m
}()

// ValidateWorkflow performs static checks on a workflow without needing
// any tables loaded: known action kinds, required parameters, enum
// values, and formula syntax. It is an optional pre-flight; execution
// still validates column and group references at run time.
func ValidateWorkflow(w *Workflow) []ValidationIssue {
	var issues []ValidationIssue

	if w.Version != "" && w.Version != WorkflowVersion {
		issues = append(issues, issueWarn(-1, "unknown version %q, loaded permissively", w.Version))
	}
	if w.TotalActions != 0 && w.TotalActions != len(w.Actions) {
		issues = append(issues, issueWarn(-1, "total_actions says %d but document has %d actions", w.TotalActions, len(w.Actions)))
	}

	for i, a := range w.Actions {
		issues = append(issues, validateAction(i, a)...)
	}
	return issues
}

func validateAction(i int, a Action) []ValidationIssue {
	var issues []ValidationIssue

	if !knownKinds[a.Kind] {
		return append(issues, issueErr(i, "unknown action kind %q", a.Kind))
	}
	if a.Group == "" {
		issues = append(issues, issueErr(i, "%s: missing target group", a.Kind))
	}

	requireParam := func(name, value string) {
		if value == "" {
			issues = append(issues, issueErr(i, "%s: missing %s", a.Kind, name))
		}
	}
	requireEnum := func(name, value string, allowed ...string) {
		for _, ok := range allowed {
			if value == ok {
				return
			}
		}
		issues = append(issues, issueErr(i, "%s: %s must be one of %v, got %q", a.Kind, name, allowed, value))
	}
	checkFormula := func() {
		if a.Formula == "" {
			issues = append(issues, issueErr(i, "%s: missing formula", a.Kind))
			return
		}
		if err := CompileFormula(a.Formula); err != nil {
			issues = append(issues, issueErr(i, "%s: formula does not compile: %v", a.Kind, err))
		}
	}

	switch a.Kind {
	case ActionRenameColumn:
		requireParam("old_name", a.OldName)
		requireParam("new_name", a.NewName)
	case ActionChangeType:
		requireParam("column", a.Column)
		requireEnum("new_type", a.NewType, "string", "int", "float", "datetime")
	case ActionFilter:
		requireParam("column", a.Column)
		requireParam("values", a.Values)
	case ActionCreateColumn:
		requireParam("new_column", a.NewColumn)
		checkFormula()
	case ActionDropColumns:
		requireParam("columns", a.Columns)
	case ActionMerge:
		requireParam("right_df", a.RightGroup)
		requireParam("key_column", a.KeyColumn)
	case ActionSort:
		requireParam("column", a.Column)
		requireEnum("order", a.Order, "asc", "desc")
	case ActionGroupAggregate:
		requireParam("group_columns", a.GroupColumns)
		requireParam("agg_column", a.AggColumn)
		requireEnum("agg_function", a.AggFunction, "count", "sum", "mean", "max", "min")
	case ActionRemoveDuplicates:
		// columns is optional: empty means the full row
	case ActionFillMissing:
		requireParam("column", a.Column)
		requireEnum("method", a.Method, "value", "forward", "backward", "mean")
	case ActionAdjustColumnValue:
		requireParam("column", a.Column)
		checkFormula()
	}
	return issues
}
