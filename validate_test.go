package framex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkflow_CleanDocument(t *testing.T) {
	wf := NewWorkflow("w", []Action{
		{Kind: ActionRenameColumn, Group: "g", OldName: "a", NewName: "b"},
		{Kind: ActionCreateColumn, Group: "g", NewColumn: "c", Formula: "a * 2"},
		{Kind: ActionRemoveDuplicates, Group: "g"},
	}, nil)
	assert.Empty(t, ValidateWorkflow(wf))
}

func TestValidateWorkflow_UnknownKind(t *testing.T) {
	wf := &Workflow{Version: WorkflowVersion, Actions: []Action{{Kind: "transmogrify", Group: "g"}}}
	issues := ValidateWorkflow(wf)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].String(), "transmogrify")
	assert.Contains(t, issues[0].String(), "action 1")
}

func TestValidateWorkflow_MissingParamsAndBadEnums(t *testing.T) {
	wf := &Workflow{Version: WorkflowVersion, Actions: []Action{
		{Kind: ActionRenameColumn, Group: "g"},                                    // missing old/new name
		{Kind: ActionChangeType, Group: "g", Column: "c", NewType: "complex"},     // bad enum
		{Kind: ActionSort, Group: "g", Column: "c", Order: "sideways"},            // bad enum
		{Kind: ActionFillMissing, Group: "g", Column: "c", Method: "interpolate"}, // bad enum
		{Kind: ActionFilter, Group: "g", Column: "c", Values: "x"},                // fine
	}}
	issues := ValidateWorkflow(wf)
	require.Len(t, issues, 5)
	for _, issue := range issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
}

func TestValidateWorkflow_FormulaSyntax(t *testing.T) {
	wf := &Workflow{Version: WorkflowVersion, Actions: []Action{
		{Kind: ActionCreateColumn, Group: "g", NewColumn: "c", Formula: "a +"},
		{Kind: ActionAdjustColumnValue, Group: "g", Column: "c"},
	}}
	issues := ValidateWorkflow(wf)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "does not compile")
	assert.Contains(t, issues[1].Message, "missing formula")
}

func TestValidateWorkflow_DocumentLevelWarnings(t *testing.T) {
	wf := &Workflow{
		Version:      "2.0",
		TotalActions: 7,
		Actions:      []Action{{Kind: ActionRemoveDuplicates, Group: "g"}},
	}
	issues := ValidateWorkflow(wf)
	require.Len(t, issues, 2)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].String(), "workflow")
	assert.Equal(t, SeverityWarning, issues[1].Severity)
	assert.Contains(t, issues[1].Message, "total_actions")
}

func TestValidateWorkflow_MissingGroup(t *testing.T) {
	wf := &Workflow{Version: WorkflowVersion, Actions: []Action{
		{Kind: ActionSort, Column: "c", Order: "asc"},
	}}
	issues := ValidateWorkflow(wf)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "group")
}
