package framex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithGroups(t *testing.T) *Session {
	t.Helper()
	s := NewSession()

	sales := buildWorkbook(t, "Sheet1", [][]any{
		{"Customer_ID", "Product", "Quantity", "Unit_Price"},
		{1, "Widget", 2, 1.5},
		{2, "Gadget", 1, 10.0},
		{1, "Widget", 3, 1.5},
	})
	customers := buildWorkbook(t, "Sheet1", [][]any{
		{"Customer_ID", "Region"},
		{1, "North"},
		{2, "South"},
	})

	_, diags, err := s.CreateGroup("Sales", []Source{{Name: "sales.xlsx", Reader: sales}}, "Sheet1", 1, 1)
	require.NoError(t, err)
	require.Empty(t, diags)
	_, diags, err = s.CreateGroup("Customers", []Source{{Name: "customers.xlsx", Reader: customers}}, "Sheet1", 1, 1)
	require.NoError(t, err)
	require.Empty(t, diags)
	return s
}

func TestSession_CreateGroupRecordsPreset(t *testing.T) {
	s := sessionWithGroups(t)
	p, ok := s.Presets()["Sales"]
	require.True(t, ok)
	assert.Equal(t, GroupPreset{GroupName: "Sales", SheetName: "Sheet1", HeaderRow: 1, HeaderColumn: 1}, p)
}

func TestSession_CreateGroupFailureCreatesNothing(t *testing.T) {
	s := NewSession()
	_, _, err := s.CreateGroup("Bad", []Source{{Name: "b", Reader: nilReader{}}}, "Sheet1", 1, 1)
	require.Error(t, err)
	_, err = s.Registry().Resolve("Bad")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	_, ok := s.Presets()["Bad"]
	assert.False(t, ok)
}

type nilReader struct{}

func (nilReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestSession_DeleteGroupPurgesEverything(t *testing.T) {
	s := sessionWithGroups(t)
	s.DeleteGroup("Sales")
	_, err := s.Registry().Resolve("Sales")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	_, ok := s.Presets()["Sales"]
	assert.False(t, ok)
}

func TestSession_ProcessAll_EndToEnd(t *testing.T) {
	s := sessionWithGroups(t)
	s.Actions().Append(Action{Kind: ActionCreateColumn, Group: "Sales", NewColumn: "Total", Formula: "Quantity * Unit_Price"})
	s.Actions().Append(Action{Kind: ActionGroupAggregate, Group: "Sales", GroupColumns: "Product", AggColumn: "Total", AggFunction: "sum"})

	results, diags, err := s.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, diags)

	sales, ok := results["Sales"]
	require.True(t, ok)
	require.Equal(t, 2, sales.NumRows())
	assert.Equal(t, []string{"Product", "Total"}, sales.Columns)
	assert.Equal(t, Str("Gadget"), sales.Rows[0].Get("Product"))
	assert.Equal(t, Float(10), sales.Rows[0].Get("Total"))
	assert.Equal(t, Str("Widget"), sales.Rows[1].Get("Product"))
	assert.Equal(t, Float(7.5), sales.Rows[1].Get("Total"))

	// Results are committed to the registry as processed tables.
	got, ok := s.Registry().Processed("Sales")
	require.True(t, ok)
	assert.Equal(t, 2, got.NumRows())
}

func TestSession_ProcessAll_LaterGroupSeesEarlierOutput(t *testing.T) {
	s := sessionWithGroups(t)
	// First shrink Customers to region North, then merge Sales against it:
	// the merge must see the processed (filtered) Customers table.
	s.Actions().Append(Action{Kind: ActionFilter, Group: "Customers", Column: "Region", Values: "North"})
	s.Actions().Append(Action{Kind: ActionMerge, Group: "Sales", RightGroup: "Customers", KeyColumn: "Customer_ID"})

	results, diags, err := s.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, diags)

	sales := results["Sales"]
	require.True(t, sales.HasColumn("Region"))
	var regions []Value
	for _, r := range sales.Rows {
		regions = append(regions, r.Get("Region"))
	}
	// Customer 2 is South and was filtered out of the right table,
	// so its row is preserved with a null region.
	assert.Equal(t, []Value{Str("North"), Null(), Str("North")}, regions)
}

func TestSession_ProcessAll_UnknownGroupWarns(t *testing.T) {
	s := sessionWithGroups(t)
	s.Actions().Append(Action{Kind: ActionSort, Group: "Ghost", Column: "x", Order: "asc"})

	results, diags, err := s.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.NotContains(t, results, "Ghost")
}

func TestSession_ProcessAll_CancellationLeavesRegistryClean(t *testing.T) {
	s := sessionWithGroups(t)
	s.Actions().Append(Action{Kind: ActionSort, Group: "Sales", Column: "Customer_ID", Order: "asc"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.ProcessAll(ctx)
	require.Error(t, err)

	_, ok := s.Registry().Processed("Sales")
	assert.False(t, ok)
}

func TestSession_ProcessAll_RecomputesProcessedWholesale(t *testing.T) {
	s := sessionWithGroups(t)
	s.Actions().Append(Action{Kind: ActionFilter, Group: "Sales", Column: "Product", Values: "Widget"})

	_, _, err := s.ProcessAll(context.Background())
	require.NoError(t, err)

	// Second run with a different action list fully replaces processed state.
	s.Actions().Clear()
	s.Actions().Append(Action{Kind: ActionFilter, Group: "Customers", Column: "Region", Values: "South"})
	_, _, err = s.ProcessAll(context.Background())
	require.NoError(t, err)

	_, ok := s.Registry().Processed("Sales")
	assert.False(t, ok)
	got, ok := s.Registry().Processed("Customers")
	require.True(t, ok)
	assert.Equal(t, 1, got.NumRows())
}

func TestSession_WorkflowRoundTripThroughSession(t *testing.T) {
	s := sessionWithGroups(t)
	s.Actions().Append(Action{Kind: ActionSort, Group: "Sales", Column: "Quantity", Order: "desc"})

	wf := s.ExportWorkflow("flow")
	assert.Equal(t, 1, wf.TotalActions)
	assert.Contains(t, wf.GroupPresets, "Sales")
	assert.Contains(t, wf.GroupPresets, "Customers")

	other := NewSession()
	other.LoadWorkflow(wf)
	assert.Equal(t, 1, other.Actions().Len())
	assert.Equal(t, wf.Actions[0], other.Actions().At(0))
	assert.Contains(t, other.Presets(), "Sales")
}

func TestActionList_ReorderAndRemove(t *testing.T) {
	var l ActionList
	l.Append(Action{Kind: ActionSort, Column: "a"})
	l.Append(Action{Kind: ActionFilter, Column: "b"})
	l.Append(Action{Kind: ActionRenameColumn, OldName: "c"})

	l.MoveDown(0)
	assert.Equal(t, ActionFilter, l.At(0).Kind)
	assert.Equal(t, ActionSort, l.At(1).Kind)

	l.MoveUp(2)
	assert.Equal(t, ActionRenameColumn, l.At(1).Kind)

	l.Remove(0)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, ActionRenameColumn, l.At(0).Kind)

	// Out-of-range operations are ignored.
	l.MoveUp(0)
	l.MoveDown(5)
	l.Remove(-1)
	assert.Equal(t, 2, l.Len())
}
