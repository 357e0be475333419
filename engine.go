package framex

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Engine applies an ordered sequence of actions to a table, consulting a
// registry of named tables for merges. Execution is fail-soft: a missing
// column or group skips the action with a warning, and a formula failure
// discards only that action's effect. The engine always returns a result
// table together with the diagnostics collected along the way.
type Engine struct {
	opts *Options
}

// NewEngine creates an action engine.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Engine{opts: o}
}

// Apply executes actions strictly in order. Each action's output becomes
// the next action's input; a failing action yields a diagnostic and the
// pre-action table flows unchanged into the next step. Apply returns early
// with the table as of the last completed action if ctx is cancelled.
func (e *Engine) Apply(ctx context.Context, t *Table, actions []Action, reg *Registry) (*Table, []Diagnostic) {
	result := t.Clone()
	var diags []Diagnostic

	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			diags = append(diags, errorf(string(a.Kind), "run cancelled before step %d: %v", i+1, err))
			return result, diags
		}
		next, stepDiags := e.applyOne(result, a, reg)
		diags = append(diags, stepDiags...)
		if next != nil {
			result = next
		}
		e.opts.logger.Debug("applied action",
			slog.Int("step", i+1),
			slog.String("kind", string(a.Kind)),
			slog.Int("rows", result.NumRows()),
			slog.Int("diagnostics", len(stepDiags)),
		)
	}
	return result, diags
}

// applyOne dispatches a single action. A nil table return means the
// action was skipped and the input flows through unchanged.
func (e *Engine) applyOne(t *Table, a Action, reg *Registry) (*Table, []Diagnostic) {
	switch a.Kind {
	case ActionRenameColumn:
		return e.renameColumn(t, a)
	case ActionChangeType:
		return e.changeType(t, a)
	case ActionFilter:
		return e.filter(t, a)
	case ActionCreateColumn:
		return e.createColumn(t, a, a.NewColumn)
	case ActionDropColumns:
		return e.dropColumns(t, a)
	case ActionMerge:
		return e.merge(t, a, reg)
	case ActionSort:
		return e.sortRows(t, a)
	case ActionGroupAggregate:
		return e.groupAggregate(t, a)
	case ActionRemoveDuplicates:
		return e.removeDuplicates(t, a)
	case ActionFillMissing:
		return e.fillMissing(t, a)
	case ActionAdjustColumnValue:
		if !t.HasColumn(a.Column) {
			return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for adjustment", a.Column)}
		}
		return e.createColumn(t, a, a.Column)
	default:
		return nil, []Diagnostic{warnf(string(a.Kind), "unknown action kind")}
	}
}

func (e *Engine) renameColumn(t *Table, a Action) (*Table, []Diagnostic) {
	if !t.HasColumn(a.OldName) {
		return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for renaming", a.OldName)}
	}
	out := t.Clone()
	for i, c := range out.Columns {
		if c == a.OldName {
			out.Columns[i] = a.NewName
			break
		}
	}
	for _, r := range out.Rows {
		r[a.NewName] = r.Get(a.OldName)
		if a.OldName != a.NewName {
			delete(r, a.OldName)
		}
	}
	return out, nil
}

func (e *Engine) changeType(t *Table, a Action) (*Table, []Diagnostic) {
	if !t.HasColumn(a.Column) {
		return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for type change", a.Column)}
	}
	switch a.NewType {
	case "int", "float", "string", "datetime":
	default:
		return nil, []Diagnostic{warnf(string(a.Kind), "unknown target type %q", a.NewType)}
	}
	out := t.Clone()
	for _, r := range out.Rows {
		r[a.Column] = coerce(r.Get(a.Column), a.NewType)
	}
	return out, nil
}

// coerce converts a value to the target type. Values that cannot be
// coerced become null; this is lossy but never an error.
func coerce(v Value, target string) Value {
	if v.IsNull() {
		return v
	}
	switch target {
	case "int":
		if f, ok := v.Float64(); ok {
			return Int(int64(f))
		}
		return Null()
	case "float":
		if f, ok := v.Float64(); ok {
			return Float(f)
		}
		return Null()
	case "string":
		return Str(v.Text())
	case "datetime":
		if _, ok := v.TimeValue(); ok {
			return v
		}
		if ts, ok := parseTime(v.Text()); ok {
			return Time(ts)
		}
		return Null()
	default:
		return Null()
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/06 15:04",
	"01-02-06",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// filter keeps rows whose column value, compared as text, is in the value
// set. Text comparison is used even for numeric columns; this mirrors the
// documented behavior and is intentional.
func (e *Engine) filter(t *Table, a Action) (*Table, []Diagnostic) {
	if !t.HasColumn(a.Column) {
		return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for filtering", a.Column)}
	}
	keep := make(map[string]bool)
	for _, v := range splitList(a.Values) {
		keep[v] = true
	}
	out := NewTable(t.Columns...)
	for _, r := range t.Rows {
		if keep[r.Get(a.Column).Text()] {
			out.AppendRow(r.Clone())
		}
	}
	return out, nil
}

// createColumn evaluates the formula once per row and assigns the result
// to dest (created or overwritten). Any row's evaluation failure aborts
// only this action: an error diagnostic is recorded and the input table
// flows on unchanged.
func (e *Engine) createColumn(t *Table, a Action, dest string) (*Table, []Diagnostic) {
	values := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		env := make(map[string]any, len(r))
		for k, v := range r {
			env[k] = v.Any()
		}
		result, err := e.opts.evaluator.EvaluateRow(a.Formula, env)
		if err != nil {
			return nil, []Diagnostic{errorf(string(a.Kind), "column %q: %v", dest, err)}
		}
		values[i] = FromAny(result)
	}
	out := t.Clone()
	out.AddColumn(dest)
	for i, r := range out.Rows {
		r[dest] = values[i]
	}
	return out, nil
}

func (e *Engine) dropColumns(t *Table, a Action) (*Table, []Diagnostic) {
	var present []string
	for _, name := range splitList(a.Columns) {
		if t.HasColumn(name) {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil, []Diagnostic{warnf(string(a.Kind), "none of the specified columns (%s) found for dropping", a.Columns)}
	}
	out := t.Clone()
	for _, name := range present {
		out.DropColumn(name)
	}
	return out, nil
}

// merge left-joins the current table with another group's table on equal
// key values. The right table resolves through the registry, preferring
// the group's processed table. Duplicate keys on the right fan out left
// rows; unmatched left rows are kept with right-side columns null.
func (e *Engine) merge(t *Table, a Action, reg *Registry) (*Table, []Diagnostic) {
	right, err := reg.Resolve(a.RightGroup)
	if err != nil {
		return nil, []Diagnostic{warnf(string(a.Kind), "group %q not found", a.RightGroup)}
	}
	if !t.HasColumn(a.KeyColumn) || !right.HasColumn(a.KeyColumn) {
		return nil, []Diagnostic{warnf(string(a.Kind), "key column %q not found in one or both tables", a.KeyColumn)}
	}

	// Right-side columns carried over: everything not already on the left.
	// Overlapping names keep the left value.
	var carried []string
	for _, c := range right.Columns {
		if c != a.KeyColumn && !t.HasColumn(c) {
			carried = append(carried, c)
		}
	}

	index := make(map[string][]Row, len(right.Rows))
	for _, r := range right.Rows {
		k := r.Get(a.KeyColumn).key()
		index[k] = append(index[k], r)
	}

	out := NewTable(append(append([]string(nil), t.Columns...), carried...)...)
	for _, lr := range t.Rows {
		matches := index[lr.Get(a.KeyColumn).key()]
		if len(matches) == 0 {
			out.AppendRow(lr.Clone())
			continue
		}
		for _, rr := range matches {
			nr := lr.Clone()
			for _, c := range carried {
				nr[c] = rr.Get(c)
			}
			out.AppendRow(nr)
		}
	}
	return out, nil
}

// sortRows performs a stable sort by one column. Nulls order before any
// value, so they lead in ascending order and trail in descending order;
// this is deterministic across runs.
func (e *Engine) sortRows(t *Table, a Action) (*Table, []Diagnostic) {
	if !t.HasColumn(a.Column) {
		return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for sorting", a.Column)}
	}
	out := t.Clone()
	desc := a.Order == "desc"
	sort.SliceStable(out.Rows, func(i, j int) bool {
		c := out.Rows[i].Get(a.Column).Compare(out.Rows[j].Get(a.Column))
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func (e *Engine) groupAggregate(t *Table, a Action) (*Table, []Diagnostic) {
	var groupCols []string
	for _, name := range splitList(a.GroupColumns) {
		if t.HasColumn(name) {
			groupCols = append(groupCols, name)
		}
	}
	if len(groupCols) == 0 || !t.HasColumn(a.AggColumn) {
		return nil, []Diagnostic{warnf(string(a.Kind), "group columns (%s) or aggregation column %q not found", a.GroupColumns, a.AggColumn)}
	}

	type bucket struct {
		key    []Value
		values []Value
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, r := range t.Rows {
		var kb strings.Builder
		keyVals := make([]Value, len(groupCols))
		for i, c := range groupCols {
			keyVals[i] = r.Get(c)
			kb.WriteString(keyVals[i].key())
			kb.WriteByte('\x1f')
		}
		k := kb.String()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{key: keyVals}
			buckets[k] = b
			order = append(order, k)
		}
		b.values = append(b.values, r.Get(a.AggColumn))
	}

	// Distinct keys sort ascending, tuple-wise.
	sort.SliceStable(order, func(i, j int) bool {
		bi, bj := buckets[order[i]], buckets[order[j]]
		for n := range bi.key {
			if c := bi.key[n].Compare(bj.key[n]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	out := NewTable(append(append([]string(nil), groupCols...), a.AggColumn)...)
	for _, k := range order {
		b := buckets[k]
		agg, diag := aggregate(a.AggFunction, b.values)
		if diag != nil {
			return nil, []Diagnostic{*diag}
		}
		nr := make(Row, len(groupCols)+1)
		for i, c := range groupCols {
			nr[c] = b.key[i]
		}
		nr[a.AggColumn] = agg
		out.AppendRow(nr)
	}
	return out, nil
}

// aggregate applies one of count/sum/mean/max/min over a bucket's values.
// Count counts non-null values; sum and mean consider numeric values only.
func aggregate(fn string, values []Value) (Value, *Diagnostic) {
	switch fn {
	case "count":
		n := int64(0)
		for _, v := range values {
			if !v.IsNull() {
				n++
			}
		}
		return Int(n), nil
	case "sum":
		total := 0.0
		for _, v := range values {
			if f, ok := v.Float64(); ok {
				total += f
			}
		}
		return Float(total), nil
	case "mean":
		total, n := 0.0, 0
		for _, v := range values {
			if f, ok := v.Float64(); ok {
				total += f
				n++
			}
		}
		if n == 0 {
			return Null(), nil
		}
		return Float(total / float64(n)), nil
	case "max":
		best := Null()
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if best.IsNull() || v.Compare(best) > 0 {
				best = v
			}
		}
		return best, nil
	case "min":
		best := Null()
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if best.IsNull() || v.Compare(best) < 0 {
				best = v
			}
		}
		return best, nil
	default:
		d := warnf(string(ActionGroupAggregate), "unknown aggregation function %q", fn)
		return Null(), &d
	}
}

// removeDuplicates drops rows duplicating an earlier row on the given
// column subset (or the full row when no subset is given), keeping the
// first occurrence. A subset that resolves to no existing columns is a
// silent no-op.
func (e *Engine) removeDuplicates(t *Table, a Action) (*Table, []Diagnostic) {
	subset := splitList(a.Columns)
	var cols []string
	if len(subset) > 0 {
		for _, name := range subset {
			if t.HasColumn(name) {
				cols = append(cols, name)
			}
		}
		if len(cols) == 0 {
			return nil, nil
		}
	} else {
		cols = t.Columns
	}

	seen := make(map[string]bool, len(t.Rows))
	out := NewTable(t.Columns...)
	for _, r := range t.Rows {
		var kb strings.Builder
		for _, c := range cols {
			kb.WriteString(r.Get(c).key())
			kb.WriteByte('\x1f')
		}
		k := kb.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out.AppendRow(r.Clone())
	}
	return out, nil
}

func (e *Engine) fillMissing(t *Table, a Action) (*Table, []Diagnostic) {
	if !t.HasColumn(a.Column) {
		return nil, []Diagnostic{warnf(string(a.Kind), "column %q not found for filling missing values", a.Column)}
	}
	out := t.Clone()
	switch a.Method {
	case "value":
		fill := parseLiteral(a.FillValue)
		for _, r := range out.Rows {
			if r.Get(a.Column).IsNull() {
				r[a.Column] = fill
			}
		}
	case "forward":
		last := Null()
		for _, r := range out.Rows {
			if v := r.Get(a.Column); v.IsNull() {
				r[a.Column] = last
			} else {
				last = v
			}
		}
	case "backward":
		next := Null()
		for i := len(out.Rows) - 1; i >= 0; i-- {
			r := out.Rows[i]
			if v := r.Get(a.Column); v.IsNull() {
				r[a.Column] = next
			} else {
				next = v
			}
		}
	case "mean":
		total, n := 0.0, 0
		for _, r := range t.Rows {
			v := r.Get(a.Column)
			if v.IsNull() {
				continue
			}
			f, ok := v.Float64()
			if !ok {
				return nil, []Diagnostic{errorf(string(a.Kind), "column %q is not numeric; cannot fill with mean", a.Column)}
			}
			total += f
			n++
		}
		if n == 0 {
			return nil, nil // mean of an all-null column is undefined
		}
		mean := Float(total / float64(n))
		for _, r := range out.Rows {
			if r.Get(a.Column).IsNull() {
				r[a.Column] = mean
			}
		}
	default:
		return nil, []Diagnostic{warnf(string(a.Kind), "unknown fill method %q", a.Method)}
	}
	return out, nil
}

// parseLiteral interprets a user-supplied fill literal the same way
// ingestion interprets raw cells: bool, integer, float, then text.
func parseLiteral(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Str(s)
	}
	if b, err := strconv.ParseBool(strings.ToLower(trimmed)); err == nil && isBoolWord(trimmed) {
		return Bool(b)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(f)
	}
	return Str(s)
}

func isBoolWord(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}
