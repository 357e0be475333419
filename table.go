package framex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CellType represents the type of data held in a cell.
type CellType int

const (
	CellNull CellType = iota
	CellInt
	CellFloat
	CellString
	CellTime
	CellBool
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellNull:
		return "Null"
	case CellInt:
		return "Int"
	case CellFloat:
		return "Float"
	case CellString:
		return "String"
	case CellTime:
		return "Time"
	case CellBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Value is a dynamically typed cell value. The zero Value is null.
type Value struct {
	kind CellType
	i    int64
	f    float64
	s    string
	t    time.Time
	b    bool
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: CellInt, i: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{kind: CellFloat, f: v} }

// Str returns a text Value.
func Str(v string) Value { return Value{kind: CellString, s: v} }

// Time returns a timestamp Value.
func Time(v time.Time) Value { return Value{kind: CellTime, t: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: CellBool, b: v} }

// Kind returns the type tag of the value.
func (v Value) Kind() CellType { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == CellNull }

// Text renders the value as text. Null renders as the empty string.
// This rendering is what filter comparisons and CSV export use.
func (v Value) Text() string {
	switch v.kind {
	case CellInt:
		return strconv.FormatInt(v.i, 10)
	case CellFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case CellString:
		return v.s
	case CellTime:
		return v.t.Format("2006-01-02 15:04:05")
	case CellBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Float64 returns the value as a float64 and whether the conversion is valid.
// Int and Float convert directly, Bool converts to 0/1, text is parsed.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case CellInt:
		return float64(v.i), true
	case CellFloat:
		return v.f, true
	case CellBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case CellString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// TimeValue returns the underlying time.Time for CellTime values.
func (v Value) TimeValue() (time.Time, bool) {
	if v.kind != CellTime {
		return time.Time{}, false
	}
	return v.t, true
}

// Any unboxes the value into its native Go representation (nil for null).
func (v Value) Any() any {
	switch v.kind {
	case CellInt:
		return v.i
	case CellFloat:
		return v.f
	case CellString:
		return v.s
	case CellTime:
		return v.t
	case CellBool:
		return v.b
	default:
		return nil
	}
}

// FromAny boxes a native Go value into a Value. Unsupported types are
// rendered as text via their default formatting.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return Str(x)
	case time.Time:
		return Time(x)
	default:
		return Str(fmt.Sprintf("%v", x))
	}
}

// Compare orders two values. Null sorts before everything. Values of the
// same numeric family compare numerically, times chronologically, booleans
// false-before-true; everything else falls back to text comparison.
func (v Value) Compare(o Value) int {
	if v.IsNull() || o.IsNull() {
		switch {
		case v.IsNull() && o.IsNull():
			return 0
		case v.IsNull():
			return -1
		default:
			return 1
		}
	}
	if vf, ok := v.Float64(); ok {
		if of, ok := o.Float64(); ok {
			switch {
			case vf < of:
				return -1
			case vf > of:
				return 1
			default:
				return 0
			}
		}
	}
	if vt, ok := v.TimeValue(); ok {
		if ot, ok := o.TimeValue(); ok {
			switch {
			case vt.Before(ot):
				return -1
			case vt.After(ot):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(v.Text(), o.Text())
}

// Equal reports whether two values are equal under Compare semantics.
func (v Value) Equal(o Value) bool { return v.Compare(o) == 0 }

// key returns a canonical string used for join/dedup/grouping keys.
// Numeric values of either family map to the same key.
func (v Value) key() string {
	if v.IsNull() {
		return "\x00"
	}
	if f, ok := v.Float64(); ok && v.kind != CellString {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "s:" + v.Text()
}

// Row maps column names to cell values.
type Row map[string]Value

// Get returns the value for a column, or null if the row has no entry.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Null()
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is an in-memory labeled rows-by-named-columns structure.
// Every row holds a value (possibly null) for every declared column.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of declared columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// HasColumn reports whether the column is declared.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a column if it does not already exist, backfilling
// null cells in every row.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, r := range t.Rows {
		if _, ok := r[name]; !ok {
			r[name] = Null()
		}
	}
}

// DropColumn removes a column declaration and its cells. Unknown columns
// are ignored.
func (t *Table) DropColumn(name string) {
	for i, c := range t.Columns {
		if c == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			break
		}
	}
	for _, r := range t.Rows {
		delete(r, name)
	}
}

// AppendRow adds a row, backfilling null for any missing column and
// dropping entries for undeclared columns.
func (t *Table) AppendRow(r Row) {
	nr := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		nr[c] = r.Get(c)
	}
	t.Rows = append(t.Rows, nr)
}

// Clone returns a deep copy. Actions never mutate a table another
// reference still depends on; they operate on clones.
func (t *Table) Clone() *Table {
	c := NewTable(t.Columns...)
	c.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = r.Clone()
	}
	return c
}

// Normalize enforces the row invariant after schema changes: every row
// gains null entries for declared columns it lacks.
func (t *Table) Normalize() {
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := r[c]; !ok {
				r[c] = Null()
			}
		}
	}
}
