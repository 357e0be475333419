package framex

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable summary of a table: its dimensions,
// the inferred type of each column, and a preview of the first n rows.
// Useful for inspecting a group after ingestion or processing.
func Describe(t *Table, previewRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows x %d columns\n", t.NumRows(), t.NumCols())

	for _, col := range t.Columns {
		fmt.Fprintf(&b, "  %s: %s\n", col, columnKind(t, col))
	}

	if previewRows <= 0 || t.NumRows() == 0 {
		return b.String()
	}
	if previewRows > t.NumRows() {
		previewRows = t.NumRows()
	}

	// Column widths sized to header and preview content.
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
		for _, r := range t.Rows[:previewRows] {
			if n := len(r.Get(col).Text()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	b.WriteByte('\n')
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], c)
		}
		b.WriteByte('\n')
	}

	writeRow(t.Columns)
	cells := make([]string, len(t.Columns))
	for _, r := range t.Rows[:previewRows] {
		for i, col := range t.Columns {
			cells[i] = r.Get(col).Text()
		}
		writeRow(cells)
	}
	return b.String()
}

// columnKind infers a column's type from its non-null cells: the single
// kind if uniform, "Mixed" otherwise, "Null" when no cell has a value.
func columnKind(t *Table, col string) string {
	kind := CellNull
	mixed := false
	for _, r := range t.Rows {
		v := r.Get(col)
		if v.IsNull() {
			continue
		}
		if kind == CellNull {
			kind = v.Kind()
		} else if v.Kind() != kind {
			mixed = true
			break
		}
	}
	if mixed {
		return "Mixed"
	}
	return kind.String()
}
