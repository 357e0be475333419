package framex

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrAllSourcesFailed is returned when no source in an ingestion batch
// could be read. The caller must not create a group in that case.
var ErrAllSourcesFailed = errors.New("all sources failed to read")

// Source is one raw spreadsheet input. Either Path or Reader must be set;
// Name identifies the source in the provenance column and defaults to the
// path's base name.
type Source struct {
	Name   string
	Path   string
	Reader io.Reader
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	return filepath.Base(s.Path)
}

// Ingestor turns raw spreadsheet sources sharing a layout into a single
// combined table.
type Ingestor struct {
	opts *Options
}

// NewIngestor creates an ingestion normalizer.
func NewIngestor(opts ...Option) *Ingestor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Ingestor{opts: o}
}

// Combine reads every source's sheet, slices each grid at the 1-based
// header row/column, takes the first slice row as column names, and
// concatenates the per-source tables in source order. A provenance column
// records each row's originating source. Columns a later source adds widen
// the combined schema; cells absent on either side backfill as null.
//
// A single unreadable source is reported as a warning and skipped. If all
// sources fail, Combine returns an empty table and ErrAllSourcesFailed.
func (ing *Ingestor) Combine(sources []Source, sheet string, headerRow, headerCol int) (*Table, []Diagnostic, error) {
	if headerRow < 1 || headerCol < 1 {
		return nil, nil, fmt.Errorf("header row and column are 1-based, got row %d col %d", headerRow, headerCol)
	}

	combined := NewTable()
	var diags []Diagnostic
	failed := 0

	for _, src := range sources {
		part, err := ing.readOne(src, sheet, headerRow, headerCol)
		if err != nil {
			failed++
			diags = append(diags, warnf("ingest", "error processing %s: %v", src.name(), err))
			ing.opts.logger.Warn("source skipped", "source", src.name(), "error", err)
			continue
		}
		appendTable(combined, part)
	}

	if len(sources) > 0 && failed == len(sources) {
		return NewTable(), diags, ErrAllSourcesFailed
	}
	combined.Normalize()
	return combined, diags, nil
}

// readOne reads a single source into a table with the provenance column
// appended.
func (ing *Ingestor) readOne(src Source, sheet string, headerRow, headerCol int) (*Table, error) {
	f, err := ing.open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(grid) < headerRow {
		return nil, fmt.Errorf("sheet %q has %d rows, header row %d out of range", sheet, len(grid), headerRow)
	}

	// Slice to rows >= headerRow and columns >= headerCol (1-based).
	rows := grid[headerRow-1:]

	header := sliceCols(rows[0], headerCol)
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	t := NewTable(append(columns, ing.opts.sourceColumn)...)
	for _, raw := range rows[1:] {
		cells := sliceCols(raw, headerCol)
		r := make(Row, len(columns)+1)
		for i, col := range columns {
			if i < len(cells) {
				r[col] = parseCell(cells[i])
			} else {
				r[col] = Null()
			}
		}
		r[ing.opts.sourceColumn] = Str(src.name())
		t.AppendRow(r)
	}
	return t, nil
}

func (ing *Ingestor) open(src Source) (*excelize.File, error) {
	if src.Reader != nil {
		f, err := excelize.OpenReader(src.Reader)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.name(), err)
		}
		return f, nil
	}
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Path, err)
	}
	return f, nil
}

func sliceCols(row []string, headerCol int) []string {
	if len(row) < headerCol {
		return nil
	}
	return row[headerCol-1:]
}

// parseCell interprets a raw spreadsheet cell as a typed value: empty is
// null, then bool, integer, float, timestamp, and finally text.
func parseCell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null()
	}
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if ts, ok := parseTime(s); ok {
		return Time(ts)
	}
	return Str(raw)
}

// appendTable concatenates src's rows onto dst, widening dst's schema
// with any columns it has not seen yet (append-only union).
func appendTable(dst, src *Table) {
	for _, c := range src.Columns {
		dst.AddColumn(c)
	}
	for _, r := range src.Rows {
		dst.AppendRow(r)
	}
}
