package framex

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExcel serializes a table to a single-sheet workbook: header row of
// column names, one data row per table row, cells written with their
// native types. Null cells are left blank.
func WriteExcel(w io.Writer, t *Table, sheet string) error {
	if sheet == "" {
		sheet = "Processed_Data"
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheet, err)
	}

	for col, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell for column %d: %w", col, err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header %q: %w", name, err)
		}
	}

	for i, r := range t.Rows {
		for col, name := range t.Columns {
			v := r.Get(name)
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("cell for row %d column %d: %w", i, col, err)
			}
			if err := f.SetCellValue(sheet, cell, v.Any()); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV serializes a table as comma-separated text: a header line
// followed by one line per row, with standard quoting for embedded
// delimiters and newlines. Null cells render empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, name := range t.Columns {
			record[j] = r.Get(name).Text()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
