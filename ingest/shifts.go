/*
shifts.go - Shift table interpretation

PURPOSE:
  Finds the date header row inside a raw shift table and aligns every data
  row's cells to the parsed date columns. Sheets often carry a title row
  above the dates, so the header is located by content (the first row where
  at least one cell past the name column parses as a date), not by position.
*/
package ingest

import (
	"github.com/atlas/coverage-engine/schedule"
)

// ShiftTable interprets a raw table as the shift calendar source.
// Header cells that do not parse as dates are dropped along with their
// columns; a table with no date columns at all is a fatal input error.
func ShiftTable(t *Table) (schedule.RawShiftTable, error) {
	headerIdx, dates, columns := findDateHeader(t)
	if headerIdx < 0 {
		return schedule.RawShiftTable{}, schedule.ErrNoDateColumns
	}

	out := schedule.RawShiftTable{Dates: dates}
	for _, row := range t.Rows[headerIdx+1:] {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(row, col)
		}
		out.Rows = append(out.Rows, schedule.RawShiftRow{Name: name, Cells: cells})
	}
	return out, nil
}

// findDateHeader locates the header row and returns the parsed dates plus
// the column index each date came from.
func findDateHeader(t *Table) (int, []schedule.DayDate, []int) {
	for idx, row := range t.Rows {
		var dates []schedule.DayDate
		var columns []int
		for col := 1; col < len(row); col++ {
			d, err := schedule.ParseDayDate(cell(row, col))
			if err != nil {
				continue
			}
			dates = append(dates, d)
			columns = append(columns, col)
		}
		if len(dates) > 0 {
			return idx, dates, columns
		}
	}
	return -1, nil, nil
}
