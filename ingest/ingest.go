/*
Package ingest reads the raw tabular sources (xlsx or CSV) and reshapes
them into the inputs the engine consumes: a RawShiftTable and a
transaction list.

PURPOSE:
  This is the external-collaborator boundary. Everything byte- and
  spreadsheet-shaped stops here; the schedule and attribution packages only
  ever see typed rows.

COLUMN NORMALIZATION:
  Transaction exports have drifted over time. Several historical timestamp
  and amount column names are recognized and normalized; a missing
  timestamp column is an explicit, fatal error, while individual rows that
  fail to parse are skipped (cell-level failures never abort a run).

SEE ALSO:
  - schedule/calendar.go: Consumes RawShiftTable
  - export: The symmetric writing side
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a rectangular cell grid as read from a source file, before any
// interpretation.
type Table struct {
	Rows [][]string
}

var (
	// ErrTimestampColumnMissing means the transaction table has none of
	// the recognized timestamp column names. Fatal for the run.
	ErrTimestampColumnMissing = errors.New("required timestamp column absent")

	// ErrAmountColumnMissing means the transaction table has none of the
	// recognized amount column names. Fatal for the run.
	ErrAmountColumnMissing = errors.New("required amount column absent")

	// ErrEmptyTable means the source file contained no rows at all.
	ErrEmptyTable = errors.New("source table is empty")

	// ErrUnsupportedFormat means the file extension is neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// =============================================================================
// READERS
// =============================================================================

// ReadXLSX reads the first sheet of a workbook into a Table.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return &Table{Rows: rows}, nil
}

// ReadCSV reads a CSV stream into a Table. Ragged rows are allowed; the
// shift sheets routinely omit trailing empty cells.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return &Table{Rows: rows}, nil
}

// ReadFile dispatches on the file extension. Only xlsx and csv are
// accepted, matching the upload surface.
func ReadFile(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// cell returns row[i] or "" when the row is shorter.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
