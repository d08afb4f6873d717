/*
Package export renders a finished Report as a styled xlsx workbook with the
four classic sheets: Matriz_Horaria, Resumen_Diario, Totales_Comisiones and
Franjas_Compartidas.

PURPOSE:
  Pure presentation. Amounts are converted to floats here and nowhere
  earlier; all computation upstream stays decimal.

SEE ALSO:
  - attribution/aggregate.go: The Report being rendered
*/
package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/atlas/coverage-engine/attribution"
)

const (
	sheetHourly      = "Matriz_Horaria"
	sheetDaily       = "Resumen_Diario"
	sheetTotals      = "Totales_Comisiones"
	sheetConcurrency = "Franjas_Compartidas"
)

// headerFill matches the operation's report branding.
const headerFill = "7145D6"

// WriteWorkbook renders the report into xlsx bytes.
func WriteWorkbook(report *attribution.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	w := &writer{f: f, header: headerStyle, money: moneyStyle}

	if err := w.hourlySheet(report); err != nil {
		return nil, err
	}
	if err := w.dailySheet(report); err != nil {
		return nil, err
	}
	if err := w.totalsSheet(report); err != nil {
		return nil, err
	}
	if err := w.concurrencySheet(report); err != nil {
		return nil, err
	}

	// The default sheet is replaced by the report sheets.
	_ = f.DeleteSheet("Sheet1")
	idx, err := f.GetSheetIndex(sheetHourly)
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	f      *excelize.File
	header int
	money  int
}

func (w *writer) newSheet(name string, headerRow []any) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if err := w.f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headerRow), 1)
	return w.f.SetCellStyle(name, "A1", last, w.header)
}

func (w *writer) hourlySheet(report *attribution.Report) error {
	header := []any{"Fecha", "Franja"}
	for _, p := range report.People {
		header = append(header, p.Name)
	}
	header = append(header, attribution.UnassignedName)
	if err := w.newSheet(sheetHourly, header); err != nil {
		return err
	}

	for i, row := range report.Hourly {
		values := []any{row.Slot.Date.String(), row.Label}
		for _, c := range row.Cells {
			switch {
			case c.Display == "":
				values = append(values, "")
			case c.Amount.IsZero():
				values = append(values, c.Display)
			default:
				values = append(values, fmt.Sprintf("%s: %s", c.Display, c.Amount.StringFixed(2)))
			}
		}
		values = append(values, row.Unassigned.InexactFloat64())
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheetHourly, start, &values); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) dailySheet(report *attribution.Report) error {
	header := []any{"Fecha"}
	for _, p := range report.People {
		header = append(header, p.Name)
	}
	header = append(header, attribution.UnassignedName)
	if err := w.newSheet(sheetDaily, header); err != nil {
		return err
	}

	for i, row := range report.Daily {
		values := []any{row.Date.String()}
		for _, amount := range row.Amounts {
			values = append(values, amount.InexactFloat64())
		}
		values = append(values, row.Unassigned.InexactFloat64())
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheetDaily, start, &values); err != nil {
			return err
		}
	}
	return w.styleMoneyColumns(sheetDaily, 2, len(report.People)+2, len(report.Daily)+1)
}

func (w *writer) totalsSheet(report *attribution.Report) error {
	percent := report.CommissionRate.Mul(decimal.NewFromInt(100))
	header := []any{"Coordinador", "Ventas Totales", "Días Trabajados",
		fmt.Sprintf("Comisión (%s%%)", percent)}
	if err := w.newSheet(sheetTotals, header); err != nil {
		return err
	}

	row := 2
	for _, t := range report.Totals {
		values := []any{t.Person.Name, t.Total.InexactFloat64(), t.WorkedDays, t.Commission.InexactFloat64()}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := w.f.SetSheetRow(sheetTotals, start, &values); err != nil {
			return err
		}
		row++
	}

	unassigned := []any{attribution.UnassignedName, report.Unassigned.InexactFloat64(), "", ""}
	start, _ := excelize.CoordinatesToCellName(1, row)
	if err := w.f.SetSheetRow(sheetTotals, start, &unassigned); err != nil {
		return err
	}
	row++

	total := []any{"TOTAL", report.GrandTotal.InexactFloat64(), "", ""}
	start, _ = excelize.CoordinatesToCellName(1, row)
	if err := w.f.SetSheetRow(sheetTotals, start, &total); err != nil {
		return err
	}

	if err := w.styleMoneyColumns(sheetTotals, 2, 2, row); err != nil {
		return err
	}
	return w.styleMoneyColumns(sheetTotals, 4, 4, len(report.Totals)+1)
}

func (w *writer) concurrencySheet(report *attribution.Report) error {
	header := []any{"Coordinador", "Horas Solo", "Con 1 Más", "Con 2 o Más"}
	if err := w.newSheet(sheetConcurrency, header); err != nil {
		return err
	}

	for i, c := range report.Concurrency {
		values := []any{c.Person.Name, c.Alone, c.WithOne, c.WithMany}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheetConcurrency, start, &values); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) styleMoneyColumns(sheet string, fromCol, toCol, lastRow int) error {
	if lastRow < 2 {
		return nil
	}
	start, _ := excelize.CoordinatesToCellName(fromCol, 2)
	end, _ := excelize.CoordinatesToCellName(toCol, lastRow)
	return w.f.SetCellStyle(sheet, start, end, w.money)
}
