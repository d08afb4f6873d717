/*
main.go - One-shot batch report

PURPOSE:
  Non-interactive mode: read the shift sheet and the transaction export,
  run the full attribution over the date range, and write the styled
  workbook. Eligibility comes from a freshly seeded grid with no operator
  edits, the same hour-granular source the interactive variant reads.

USAGE:
  report -shifts turnos.xlsx -transactions ventas.csv \
         -from 2025-12-01 -to 2025-12-31 -out simulacion.xlsx
*/
package main

import (
	"flag"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/attribution"
	"github.com/atlas/coverage-engine/export"
	"github.com/atlas/coverage-engine/ingest"
	"github.com/atlas/coverage-engine/schedule"
)

func main() {
	shiftsPath := flag.String("shifts", "", "shift sheet (xlsx or csv)")
	txPath := flag.String("transactions", "", "transaction export (xlsx or csv)")
	from := flag.String("from", "", "range start (YYYY-MM-DD, inclusive)")
	to := flag.String("to", "", "range end (YYYY-MM-DD, inclusive)")
	out := flag.String("out", "report.xlsx", "output workbook path")
	commission := flag.Float64("commission", 0.02, "commission rate on attributed revenue")
	flag.Parse()

	if *shiftsPath == "" || *txPath == "" || *from == "" || *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	window, err := parseWindow(*from, *to)
	if err != nil {
		log.Fatalf("Invalid date range: %v", err)
	}

	rawShifts, err := readShiftTable(*shiftsPath)
	if err != nil {
		log.Fatalf("Failed to read shifts: %v", err)
	}
	txs, err := readTransactions(*txPath)
	if err != nil {
		log.Fatalf("Failed to read transactions: %v", err)
	}

	calendar, err := schedule.LoadCalendar(rawShifts)
	if err != nil {
		log.Fatalf("Failed to load calendar: %v", err)
	}
	resolver := schedule.NewResolver(calendar, schedule.DefaultBreakPolicy())

	// Batch mode allocates through the seeded grid too, so the hourly
	// matrix cell states and the allocated amounts always agree.
	grid, err := attribution.SeedGrid(resolver, window)
	if err != nil {
		log.Fatalf("Grid seeding failed: %v", err)
	}

	engine := attribution.NewEngine(grid)
	alloc, err := engine.Allocate(txs, window)
	if err != nil {
		log.Fatalf("Allocation failed: %v", err)
	}

	agg := attribution.NewAggregator(calendar, grid)
	agg.CommissionRate = decimal.NewFromFloat(*commission)
	report := agg.Aggregate(alloc)

	data, err := export.WriteWorkbook(report)
	if err != nil {
		log.Fatalf("Workbook generation failed: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	log.Printf("Wrote %s: %d people, %d transactions, total %s (unassigned %s)",
		*out, len(report.People), len(txs), report.GrandTotal.StringFixed(2), report.Unassigned.StringFixed(2))
}

func parseWindow(from, to string) (schedule.DateRange, error) {
	fromDate, err := schedule.ParseDayDate(from)
	if err != nil {
		return schedule.DateRange{}, err
	}
	toDate, err := schedule.ParseDayDate(to)
	if err != nil {
		return schedule.DateRange{}, err
	}
	r := schedule.DateRange{From: fromDate, To: toDate}
	if !r.Valid() {
		return schedule.DateRange{}, schedule.ErrInvalidDateRange
	}
	return r, nil
}

func readShiftTable(path string) (schedule.RawShiftTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return schedule.RawShiftTable{}, err
	}
	defer f.Close()

	table, err := ingest.ReadFile(path, f)
	if err != nil {
		return schedule.RawShiftTable{}, err
	}
	return ingest.ShiftTable(table)
}

func readTransactions(path string) ([]attribution.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ingest.ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	return ingest.Transactions(table)
}
