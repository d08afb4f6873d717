package attribution_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/attribution"
	"github.com/atlas/coverage-engine/schedule"
)

func decemberReport(t *testing.T, txs []attribution.Transaction) (*attribution.Report, *schedule.Calendar) {
	t.Helper()
	cal := decemberCalendar(t)
	res := schedule.NewResolver(cal, schedule.DefaultBreakPolicy())
	grid, err := attribution.SeedGrid(res, decemberWindow())
	if err != nil {
		t.Fatalf("SeedGrid failed: %v", err)
	}

	engine := attribution.NewEngine(grid)
	alloc, err := engine.Allocate(txs, decemberWindow())
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return attribution.NewAggregator(cal, grid).Aggregate(alloc), cal
}

func findHourly(t *testing.T, report *attribution.Report, d schedule.DayDate, hour int) attribution.HourlyRow {
	t.Helper()
	for _, row := range report.Hourly {
		if row.Slot.Date == d && row.Slot.Hour == hour {
			return row
		}
	}
	t.Fatalf("no hourly row for %s %02d:00", d, hour)
	return attribution.HourlyRow{}
}

// =============================================================================
// HOURLY COVERAGE MATRIX
// =============================================================================

func TestAggregate_HourlyCellRendering(t *testing.T) {
	// GIVEN: Dec 1 with Ana on 10:00-18:00 and one sale at 12:00
	// WHEN: Aggregating
	// THEN: 12:00 shows her name and amount, 10:00 shows the break-marked
	//       name with zero, 03:00 is blank

	d1 := date(2025, time.December, 1)
	report, cal := decemberReport(t, []attribution.Transaction{
		{At: at(d1, 12, 0), Amount: money(500)},
	})
	ana, _ := cal.Lookup("Ana")

	noon := findHourly(t, report, d1, 12)
	if noon.Label != "12:00 - 13:00" {
		t.Errorf("label = %q, want \"12:00 - 13:00\"", noon.Label)
	}
	cell := noon.Cells[ana.Ordinal]
	if cell.Display != "Ana" || !cell.Amount.Equal(money(500)) {
		t.Errorf("noon cell = %+v, want Ana with 500", cell)
	}

	ten := findHourly(t, report, d1, 10)
	cell = ten.Cells[ana.Ordinal]
	if cell.Display != "Ana"+attribution.BreakMark || !cell.Amount.IsZero() {
		t.Errorf("break cell = %+v, want break-marked name with zero amount", cell)
	}

	three := findHourly(t, report, d1, 3)
	if got := three.Cells[ana.Ordinal]; got.Display != "" {
		t.Errorf("absent cell display = %q, want blank", got.Display)
	}
}

func TestAggregate_UnassignedPerSlot(t *testing.T) {
	d1 := date(2025, time.December, 1)
	report, _ := decemberReport(t, []attribution.Transaction{
		{At: at(d1, 2, 0), Amount: money(75)},
	})

	row := findHourly(t, report, d1, 2)
	if !row.Unassigned.Equal(money(75)) {
		t.Errorf("slot unassigned = %s, want 75", row.Unassigned)
	}
	if !report.Unassigned.Equal(money(75)) {
		t.Errorf("report unassigned = %s, want 75", report.Unassigned)
	}
}

// =============================================================================
// DAILY AND PERIOD TOTALS
// =============================================================================

func TestAggregate_DailyAndPeriodTotals(t *testing.T) {
	// GIVEN: One sale per day, each landing on a single eligible person
	// WHEN: Aggregating
	// THEN: Daily rows split by date; totals carry worked days and 2%
	//       commission

	d1 := date(2025, time.December, 1)
	d2 := date(2025, time.December, 2)
	report, cal := decemberReport(t, []attribution.Transaction{
		{At: at(d1, 12, 0), Amount: money(500)}, // Ana
		{At: at(d2, 8, 0), Amount: money(300)},  // Carla
	})
	ana, _ := cal.Lookup("Ana")
	carla, _ := cal.Lookup("Carla")

	if len(report.Daily) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(report.Daily))
	}
	if !report.Daily[0].Amounts[ana.Ordinal].Equal(money(500)) {
		t.Errorf("Dec 1 Ana = %s, want 500", report.Daily[0].Amounts[ana.Ordinal])
	}
	if !report.Daily[1].Amounts[ana.Ordinal].IsZero() {
		t.Errorf("Dec 2 Ana = %s, want 0", report.Daily[1].Amounts[ana.Ordinal])
	}
	if !report.Daily[1].Amounts[carla.Ordinal].Equal(money(300)) {
		t.Errorf("Dec 2 Carla = %s, want 300", report.Daily[1].Amounts[carla.Ordinal])
	}

	anaTotal := report.Totals[ana.Ordinal]
	if !anaTotal.Total.Equal(money(500)) {
		t.Errorf("Ana period total = %s, want 500", anaTotal.Total)
	}
	if anaTotal.WorkedDays != 2 {
		t.Errorf("Ana worked days = %d, want 2", anaTotal.WorkedDays)
	}
	if !anaTotal.Commission.Equal(money(10)) {
		t.Errorf("Ana commission = %s, want 10 (2%% of 500)", anaTotal.Commission)
	}

	carlaTotal := report.Totals[carla.Ordinal]
	if carlaTotal.WorkedDays != 1 {
		t.Errorf("Carla worked days = %d, want 1", carlaTotal.WorkedDays)
	}
	if !carlaTotal.Commission.Equal(money(6)) {
		t.Errorf("Carla commission = %s, want 6 (2%% of 300)", carlaTotal.Commission)
	}

	if !report.GrandTotal.Equal(money(800)) {
		t.Errorf("grand total = %s, want 800", report.GrandTotal)
	}
}

// =============================================================================
// CONCURRENCY STATISTICS
// =============================================================================

func TestAggregate_ConcurrencyCounts(t *testing.T) {
	// Eligible hour sets in the December fixture:
	//   Ana (10:00-18:00, breaks 10 and 14-15): 11,12,13,16,17 both days.
	//   Bruno (21:00-06:00 on Dec 1, break 03-06): 21-23 on Dec 1, 00-02
	//   on Dec 2.
	//   Carla (05:00-13:00 on Dec 2, break 11-14): 05-10 on Dec 2.
	// No two sets overlap, so every eligible hour counts as alone.

	report, cal := decemberReport(t, nil)
	ana, _ := cal.Lookup("Ana")
	bruno, _ := cal.Lookup("Bruno")

	// Bruno (21:00-06:00 on Dec 1) is the only person on duty overnight:
	// eligible 21,22,23 on Dec 1 and 0,1,2 on Dec 2 (3-6 is his break).
	brunoRow := report.Concurrency[bruno.Ordinal]
	if brunoRow.Alone != 6 {
		t.Errorf("Bruno alone hours = %d, want 6", brunoRow.Alone)
	}
	if brunoRow.WithOne != 0 || brunoRow.WithMany != 0 {
		t.Errorf("Bruno shared hours = %+v, want none", brunoRow)
	}

	// Ana on Dec 1 is alone for all her eligible hours (11,12,13,16,17).
	// On Dec 2 Carla (eligible 05-10, on break 11-14) overlaps none of
	// Ana's eligible hours, so Ana is always alone.
	anaRow := report.Concurrency[ana.Ordinal]
	if anaRow.Alone != 10 {
		t.Errorf("Ana alone hours = %d, want 10", anaRow.Alone)
	}
	if anaRow.WithOne != 0 {
		t.Errorf("Ana with-one hours = %d, want 0", anaRow.WithOne)
	}
}

func TestAggregate_ConcurrencySharedHours(t *testing.T) {
	// GIVEN: Two identical 10:00-18:00 shifts on one day
	// THEN: Both people share every eligible hour with exactly one other

	cal, err := schedule.LoadCalendar(schedule.RawShiftTable{
		Dates: []schedule.DayDate{date(2025, time.December, 1)},
		Rows: []schedule.RawShiftRow{
			{Name: "Ana", Cells: []string{"10:00-18:00"}},
			{Name: "Bruno", Cells: []string{"10:00-18:00"}},
		},
	})
	if err != nil {
		t.Fatalf("LoadCalendar failed: %v", err)
	}
	res := schedule.NewResolver(cal, schedule.DefaultBreakPolicy())
	window := schedule.DateRange{From: date(2025, time.December, 1), To: date(2025, time.December, 1)}
	grid, err := attribution.SeedGrid(res, window)
	if err != nil {
		t.Fatalf("SeedGrid failed: %v", err)
	}
	alloc, err := attribution.NewEngine(grid).Allocate(nil, window)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	report := attribution.NewAggregator(cal, grid).Aggregate(alloc)

	// Eligible hours for a 10-start shift: 11,12,13,16,17 (10,14,15 break).
	for _, row := range report.Concurrency {
		if row.WithOne != 5 {
			t.Errorf("%s with-one = %d, want 5", row.Person.Name, row.WithOne)
		}
		if row.Alone != 0 || row.WithMany != 0 {
			t.Errorf("%s unexpected alone/many counts: %+v", row.Person.Name, row)
		}
	}
}

// =============================================================================
// EDGE POLICY
// =============================================================================

func TestAggregate_EmptyInputsYieldWellFormedZeroes(t *testing.T) {
	report, _ := decemberReport(t, nil)

	if len(report.Hourly) != 48 {
		t.Errorf("hourly rows = %d, want 48 (2 days x 24)", len(report.Hourly))
	}
	if len(report.Daily) != 2 || len(report.Totals) != 3 || len(report.Concurrency) != 3 {
		t.Errorf("report shape wrong: %d daily, %d totals, %d concurrency",
			len(report.Daily), len(report.Totals), len(report.Concurrency))
	}
	for _, tot := range report.Totals {
		if !tot.Total.IsZero() || !tot.Commission.IsZero() {
			t.Errorf("%s totals not zero: %+v", tot.Person.Name, tot)
		}
	}
	if !report.GrandTotal.IsZero() || !report.Unassigned.IsZero() {
		t.Errorf("grand totals not zero: %s / %s", report.GrandTotal, report.Unassigned)
	}
}

func TestAggregate_MidHourShiftStartStaysConsistent(t *testing.T) {
	// GIVEN: A shift starting mid-hour (09:30) and a sale inside that
	//        first partial hour
	// WHEN: Allocating through the seeded grid and aggregating
	// THEN: The hour-9 cell is absent with a zero amount, the sale routes
	//       to the slot's unassigned bucket, and no money hides in a
	//       blank cell

	d1 := date(2025, time.December, 1)
	cal, err := schedule.LoadCalendar(schedule.RawShiftTable{
		Dates: []schedule.DayDate{d1},
		Rows:  []schedule.RawShiftRow{{Name: "Eva", Cells: []string{"09:30-18:00"}}},
	})
	if err != nil {
		t.Fatalf("LoadCalendar failed: %v", err)
	}
	window := schedule.DateRange{From: d1, To: d1}
	res := schedule.NewResolver(cal, schedule.DefaultBreakPolicy())
	grid, err := attribution.SeedGrid(res, window)
	if err != nil {
		t.Fatalf("SeedGrid failed: %v", err)
	}
	alloc, err := attribution.NewEngine(grid).Allocate([]attribution.Transaction{
		{At: at(d1, 9, 45), Amount: money(100)},
	}, window)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	report := attribution.NewAggregator(cal, grid).Aggregate(alloc)
	eva, _ := cal.Lookup("Eva")

	nine := findHourly(t, report, d1, 9)
	cell := nine.Cells[eva.Ordinal]
	if cell.State != schedule.SlotAbsent || cell.Display != "" || !cell.Amount.IsZero() {
		t.Errorf("hour-9 cell = %+v, want absent/blank/zero", cell)
	}
	if !nine.Unassigned.Equal(money(100)) {
		t.Errorf("hour-9 unassigned = %s, want 100", nine.Unassigned)
	}

	ten := findHourly(t, report, d1, 10)
	if ten.Cells[eva.Ordinal].State != schedule.SlotEligible {
		t.Errorf("hour-10 state = %v, want eligible", ten.Cells[eva.Ordinal].State)
	}

	if !report.Totals[eva.Ordinal].Total.IsZero() {
		t.Errorf("Eva total = %s, want 0", report.Totals[eva.Ordinal].Total)
	}
	if !report.Unassigned.Equal(money(100)) || !report.GrandTotal.Equal(money(100)) {
		t.Errorf("unassigned/grand = %s/%s, want 100/100", report.Unassigned, report.GrandTotal)
	}
}

func TestAggregate_CategoriesSorted(t *testing.T) {
	d1 := date(2025, time.December, 1)
	report, _ := decemberReport(t, []attribution.Transaction{
		{At: at(d1, 12, 0), Amount: money(10), Category: "zeta"},
		{At: at(d1, 12, 0), Amount: money(20), Category: "alfa"},
	})

	if len(report.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(report.Categories))
	}
	if report.Categories[0].Category != "alfa" || report.Categories[1].Category != "zeta" {
		t.Errorf("categories not sorted: %+v", report.Categories)
	}
	if !report.Categories[0].Total.Equal(decimal.NewFromInt(20)) {
		t.Errorf("alfa total = %s, want 20", report.Categories[0].Total)
	}
}
