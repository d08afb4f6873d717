/*
aggregate.go - Report assembly

PURPOSE:
  Rolls the fragment list into the four reports of a run: the hourly
  coverage matrix, the daily summary, the period totals (worked days and
  commission), and the concurrency statistics. Every report indexes people
  by their fixed ordinal, so columns line up across all sheets.

RESULT SHAPE:
  One Report struct with named, typed fields per report. Aggregation is a
  pure function of (grid, allocation, calendar); rerunning it over the same
  inputs yields identical output.

SEE ALSO:
  - engine.go: Produces the Allocation consumed here
  - grid.go: Supplies cell states for the hourly matrix and concurrency
*/
package attribution

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/schedule"
)

// BreakMark is appended to a person's name in hourly cells where they are
// present but on break.
const BreakMark = " (LOZA)"

// DefaultCommissionRate is the standing commission on attributed revenue.
var DefaultCommissionRate = decimal.NewFromFloat(0.02)

// =============================================================================
// REPORT TYPES
// =============================================================================

// HourCell is one person's cell in one hourly row.
type HourCell struct {
	State   schedule.SlotState
	Amount  decimal.Decimal
	Display string // name, break-marked name, or empty for absent
}

// HourlyRow is one (date, hour) row of the coverage matrix. Cells are
// indexed by person ordinal. Unassigned carries revenue no one was
// eligible for in this slot.
type HourlyRow struct {
	Slot       schedule.HourSlot
	Label      string
	Cells      []HourCell
	Unassigned decimal.Decimal
}

// DailyRow is one date's per-person allocated sums.
type DailyRow struct {
	Date       schedule.DayDate
	Amounts    []decimal.Decimal // indexed by ordinal
	Unassigned decimal.Decimal
}

// PersonTotal is one person's period rollup.
type PersonTotal struct {
	Person     schedule.Person
	Total      decimal.Decimal
	WorkedDays int // distinct dates with a shift in range
	Commission decimal.Decimal
}

// ConcurrencyRow counts, per person, the eligible hours spent alone, with
// exactly one other eligible person, and with two or more others. Break
// hours never count: the person must themselves be eligible.
type ConcurrencyRow struct {
	Person   schedule.Person
	Alone    int
	WithOne  int
	WithMany int
}

// CategoryTotal is an eligibility-independent per-category sum.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Report is the full typed result set of one run.
type Report struct {
	People      []schedule.Person
	Window      schedule.DateRange
	Hourly      []HourlyRow
	Daily       []DailyRow
	Totals      []PersonTotal
	Concurrency []ConcurrencyRow
	Categories  []CategoryTotal

	// CommissionRate is the rate the Commission column was computed with,
	// carried so renderers can label it.
	CommissionRate decimal.Decimal

	Unassigned decimal.Decimal
	GrandTotal decimal.Decimal
}

// =============================================================================
// AGGREGATOR
// =============================================================================

type Aggregator struct {
	Calendar       *schedule.Calendar
	Grid           *Grid
	CommissionRate decimal.Decimal
}

func NewAggregator(cal *schedule.Calendar, grid *Grid) *Aggregator {
	return &Aggregator{Calendar: cal, Grid: grid, CommissionRate: DefaultCommissionRate}
}

// Aggregate builds the report set from an allocation. An empty allocation
// yields zero-valued but fully shaped tables.
func (a *Aggregator) Aggregate(alloc *Allocation) *Report {
	people := a.Grid.People()
	window := a.Grid.Window()

	// Index fragments by slot and ordinal.
	type slotSums struct {
		byOrdinal  map[int]decimal.Decimal
		unassigned decimal.Decimal
	}
	slots := make(map[schedule.HourSlot]*slotSums)
	sumsFor := func(slot schedule.HourSlot) *slotSums {
		s, ok := slots[slot]
		if !ok {
			s = &slotSums{byOrdinal: make(map[int]decimal.Decimal), unassigned: decimal.Zero}
			slots[slot] = s
		}
		return s
	}
	for _, f := range alloc.Fragments {
		s := sumsFor(schedule.HourSlot{Date: f.Date, Hour: f.Hour})
		if f.Person.Ordinal == UnassignedOrdinal {
			s.unassigned = s.unassigned.Add(f.Amount)
			continue
		}
		s.byOrdinal[f.Person.Ordinal] = s.byOrdinal[f.Person.Ordinal].Add(f.Amount)
	}

	report := &Report{
		People:         people,
		Window:         window,
		CommissionRate: a.CommissionRate,
		Unassigned:     alloc.Unassigned,
		GrandTotal:     alloc.TotalInput,
	}

	dailyAmounts := make(map[schedule.DayDate][]decimal.Decimal)
	dailyUnassigned := make(map[schedule.DayDate]decimal.Decimal)
	totals := make([]decimal.Decimal, len(people))
	for i := range totals {
		totals[i] = decimal.Zero
	}
	concurrency := make([]ConcurrencyRow, len(people))
	for i, p := range people {
		concurrency[i] = ConcurrencyRow{Person: p}
	}

	for _, date := range window.Days() {
		amounts := make([]decimal.Decimal, len(people))
		for i := range amounts {
			amounts[i] = decimal.Zero
		}
		dailyAmounts[date] = amounts
		dailyUnassigned[date] = decimal.Zero

		for hour := 0; hour < 24; hour++ {
			slot := schedule.HourSlot{Date: date, Hour: hour}
			row := HourlyRow{
				Slot:       slot,
				Label:      slot.Label(),
				Cells:      make([]HourCell, len(people)),
				Unassigned: decimal.Zero,
			}

			var eligibleOrdinals []int
			for _, p := range people {
				state := a.Grid.Cell(date, hour, p)
				cell := HourCell{State: state, Amount: decimal.Zero}
				switch state {
				case schedule.SlotEligible:
					cell.Display = p.Name
					eligibleOrdinals = append(eligibleOrdinals, p.Ordinal)
				case schedule.SlotOnBreak:
					cell.Display = p.Name + BreakMark
				}
				row.Cells[p.Ordinal] = cell
			}

			if s, ok := slots[slot]; ok {
				for ordinal, amount := range s.byOrdinal {
					row.Cells[ordinal].Amount = amount
					amounts[ordinal] = amounts[ordinal].Add(amount)
					totals[ordinal] = totals[ordinal].Add(amount)
				}
				row.Unassigned = s.unassigned
				dailyUnassigned[date] = dailyUnassigned[date].Add(s.unassigned)
			}

			for _, ordinal := range eligibleOrdinals {
				switch others := len(eligibleOrdinals) - 1; {
				case others == 0:
					concurrency[ordinal].Alone++
				case others == 1:
					concurrency[ordinal].WithOne++
				default:
					concurrency[ordinal].WithMany++
				}
			}

			report.Hourly = append(report.Hourly, row)
		}

		report.Daily = append(report.Daily, DailyRow{
			Date:       date,
			Amounts:    amounts,
			Unassigned: dailyUnassigned[date],
		})
	}

	for _, p := range people {
		report.Totals = append(report.Totals, PersonTotal{
			Person:     p,
			Total:      totals[p.Ordinal],
			WorkedDays: a.Calendar.WorkedDays(p, window),
			Commission: totals[p.Ordinal].Mul(a.CommissionRate),
		})
	}

	for category, total := range alloc.ByCategory {
		report.Categories = append(report.Categories, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})

	report.Concurrency = concurrency
	return report
}
