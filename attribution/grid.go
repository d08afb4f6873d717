/*
grid.go - Operator-editable eligibility grid

PURPOSE:
  The interactive variant's control board: a dense (date, hour, person)
  grid of slot states, seeded once from the resolver for the whole
  reporting window, then mutated only by explicit operator edits. Once a
  grid exists it IS the eligibility truth; recomputation reads the current
  grid, never a fresh derivation from the shift calendar.

EDIT RULES:
  - A person seeded absent in a slot cannot be toggled into presence; an
    operator cannot invent a shift from the control board.
  - Valid edit targets are eligible and on-break only.
  - Last write wins; there is one operator per session.

SEE ALSO:
  - schedule resolver: SlotStateFor seeds every cell
  - engine.go: Reads EligibleAt from the grid during interactive runs
*/
package attribution

import (
	"github.com/atlas/coverage-engine/schedule"
)

type cellKey struct {
	date    schedule.DayDate
	hour    int
	ordinal int
}

// Grid is the per-run eligibility overlay. Zero value is not usable; build
// with SeedGrid.
type Grid struct {
	people []schedule.Person
	window schedule.DateRange
	cells  map[cellKey]schedule.SlotState
	seed   map[cellKey]schedule.SlotState
}

// SeedGrid builds the grid for the full reporting window from the resolver
// and break policy baked into it.
func SeedGrid(res *schedule.Resolver, window schedule.DateRange) (*Grid, error) {
	if !window.Valid() {
		return nil, schedule.ErrInvalidDateRange
	}

	g := &Grid{
		people: res.Calendar.People(),
		window: window,
		cells:  make(map[cellKey]schedule.SlotState),
		seed:   make(map[cellKey]schedule.SlotState),
	}

	for _, date := range window.Days() {
		for hour := 0; hour < 24; hour++ {
			for _, p := range g.people {
				state := res.SlotStateFor(p, schedule.HourSlot{Date: date, Hour: hour})
				if state == schedule.SlotAbsent {
					continue // absent is the implicit default
				}
				key := cellKey{date: date, hour: hour, ordinal: p.Ordinal}
				g.cells[key] = state
				g.seed[key] = state
			}
		}
	}

	return g, nil
}

// People returns the grid's person columns in ordinal order.
func (g *Grid) People() []schedule.Person {
	out := make([]schedule.Person, len(g.people))
	copy(out, g.people)
	return out
}

// Window returns the grid's reporting window.
func (g *Grid) Window() schedule.DateRange { return g.window }

// Cell returns the current state of one cell.
func (g *Grid) Cell(date schedule.DayDate, hour int, p schedule.Person) schedule.SlotState {
	return g.cells[cellKey{date: date, hour: hour, ordinal: p.Ordinal}]
}

// SetCell applies one operator edit. Edits on cells the seed marked absent
// are rejected, as are targets other than eligible/on-break.
func (g *Grid) SetCell(date schedule.DayDate, hour int, p schedule.Person, state schedule.SlotState) error {
	if !g.window.Contains(date) || hour < 0 || hour > 23 {
		return ErrCellOutOfRange
	}
	if p.Ordinal < 0 || p.Ordinal >= len(g.people) {
		return ErrUnknownPerson
	}
	if state != schedule.SlotEligible && state != schedule.SlotOnBreak {
		return ErrInvalidCellState
	}

	key := cellKey{date: date, hour: hour, ordinal: p.Ordinal}
	if g.seed[key] == schedule.SlotAbsent {
		return &AbsentCellError{Date: date, Hour: hour, Person: g.people[p.Ordinal]}
	}

	g.cells[key] = state
	return nil
}

// EligibleAt implements EligibilityProvider at hour granularity: minutes
// and seconds within the slot share one operator decision.
func (g *Grid) EligibleAt(date schedule.DayDate, t schedule.TimeOfDay) []schedule.Person {
	var eligible []schedule.Person
	for _, p := range g.people {
		if g.cells[cellKey{date: date, hour: t.Hour, ordinal: p.Ordinal}] == schedule.SlotEligible {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// GridRow is one (date, hour) row of grid state, people in ordinal order.
type GridRow struct {
	Date   schedule.DayDate
	Hour   int
	States []schedule.SlotState
}

// Snapshot returns the full grid in row order, suitable for display or
// persistence. The snapshot is a copy; editing it does not touch the grid.
func (g *Grid) Snapshot() []GridRow {
	var rows []GridRow
	for _, date := range g.window.Days() {
		for hour := 0; hour < 24; hour++ {
			row := GridRow{Date: date, Hour: hour, States: make([]schedule.SlotState, len(g.people))}
			for _, p := range g.people {
				row.States[p.Ordinal] = g.cells[cellKey{date: date, hour: hour, ordinal: p.Ordinal}]
			}
			rows = append(rows, row)
		}
	}
	return rows
}
