/*
calendar.go - The per-person, per-date shift calendar

PURPOSE:
  Loads the raw shift table into an immutable Calendar and assigns every
  person their stable ordinal. The ordinal is the person's column identity
  for the entire run: every downstream report indexes people by it, so it
  is assigned exactly once, in first-seen row order, and never reassigned.

RAW TABLE SHAPE:
  The header carries calendar dates; each data row carries one person's
  display name plus one shift cell per date. Columns whose header did not
  parse as a date are already dropped by the ingest layer.

NAME NORMALIZATION:
  Lookup keys are trimmed and case-folded; the display form keeps the
  original (trimmed) spelling. Two rows that fold to the same key are the
  same person; when both rows carry a parseable cell for the same date,
  the later row's cell wins.

SEE ALSO:
  - parse.go: Cell parsing (malformed cells degrade to "no shift")
  - resolver.go: Consumes the calendar to answer presence queries
*/
package schedule

import "strings"

// =============================================================================
// PERSON - Identity plus stable report ordinal
// =============================================================================

type Person struct {
	Name    string // display form
	Ordinal int    // fixed column position for the whole run
}

// =============================================================================
// RAW SHIFT TABLE - Input shape handed over by the ingest layer
// =============================================================================

type RawShiftTable struct {
	Dates []DayDate
	Rows  []RawShiftRow
}

type RawShiftRow struct {
	Name  string
	Cells []string // aligned with Dates; short rows are padded as empty
}

// =============================================================================
// CALENDAR
// =============================================================================

type shiftKey struct {
	ordinal int
	date    DayDate
}

// Calendar maps (person, date) to an optional shift interval. Built once
// per run, immutable thereafter.
type Calendar struct {
	people []Person
	byKey  map[string]int // folded name -> ordinal
	shifts map[shiftKey]ShiftInterval
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LoadCalendar builds the calendar from a raw shift table. Person ordinals
// follow first-seen row order. Rows with an empty name are skipped;
// unparsable cells become "no shift".
func LoadCalendar(table RawShiftTable) (*Calendar, error) {
	if len(table.Dates) == 0 {
		return nil, ErrNoDateColumns
	}

	cal := &Calendar{
		byKey:  make(map[string]int),
		shifts: make(map[shiftKey]ShiftInterval),
	}

	for _, row := range table.Rows {
		display := strings.TrimSpace(row.Name)
		key := foldName(display)
		if key == "" {
			continue
		}

		ordinal, seen := cal.byKey[key]
		if !seen {
			ordinal = len(cal.people)
			cal.byKey[key] = ordinal
			cal.people = append(cal.people, Person{Name: display, Ordinal: ordinal})
		}

		for i, date := range table.Dates {
			if i >= len(row.Cells) {
				break
			}
			interval, ok := ParseShiftDescriptor(row.Cells[i])
			if !ok {
				continue
			}
			cal.shifts[shiftKey{ordinal: ordinal, date: date}] = interval
		}
	}

	return cal, nil
}

// People returns the stable ordered person list. The slice index of each
// entry equals its Ordinal.
func (c *Calendar) People() []Person {
	out := make([]Person, len(c.people))
	copy(out, c.people)
	return out
}

// Lookup finds a person by name (any spacing/case).
func (c *Calendar) Lookup(name string) (Person, bool) {
	ordinal, ok := c.byKey[foldName(name)]
	if !ok {
		return Person{}, false
	}
	return c.people[ordinal], true
}

// ShiftFor returns the shift interval for a person on a date, if any.
func (c *Calendar) ShiftFor(p Person, date DayDate) (ShiftInterval, bool) {
	interval, ok := c.shifts[shiftKey{ordinal: p.Ordinal, date: date}]
	return interval, ok
}

// WorkedDays counts the distinct dates in the range on which the person has
// a shift. Feeds the period totals report.
func (c *Calendar) WorkedDays(p Person, r DateRange) int {
	n := 0
	for d := r.From; !d.After(r.To); d = d.Next() {
		if _, ok := c.shifts[shiftKey{ordinal: p.Ordinal, date: d}]; ok {
			n++
		}
	}
	return n
}
