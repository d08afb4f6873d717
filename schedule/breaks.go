/*
breaks.go - Break window policy ("loza/colación")

PURPOSE:
  Certain shift patterns carve out fixed hours during which the person is
  physically present but must not receive attributed revenue: dish duty and
  meal breaks. The rules are keyed only by the shift's START hour, never by
  calendar date; a 10:00-start shift has the same break windows every day
  it occurs.

POLICY AS DATA:
  Rules live in a table rather than chained conditionals so each rule can be
  tested in isolation and new shift patterns are one table entry, not a
  resolver change.

SEE ALSO:
  - resolver.go: Applies IsOnBreak to presence results
  - attribution grid: Seeds the on-break cell state from this table
*/
package schedule

// HourRange is a half-open [From, To) range of hours within one day.
type HourRange struct {
	From int
	To   int
}

func (r HourRange) Contains(hour int) bool {
	return hour >= r.From && hour < r.To
}

// BreakPolicy maps a shift start hour to the hour windows excluded from
// revenue eligibility during that shift.
type BreakPolicy struct {
	rules map[int][]HourRange
}

// DefaultBreakPolicy returns the operation's standing break rules:
//
//	10:00-start shifts: 10-11 (setup) and 14-16 (colación)
//	05:00-start shifts: 11-14
//	21:00-start shifts: 03-06 (pre-dawn, lands on the overflow date)
//
// Any other start hour has no break windows.
func DefaultBreakPolicy() BreakPolicy {
	return BreakPolicy{rules: map[int][]HourRange{
		10: {{From: 10, To: 11}, {From: 14, To: 16}},
		5:  {{From: 11, To: 14}},
		21: {{From: 3, To: 6}},
	}}
}

// IsOnBreak reports whether the given hour is a break hour for a shift
// starting at shiftStartHour.
func (bp BreakPolicy) IsOnBreak(shiftStartHour, hour int) bool {
	for _, r := range bp.rules[shiftStartHour] {
		if r.Contains(hour) {
			return true
		}
	}
	return false
}

// Windows returns the break windows for a shift start hour, nil if none.
func (bp BreakPolicy) Windows(shiftStartHour int) []HourRange {
	return bp.rules[shiftStartHour]
}
