/*
shift.go - Shift intervals and containment rules

PURPOSE:
  A ShiftInterval is the normalized form of one shift cell: the wall-clock
  start and end of a duty period. Containment is where the midnight rules
  live, so the resolver and the grid seeder share one boundary convention.

BOUNDARY CONVENTION:
  Intervals are half-open: [start, end). A shift 10:00-18:00 covers 17:59:59
  but not 18:00:00. A crossing shift (start > end, e.g. 21:00-06:00) covers
  t >= start on its anchor date and t < end on the following date. The
  half-open end keeps back-to-back shifts (06:00-14:00 after 21:00-06:00)
  from double-claiming the boundary hour.

SEE ALSO:
  - parse.go: Produces ShiftInterval from raw cells
  - resolver.go: Applies containment across the two candidate anchor dates
*/
package schedule

// ShiftInterval is a (start, end) pair of wall-clock times. Start > end
// means the shift crosses midnight into the following date.
type ShiftInterval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (s ShiftInterval) CrossesMidnight() bool {
	return s.End.Before(s.Start)
}

// ContainsSameDay reports whether a time on the interval's own anchor date
// falls inside it.
func (s ShiftInterval) ContainsSameDay(t TimeOfDay) bool {
	if s.CrossesMidnight() {
		return t.AtOrAfter(s.Start)
	}
	return t.AtOrAfter(s.Start) && t.Before(s.End)
}

// ContainsOverflow reports whether a time on the date AFTER the anchor date
// falls inside the spilled-over tail of a crossing interval. Non-crossing
// intervals have no tail.
func (s ShiftInterval) ContainsOverflow(t TimeOfDay) bool {
	return s.CrossesMidnight() && t.Before(s.End)
}

func (s ShiftInterval) String() string {
	return s.Start.String() + "-" + s.End.String()
}
