/*
Package schedule provides the shift calendar domain: day and time-of-day
value types, the shift descriptor parser, the per-person shift calendar,
the break policy table, and the active-set resolver.

PURPOSE:
  Everything needed to answer "who is on duty, and who may receive revenue,
  at this moment?" lives here. The attribution package consumes the answers;
  it never inspects raw shift data itself.

KEY CONCEPTS IN THIS FILE (time.go):
  - DayDate: A calendar date with no time component (used as map keys)
  - TimeOfDay: A wall-clock time within a single day
  - DateRange: An inclusive [From, To] span of calendar dates
  - HourSlot: A (date, hour) bucket, the granularity of all reports

DESIGN PRINCIPLES:
  1. Comparability: DayDate and HourSlot are plain comparable structs so
     they can key maps without time.Location pitfalls
  2. Half-open hours: an hour slot covers [hh:00:00, hh+1:00:00)
  3. No time zones: shift sheets and transaction exports come from the same
     operation and share one implicit local clock

SEE ALSO:
  - shift.go: ShiftInterval built on TimeOfDay
  - calendar.go: Calendar keyed by (person, DayDate)
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY DATE - Calendar date without time
// =============================================================================

// DayDate is a calendar date. Plain fields keep it comparable, unlike
// time.Time whose Location pointer breaks == for map keys.
type DayDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDayDate(year int, month time.Month, day int) DayDate {
	// Route through time.Date so out-of-range components normalize.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DayDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DayOf extracts the calendar date from a timestamp.
func DayOf(t time.Time) DayDate {
	return DayDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d DayDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DayDate) AddDays(n int) DayDate { return DayOf(d.Time().AddDate(0, 0, n)) }
func (d DayDate) Next() DayDate         { return d.AddDays(1) }
func (d DayDate) Prev() DayDate         { return d.AddDays(-1) }

func (d DayDate) Before(o DayDate) bool { return d.Time().Before(o.Time()) }
func (d DayDate) After(o DayDate) bool  { return d.Time().After(o.Time()) }
func (d DayDate) Equal(o DayDate) bool  { return d == o }
func (d DayDate) IsZero() bool          { return d == DayDate{} }

func (d DayDate) String() string { return d.Time().Format("2006-01-02") }

// ParseDayDate accepts the date spellings seen in shift sheet headers.
func ParseDayDate(s string) (DayDate, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return DayOf(t), nil
		}
	}
	return DayDate{}, fmt.Errorf("unrecognized date %q", s)
}

// =============================================================================
// TIME OF DAY - Wall-clock time within a day
// =============================================================================

type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// TimeOfDayOf extracts the wall-clock part of a timestamp.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

func (t TimeOfDay) Before(o TimeOfDay) bool    { return t.seconds() < o.seconds() }
func (t TimeOfDay) AtOrAfter(o TimeOfDay) bool { return t.seconds() >= o.seconds() }
func (t TimeOfDay) Equal(o TimeOfDay) bool     { return t.seconds() == o.seconds() }

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// =============================================================================
// DATE RANGE - Inclusive reporting window
// =============================================================================

// DateRange is the inclusive [From, To] window that bounds a reporting run.
type DateRange struct {
	From DayDate
	To   DayDate
}

func (r DateRange) Valid() bool { return !r.To.Before(r.From) }

func (r DateRange) Contains(d DayDate) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Days returns every date in the range, in order.
func (r DateRange) Days() []DayDate {
	var days []DayDate
	for d := r.From; !d.After(r.To); d = d.Next() {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.From.String() + ", " + r.To.String() + "]"
}

// =============================================================================
// HOUR SLOT - The (date, hour) bucket every report row hangs off
// =============================================================================

type HourSlot struct {
	Date DayDate
	Hour int
}

// Label renders the slot the way hourly report rows show it, e.g.
// "10:00 - 11:00".
func (s HourSlot) Label() string {
	return fmt.Sprintf("%02d:00 - %02d:00", s.Hour, (s.Hour+1)%24)
}

// SlotOf buckets a timestamp into its hour slot.
func SlotOf(t time.Time) HourSlot {
	return HourSlot{Date: DayOf(t), Hour: t.Hour()}
}
