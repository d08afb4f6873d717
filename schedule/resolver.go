/*
resolver.go - Active-set resolution

PURPOSE:
  Answers, for any timestamp: which people are physically on shift, and
  which of those may receive attributed revenue right now. These are the
  seed values for the eligibility grid and the direct eligibility source
  in non-interactive runs.

ALGORITHM:
  For each person, two candidate intervals are checked: the one anchored to
  the timestamp's own date, and the one anchored to the previous date (to
  catch midnight-crossing carryover). The same-day interval is checked
  first and wins when both match, so its start hour keys the break lookup.
  A person appears in the result at most once.

COMPLEXITY:
  O(people) per query. Callers batching a reporting window should iterate
  (date, hour) slots rather than individual transactions.

SEE ALSO:
  - shift.go: Containment semantics (half-open, crossing rules)
  - breaks.go: The eligibility carve-outs
*/
package schedule

import "time"

// SlotState is one person's status within one hour slot.
type SlotState int

const (
	SlotAbsent   SlotState = iota // no shift covers the slot
	SlotOnBreak                   // on shift, inside a break window
	SlotEligible                  // on shift and attributable
)

func (s SlotState) String() string {
	switch s {
	case SlotOnBreak:
		return "on_break"
	case SlotEligible:
		return "eligible"
	default:
		return "absent"
	}
}

// Resolver resolves presence and eligibility against a calendar and a
// break policy.
type Resolver struct {
	Calendar *Calendar
	Breaks   BreakPolicy
}

func NewResolver(cal *Calendar, breaks BreakPolicy) *Resolver {
	return &Resolver{Calendar: cal, Breaks: breaks}
}

// placement is the interval that put a person on duty at a moment.
type placement struct {
	interval ShiftInterval
	found    bool
}

// placeAt finds the interval covering (date, t) for one person: same-day
// anchor first, then the previous date's crossing tail.
func (r *Resolver) placeAt(p Person, date DayDate, t TimeOfDay) placement {
	if interval, ok := r.Calendar.ShiftFor(p, date); ok && interval.ContainsSameDay(t) {
		return placement{interval: interval, found: true}
	}
	if interval, ok := r.Calendar.ShiftFor(p, date.Prev()); ok && interval.ContainsOverflow(t) {
		return placement{interval: interval, found: true}
	}
	return placement{}
}

// Resolve returns the physically present set and the eligible subset at a
// timestamp. Both slices are ordered by person ordinal.
func (r *Resolver) Resolve(at time.Time) (present, eligible []Person) {
	return r.ResolveAt(DayOf(at), TimeOfDayOf(at))
}

// ResolveAt is Resolve with the date and wall-clock time already split.
func (r *Resolver) ResolveAt(date DayDate, t TimeOfDay) (present, eligible []Person) {
	for _, p := range r.Calendar.people {
		pl := r.placeAt(p, date, t)
		if !pl.found {
			continue
		}
		present = append(present, p)
		if !r.Breaks.IsOnBreak(pl.interval.Start.Hour, t.Hour) {
			eligible = append(eligible, p)
		}
	}
	return present, eligible
}

// SlotStateFor classifies one person within one hour slot, evaluated at the
// top of the hour. This is the grid seeding primitive.
func (r *Resolver) SlotStateFor(p Person, slot HourSlot) SlotState {
	t := TimeOfDay{Hour: slot.Hour}
	pl := r.placeAt(p, slot.Date, t)
	if !pl.found {
		return SlotAbsent
	}
	if r.Breaks.IsOnBreak(pl.interval.Start.Hour, slot.Hour) {
		return SlotOnBreak
	}
	return SlotEligible
}
