package attribution

import (
	"errors"
	"fmt"

	"github.com/atlas/coverage-engine/schedule"
)

var (
	// ErrCellOutOfRange is returned for edits outside the grid's window.
	ErrCellOutOfRange = errors.New("cell outside reporting window")

	// ErrUnknownPerson is returned for edits against an ordinal the
	// calendar never assigned.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrInvalidCellState is returned for edit targets other than
	// eligible/on-break. Presence itself is not operator-editable.
	ErrInvalidCellState = errors.New("invalid cell state for edit")

	// ErrPersonAbsent is the sentinel under AbsentCellError.
	ErrPersonAbsent = errors.New("person has no shift in this slot")
)

// AbsentCellError reports an attempted edit on a slot the seed marked
// absent.
type AbsentCellError struct {
	Date   schedule.DayDate
	Hour   int
	Person schedule.Person
}

func (e *AbsentCellError) Error() string {
	return fmt.Sprintf("%s has no shift at %s %02d:00", e.Person.Name, e.Date, e.Hour)
}

func (e *AbsentCellError) Unwrap() error { return ErrPersonAbsent }
