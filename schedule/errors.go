package schedule

import "errors"

// Sentinel errors for input-shape problems. Cell-level parse failures are
// never errors; they degrade to "no shift" inside the parser.
var (
	// ErrNoDateColumns is returned when the shift table header carries no
	// parseable calendar dates.
	ErrNoDateColumns = errors.New("shift table has no date columns")

	// ErrInvalidDateRange is returned when a reporting range ends before
	// it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")
)
