/*
parse.go - Shift descriptor parsing

PURPOSE:
  Turns one raw shift cell ("10:00 - 18:00", "22:00-06:30 nocturno", "LIBRE",
  "") into a ShiftInterval or "no shift". Sheets are hand-maintained, so a
  cell that cannot be parsed semantically means the person is not on shift
  that day. Parsing therefore never returns an error to the caller.

ACCEPTED INPUT:
  - Two time tokens separated by a single "-"
  - HH:MM or HH:MM:SS tokens, optionally followed by trailing text
  - Noise words "diurno"/"nocturno" and "/" anywhere in the cell
  - "libre" (any case) and empty cells mean no shift

SEE ALSO:
  - shift.go: The ShiftInterval this produces
  - calendar.go: Applies the parser to every cell at load time
*/
package schedule

import (
	"strconv"
	"strings"
)

// freeSentinel marks an explicitly free day in the source sheets.
const freeSentinel = "libre"

// noiseTokens are shift-category annotations that carry no time information.
var noiseTokens = []string{"diurno", "nocturno", "/"}

// ParseShiftDescriptor parses a raw shift cell. ok is false for empty,
// "libre", or malformed cells: all of them mean "not on shift that day".
func ParseShiftDescriptor(raw string) (ShiftInterval, bool) {
	cell := strings.ToLower(strings.TrimSpace(raw))
	if cell == "" || cell == freeSentinel {
		return ShiftInterval{}, false
	}

	for _, tok := range noiseTokens {
		cell = strings.ReplaceAll(cell, tok, "")
	}
	cell = strings.TrimSpace(cell)

	parts := strings.Split(cell, "-")
	if len(parts) != 2 {
		return ShiftInterval{}, false
	}

	start, ok := parseTimeToken(parts[0])
	if !ok {
		return ShiftInterval{}, false
	}
	end, ok := parseTimeToken(parts[1])
	if !ok {
		return ShiftInterval{}, false
	}

	return ShiftInterval{Start: start, End: end}, true
}

// parseTimeToken parses "H:M", "HH:MM" or "HH:MM:SS", ignoring anything
// after the first space.
func parseTimeToken(tok string) (TimeOfDay, bool) {
	tok = strings.TrimSpace(tok)
	if i := strings.IndexByte(tok, ' '); i >= 0 {
		tok = tok[:i]
	}

	fields := strings.Split(tok, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return TimeOfDay{}, false
	}

	h, err := strconv.Atoi(fields[0])
	if err != nil {
		return TimeOfDay{}, false
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil {
		return TimeOfDay{}, false
	}
	s := 0
	if len(fields) == 3 {
		if s, err = strconv.Atoi(fields[2]); err != nil {
			return TimeOfDay{}, false
		}
	}

	if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: h, Minute: m, Second: s}, true
}
