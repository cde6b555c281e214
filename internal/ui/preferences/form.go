package preferences

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidNumber indicates a duration field is not a whole number.
var ErrInvalidNumber = errors.New("please enter valid numbers for durations")

// ParseDurations applies the text of the duration fields to base and
// validates the resulting cycle.
func ParseDurations(base Settings, workMinutes, breakSeconds string) (Settings, error) {
	work, err := strconv.Atoi(strings.TrimSpace(workMinutes))
	if err != nil {
		return base, ErrInvalidNumber
	}
	brk, err := strconv.Atoi(strings.TrimSpace(breakSeconds))
	if err != nil {
		return base, ErrInvalidNumber
	}

	settings := base
	settings.WorkDurationMinutes = work
	settings.BreakDurationSeconds = brk
	if err := settings.Config().Validate(); err != nil {
		return base, err
	}
	return settings, nil
}
