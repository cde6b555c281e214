package model

import (
	"errors"
	"fmt"
)

// ErrConfigInvalid indicates the duration constraints are violated.
var ErrConfigInvalid = errors.New("invalid config")

const (
	DefaultWorkDurationMinutes  = 20
	DefaultBreakDurationSeconds = 20

	MinWorkDurationMinutes  = 1
	MinBreakDurationSeconds = 20

	// MaxWorkDurationMinutes keeps the work phase, in seconds, far from int overflow.
	MaxWorkDurationMinutes = 24 * 60
)

// Config defines the work/break cycle lengths.
type Config struct {
	WorkDurationMinutes  int
	BreakDurationSeconds int
}

// DefaultConfig returns the 20-20 cycle.
func DefaultConfig() Config {
	return Config{
		WorkDurationMinutes:  DefaultWorkDurationMinutes,
		BreakDurationSeconds: DefaultBreakDurationSeconds,
	}
}

// Validate reports ErrConfigInvalid when a constraint is violated.
func (config Config) Validate() error {
	if config.WorkDurationMinutes < MinWorkDurationMinutes {
		return fmt.Errorf("%w: work duration must be at least %d minute", ErrConfigInvalid, MinWorkDurationMinutes)
	}
	if config.WorkDurationMinutes > MaxWorkDurationMinutes {
		return fmt.Errorf("%w: work duration must be at most %d minutes", ErrConfigInvalid, MaxWorkDurationMinutes)
	}
	if config.BreakDurationSeconds < MinBreakDurationSeconds {
		return fmt.Errorf("%w: break duration must be at least %d seconds", ErrConfigInvalid, MinBreakDurationSeconds)
	}
	if config.WorkDurationMinutes*60 < config.BreakDurationSeconds {
		return fmt.Errorf("%w: break duration cannot exceed work duration", ErrConfigInvalid)
	}
	return nil
}

// PhaseSeconds returns the configured length of a phase in seconds.
func (config Config) PhaseSeconds(phase Phase) int {
	switch phase {
	case PhaseBreak:
		return config.BreakDurationSeconds
	default:
		return config.WorkDurationMinutes * 60
	}
}
