package model

// Phase is a step of the work/break cycle.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// Next returns the phase that follows.
func (phase Phase) Next() Phase {
	if phase == PhaseBreak {
		return PhaseWork
	}
	return PhaseBreak
}

// Label returns the capitalized phase name.
func (phase Phase) Label() string {
	if phase == PhaseBreak {
		return "Break"
	}
	return "Work"
}
