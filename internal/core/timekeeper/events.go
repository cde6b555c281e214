package timekeeper

import (
	"time"

	"eyebreak/internal/core/model"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventTick       EventType = "tick"
	EventPhaseEnter EventType = "phase_enter"
	EventPhaseExit  EventType = "phase_exit"
	EventIdleReset  EventType = "idle_reset"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type      EventType
	Phase     model.Phase
	Remaining int
	At        time.Time
}

// Handlers is the callback table a TimeKeeper reports to.
// Handlers run on the ticking goroutine and must not call back into the
// TimeKeeper except through Snapshot.
type Handlers struct {
	OnTick       func(remaining int, phase model.Phase)
	OnPhaseEnter func(phase model.Phase, remaining int)
	OnPhaseExit  func(phase model.Phase)
	OnIdleReset  func(remaining int)
}

// HandlersFor routes every callback into a single typed event sink.
func HandlersFor(sink func(Event)) Handlers {
	if sink == nil {
		return Handlers{}
	}
	return Handlers{
		OnTick: func(remaining int, phase model.Phase) {
			sink(Event{Type: EventTick, Phase: phase, Remaining: remaining, At: time.Now()})
		},
		OnPhaseEnter: func(phase model.Phase, remaining int) {
			sink(Event{Type: EventPhaseEnter, Phase: phase, Remaining: remaining, At: time.Now()})
		},
		OnPhaseExit: func(phase model.Phase) {
			sink(Event{Type: EventPhaseExit, Phase: phase, At: time.Now()})
		},
		OnIdleReset: func(remaining int) {
			sink(Event{Type: EventIdleReset, Phase: model.PhaseWork, Remaining: remaining, At: time.Now()})
		},
	}
}

func (handlers Handlers) dispatch(event Event) {
	switch event.Type {
	case EventTick:
		if handlers.OnTick != nil {
			handlers.OnTick(event.Remaining, event.Phase)
		}
	case EventPhaseEnter:
		if handlers.OnPhaseEnter != nil {
			handlers.OnPhaseEnter(event.Phase, event.Remaining)
		}
	case EventPhaseExit:
		if handlers.OnPhaseExit != nil {
			handlers.OnPhaseExit(event.Phase)
		}
	case EventIdleReset:
		if handlers.OnIdleReset != nil {
			handlers.OnIdleReset(event.Remaining)
		}
	}
}

// State is a read-only copy of the cycle state.
type State struct {
	Phase     model.Phase
	Remaining int
	Running   bool
	Paused    bool
}
