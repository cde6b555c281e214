// Package presenter turns TimeKeeper events into tray and overlay updates.
//
// Every event is hopped onto the UI loop through the injected Scheduler
// before any view is touched; views are never called from the ticking
// goroutine.
package presenter

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"eyebreak/internal/core/model"
	"eyebreak/internal/core/timekeeper"
)

// Scheduler runs fn on the UI loop without blocking the caller.
type Scheduler func(fn func())

// StatusView is the always-visible status surface (tray menu label).
type StatusView interface {
	SetStatus(label string)
	SetInBreak(inBreak bool)
	SetPaused(paused bool)
}

// BreakView is the blocking break overlay.
type BreakView interface {
	ShowBreak(countdown string)
	HideBreak()
	SetCountdown(countdown string, progress float64)
}

// Presenter is the presentation adapter. Apart from generation and closed,
// its fields are only touched on the UI loop.
//
// Events are tagged with the generation current when the TimeKeeper emitted
// them. Sync and Close advance the generation, so callbacks still queued on
// the UI loop from before a resync or after shutdown are dropped.
type Presenter struct {
	schedule   Scheduler
	status     StatusView
	breaks     BreakView
	logger     *slog.Logger
	generation atomic.Uint64
	closed     atomic.Bool

	phase          model.Phase
	remaining      int
	breakTotal     int
	paused         bool
	overlayVisible bool
}

// New creates a presenter. A nil scheduler runs callbacks inline.
func New(schedule Scheduler, status StatusView, breaks BreakView, logger *slog.Logger) *Presenter {
	if schedule == nil {
		schedule = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		schedule: schedule,
		status:   status,
		breaks:   breaks,
		logger:   logger.With("component", "presenter"),
		phase:    model.PhaseWork,
	}
}

// Handlers returns the TimeKeeper callback table for this presenter.
func (presenter *Presenter) Handlers() timekeeper.Handlers {
	return timekeeper.HandlersFor(func(event timekeeper.Event) {
		if presenter.closed.Load() {
			return
		}
		generation := presenter.generation.Load()
		presenter.schedule(func() {
			if presenter.closed.Load() || presenter.generation.Load() != generation {
				presenter.logger.Debug("stale event dropped", "type", event.Type, "phase", event.Phase)
				return
			}
			presenter.Handle(event)
		})
	})
}

// Close stops all further view updates, including callbacks already queued
// on the UI loop. It must run on the UI loop before the views are released.
func (presenter *Presenter) Close() {
	presenter.closed.Store(true)
	presenter.generation.Add(1)
}

// Handle applies one event. It must run on the UI loop.
func (presenter *Presenter) Handle(event timekeeper.Event) {
	switch event.Type {
	case timekeeper.EventPhaseEnter:
		presenter.enterPhase(event.Phase, event.Remaining)
	case timekeeper.EventPhaseExit:
		presenter.logger.Debug("phase exited", "phase", event.Phase)
	case timekeeper.EventTick:
		presenter.phase = event.Phase
		presenter.remaining = event.Remaining
		presenter.refreshStatus()
		presenter.refreshCountdown()
	case timekeeper.EventIdleReset:
		presenter.phase = model.PhaseWork
		presenter.remaining = event.Remaining
		presenter.refreshStatus()
	}
}

// Sync re-renders from snapshot, e.g. after Start, Restart, Pause or Resume.
// Events emitted before snapshot is read are superseded and dropped. It must
// run on the UI loop.
func (presenter *Presenter) Sync(snapshot func() timekeeper.State) {
	if presenter.closed.Load() {
		return
	}
	presenter.generation.Add(1)
	state := snapshot()

	presenter.paused = state.Paused
	if presenter.status != nil {
		presenter.status.SetPaused(state.Paused)
	}
	if state.Phase != presenter.phase || (state.Phase == model.PhaseWork && presenter.overlayVisible) {
		presenter.enterPhase(state.Phase, state.Remaining)
		return
	}
	presenter.remaining = state.Remaining
	presenter.refreshStatus()
	presenter.refreshCountdown()
}

func (presenter *Presenter) enterPhase(phase model.Phase, remaining int) {
	presenter.phase = phase
	presenter.remaining = remaining
	presenter.logger.Info("phase entered", "phase", phase, "remaining", remaining)

	if presenter.status != nil {
		presenter.status.SetInBreak(phase == model.PhaseBreak)
	}
	if phase == model.PhaseBreak {
		presenter.breakTotal = remaining
		presenter.overlayVisible = true
		if presenter.breaks != nil {
			presenter.breaks.ShowBreak(FormatRemaining(remaining))
		}
	} else if presenter.overlayVisible {
		presenter.overlayVisible = false
		if presenter.breaks != nil {
			presenter.breaks.HideBreak()
		}
	}
	presenter.refreshStatus()
}

func (presenter *Presenter) refreshStatus() {
	if presenter.status == nil {
		return
	}
	presenter.status.SetStatus(StatusLabel(presenter.phase, presenter.remaining))
}

func (presenter *Presenter) refreshCountdown() {
	if presenter.breaks == nil || !presenter.overlayVisible || presenter.phase != model.PhaseBreak {
		return
	}
	presenter.breaks.SetCountdown(FormatRemaining(presenter.remaining), BreakProgress(presenter.breakTotal, presenter.remaining))
}

// StatusLabel formats the tray status line.
func StatusLabel(phase model.Phase, remaining int) string {
	return fmt.Sprintf("%s time remaining: %s", phase.Label(), FormatRemaining(remaining))
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// BreakProgress returns the elapsed fraction of a break.
func BreakProgress(total, remaining int) float64 {
	if total <= 0 {
		return 1
	}
	progress := float64(total-remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
