package timekeeper

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"eyebreak/internal/core/model"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Options contains runtime options for TimeKeeper.
type Options struct {
	TickInterval      time.Duration
	NewTicker         NewTickerFunc
	IdleChecker       IdleChecker
	IdleResetAfter    time.Duration
	IdleCheckInterval time.Duration
	Logger            *slog.Logger
}

// TimeKeeper drives the repeating Work -> Break -> Work cycle.
//
// A TimeKeeper owns at most one ticking goroutine. Start, Restart and Stop
// are serialized; Restart joins the previous goroutine before launching the
// next one. Handlers are delivered one at a time and never after Stop or
// Restart has returned for the cycle they belong to.
type TimeKeeper struct {
	lifecycle sync.Mutex
	delivery  sync.Mutex
	mu        sync.Mutex

	options       Options
	logger        *slog.Logger
	config        model.Config
	handlers      Handlers
	phase         model.Phase
	remaining     int
	running       bool
	paused        bool
	idleChecker   IdleChecker
	lastIdleCheck time.Time
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// New creates a stopped TimeKeeper holding the default config.
func New(options Options) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.NewTicker == nil {
		options.NewTicker = NewSystemTicker
	}
	if options.IdleResetAfter <= 0 {
		options.IdleResetAfter = 5 * time.Minute
	}
	if options.IdleCheckInterval <= 0 {
		options.IdleCheckInterval = 5 * time.Second
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keeper := &TimeKeeper{
		options:     options,
		logger:      logger.With("component", "timekeeper"),
		config:      model.DefaultConfig(),
		idleChecker: options.IdleChecker,
	}
	keeper.resetLocked()
	return keeper
}

// SetIdleChecker injects an idle checker. A nil checker disables idle resets.
func (keeper *TimeKeeper) SetIdleChecker(checker IdleChecker) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.idleChecker = checker
	keeper.lastIdleCheck = time.Time{}
}

// Start begins the cycle at the work phase.
// Calling Start on a running TimeKeeper is a no-op.
func (keeper *TimeKeeper) Start(config model.Config, handlers Handlers) error {
	if err := config.Validate(); err != nil {
		return err
	}

	keeper.lifecycle.Lock()
	defer keeper.lifecycle.Unlock()

	keeper.mu.Lock()
	if keeper.running {
		keeper.mu.Unlock()
		keeper.logger.Debug("start ignored, already running")
		return nil
	}
	keeper.config = config
	keeper.handlers = handlers
	keeper.paused = false
	keeper.resetLocked()
	keeper.running = true
	keeper.mu.Unlock()

	keeper.launch()
	keeper.logger.Info("cycle started",
		"work_minutes", config.WorkDurationMinutes,
		"break_seconds", config.BreakDurationSeconds,
	)
	return nil
}

// Restart adopts config, resets to a full work phase and clears a pause.
// A running TimeKeeper swaps its ticking goroutine; a stopped one stays
// stopped until Start is called.
func (keeper *TimeKeeper) Restart(config model.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	keeper.lifecycle.Lock()
	defer keeper.lifecycle.Unlock()

	keeper.mu.Lock()
	wasRunning := keeper.running
	keeper.mu.Unlock()

	if wasRunning {
		keeper.halt()
	}

	keeper.mu.Lock()
	keeper.config = config
	keeper.paused = false
	keeper.resetLocked()
	keeper.running = wasRunning
	keeper.mu.Unlock()

	if wasRunning {
		keeper.launch()
	}
	keeper.logger.Info("cycle restarted",
		"work_minutes", config.WorkDurationMinutes,
		"break_seconds", config.BreakDurationSeconds,
		"running", wasRunning,
	)
	return nil
}

// Stop halts ticking. It is safe to call repeatedly.
func (keeper *TimeKeeper) Stop() {
	keeper.lifecycle.Lock()
	defer keeper.lifecycle.Unlock()
	if keeper.halt() {
		keeper.logger.Info("cycle stopped")
	}
}

// Pause freezes the countdown without changing the phase.
func (keeper *TimeKeeper) Pause() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.paused = true
}

// Resume unfreezes the countdown.
func (keeper *TimeKeeper) Resume() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.paused = false
}

// SkipBreak ends the current break and returns to work.
func (keeper *TimeKeeper) SkipBreak() {
	keeper.delivery.Lock()
	defer keeper.delivery.Unlock()

	keeper.mu.Lock()
	if !keeper.running || keeper.phase != model.PhaseBreak {
		keeper.mu.Unlock()
		return
	}
	events := keeper.transitionLocked(time.Now())
	handlers := keeper.handlers
	keeper.mu.Unlock()

	keeper.logger.Info("break skipped")
	deliver(handlers, events)
}

// Tick advances the countdown by one unit. It is a no-op when stopped or paused.
func (keeper *TimeKeeper) Tick() {
	keeper.advance(time.Now())
}

// Snapshot returns a copy of the current cycle state.
func (keeper *TimeKeeper) Snapshot() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return State{
		Phase:     keeper.phase,
		Remaining: keeper.remaining,
		Running:   keeper.running,
		Paused:    keeper.paused,
	}
}

// Config returns the active config.
func (keeper *TimeKeeper) Config() model.Config {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

func (keeper *TimeKeeper) launch() {
	ticker := keeper.options.NewTicker(keeper.options.TickInterval)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	keeper.mu.Lock()
	keeper.stopCh = stopCh
	keeper.doneCh = doneCh
	keeper.mu.Unlock()

	go keeper.run(ticker, stopCh, doneCh)
}

// halt stops the ticking goroutine and waits for it and for any in-flight
// delivery to finish. It reports whether anything was running.
func (keeper *TimeKeeper) halt() bool {
	keeper.mu.Lock()
	wasRunning := keeper.running
	stopCh := keeper.stopCh
	doneCh := keeper.doneCh
	keeper.running = false
	keeper.stopCh = nil
	keeper.doneCh = nil
	keeper.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	keeper.delivery.Lock()
	keeper.delivery.Unlock()
	return wasRunning
}

func (keeper *TimeKeeper) run(ticker Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case tickTime := <-ticker.C():
			select {
			case <-stopCh:
				return
			default:
			}
			keeper.advance(tickTime)
		}
	}
}

func (keeper *TimeKeeper) advance(now time.Time) {
	keeper.delivery.Lock()
	defer keeper.delivery.Unlock()

	keeper.mu.Lock()
	if !keeper.running || keeper.paused {
		keeper.mu.Unlock()
		return
	}

	var events []Event
	if keeper.phase == model.PhaseWork {
		events = keeper.checkIdleLocked(now)
	}
	if len(events) == 0 {
		keeper.remaining--
		if keeper.remaining < 0 {
			keeper.remaining = 0
		}
		events = append(events, Event{
			Type:      EventTick,
			Phase:     keeper.phase,
			Remaining: keeper.remaining,
			At:        now,
		})
		if keeper.remaining == 0 {
			events = append(events, keeper.transitionLocked(now)...)
		}
	}
	handlers := keeper.handlers
	keeper.mu.Unlock()

	deliver(handlers, events)
}

func (keeper *TimeKeeper) transitionLocked(now time.Time) []Event {
	exited := keeper.phase
	keeper.phase = exited.Next()
	keeper.remaining = keeper.config.PhaseSeconds(keeper.phase)
	keeper.lastIdleCheck = time.Time{}

	keeper.logger.Debug("phase transition", "from", exited, "to", keeper.phase, "remaining", keeper.remaining)
	return []Event{
		{Type: EventPhaseExit, Phase: exited, At: now},
		{Type: EventPhaseEnter, Phase: keeper.phase, Remaining: keeper.remaining, At: now},
	}
}

func (keeper *TimeKeeper) checkIdleLocked(now time.Time) []Event {
	if keeper.idleChecker == nil {
		return nil
	}
	if !keeper.lastIdleCheck.IsZero() && now.Sub(keeper.lastIdleCheck) < keeper.options.IdleCheckInterval {
		return nil
	}
	keeper.lastIdleCheck = now

	idleDuration, err := keeper.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			keeper.idleChecker = nil
			keeper.logger.Warn("idle detection disabled", "error", err)
			return nil
		}
		keeper.logger.Warn("idle check failed", "error", err)
		return nil
	}
	if idleDuration < keeper.options.IdleResetAfter {
		return nil
	}

	keeper.resetLocked()
	keeper.logger.Debug("work countdown reset after idle", "idle", idleDuration)
	return []Event{{
		Type:      EventIdleReset,
		Phase:     model.PhaseWork,
		Remaining: keeper.remaining,
		At:        now,
	}}
}

func (keeper *TimeKeeper) resetLocked() {
	keeper.phase = model.PhaseWork
	keeper.remaining = keeper.config.PhaseSeconds(model.PhaseWork)
}

func deliver(handlers Handlers, events []Event) {
	for _, event := range events {
		handlers.dispatch(event)
	}
}
