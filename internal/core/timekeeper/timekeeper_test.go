package timekeeper

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"eyebreak/internal/core/model"
)

type fakeTicker struct {
	ch      chan time.Time
	factory *fakeTickerFactory
	once    sync.Once
}

func (ticker *fakeTicker) C() <-chan time.Time {
	return ticker.ch
}

func (ticker *fakeTicker) Stop() {
	ticker.once.Do(func() {
		ticker.factory.mu.Lock()
		ticker.factory.active--
		ticker.factory.mu.Unlock()
	})
}

type fakeTickerFactory struct {
	mu      sync.Mutex
	created int
	active  int
	latest  *fakeTicker
}

func (factory *fakeTickerFactory) NewTicker(time.Duration) Ticker {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	ticker := &fakeTicker{ch: make(chan time.Time), factory: factory}
	factory.created++
	factory.active++
	factory.latest = ticker
	return ticker
}

func (factory *fakeTickerFactory) counts() (created, active int) {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	return factory.created, factory.active
}

func (factory *fakeTickerFactory) fire(t *testing.T) {
	t.Helper()
	factory.mu.Lock()
	ticker := factory.latest
	factory.mu.Unlock()
	if ticker == nil {
		t.Fatalf("no ticker created")
	}
	select {
	case ticker.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatalf("ticker goroutine did not receive tick")
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan Event
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan Event, 1024)}
}

func (rec *recorder) handlers() Handlers {
	return HandlersFor(func(event Event) {
		rec.mu.Lock()
		rec.events = append(rec.events, event)
		rec.mu.Unlock()
		rec.notify <- event
	})
}

func (rec *recorder) snapshot() []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Event(nil), rec.events...)
}

func (rec *recorder) waitFor(t *testing.T, eventType EventType) Event {
	t.Helper()
	for {
		select {
		case event := <-rec.notify:
			if event.Type == eventType {
				return event
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func ofType(events []Event, eventType EventType) []Event {
	var filtered []Event
	for _, event := range events {
		if event.Type == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func newTestKeeper() (*TimeKeeper, *fakeTickerFactory) {
	factory := &fakeTickerFactory{}
	keeper := New(Options{
		NewTicker: factory.NewTicker,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return keeper, factory
}

func tickN(keeper *TimeKeeper, n int) {
	for i := 0; i < n; i++ {
		keeper.Tick()
	}
}

func TestWorkPhaseEndsWithSingleBreakEntry(t *testing.T) {
	t.Parallel()
	configs := []model.Config{
		{WorkDurationMinutes: 1, BreakDurationSeconds: 20},
		{WorkDurationMinutes: 2, BreakDurationSeconds: 60},
		{WorkDurationMinutes: 20, BreakDurationSeconds: 20},
	}

	for _, config := range configs {
		keeper, _ := newTestKeeper()
		rec := newRecorder()
		if err := keeper.Start(config, rec.handlers()); err != nil {
			t.Fatalf("start: %v", err)
		}
		tickN(keeper, config.WorkDurationMinutes*60)
		keeper.Stop()

		enters := ofType(rec.snapshot(), EventPhaseEnter)
		if len(enters) != 1 || enters[0].Phase != model.PhaseBreak {
			t.Fatalf("config %+v: expected exactly one break entry, got %+v", config, enters)
		}
		if enters[0].Remaining != config.BreakDurationSeconds {
			t.Fatalf("break entry remaining = %d, want %d", enters[0].Remaining, config.BreakDurationSeconds)
		}
	}
}

func TestFullCycleReturnsToInitialState(t *testing.T) {
	t.Parallel()
	configs := []model.Config{
		{WorkDurationMinutes: 1, BreakDurationSeconds: 20},
		{WorkDurationMinutes: 1, BreakDurationSeconds: 60},
		{WorkDurationMinutes: 5, BreakDurationSeconds: 45},
	}

	for _, config := range configs {
		keeper, _ := newTestKeeper()
		rec := newRecorder()
		if err := keeper.Start(config, rec.handlers()); err != nil {
			t.Fatalf("start: %v", err)
		}
		initial := keeper.Snapshot()

		tickN(keeper, config.WorkDurationMinutes*60+config.BreakDurationSeconds)

		state := keeper.Snapshot()
		if state != initial {
			t.Fatalf("config %+v: state after cycle = %+v, want %+v", config, state, initial)
		}
		enters := ofType(rec.snapshot(), EventPhaseEnter)
		if len(enters) != 2 || enters[0].Phase != model.PhaseBreak || enters[1].Phase != model.PhaseWork {
			t.Fatalf("config %+v: unexpected phase entries %+v", config, enters)
		}
		keeper.Stop()
	}
}

func TestMinimumCycleBoundary(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	tickN(keeper, 80)
	events := rec.snapshot()

	var expected []Event
	for remaining := 59; remaining >= 0; remaining-- {
		expected = append(expected, Event{Type: EventTick, Phase: model.PhaseWork, Remaining: remaining})
	}
	expected = append(expected,
		Event{Type: EventPhaseExit, Phase: model.PhaseWork},
		Event{Type: EventPhaseEnter, Phase: model.PhaseBreak, Remaining: 20},
	)
	for remaining := 19; remaining >= 0; remaining-- {
		expected = append(expected, Event{Type: EventTick, Phase: model.PhaseBreak, Remaining: remaining})
	}
	expected = append(expected,
		Event{Type: EventPhaseExit, Phase: model.PhaseBreak},
		Event{Type: EventPhaseEnter, Phase: model.PhaseWork, Remaining: 60},
	)

	if len(events) != len(expected) {
		t.Fatalf("got %d events, want %d", len(events), len(expected))
	}
	for i := range expected {
		got := events[i]
		if got.Type != expected[i].Type || got.Phase != expected[i].Phase || got.Remaining != expected[i].Remaining {
			t.Fatalf("event %d = %+v, want %+v", i, got, expected[i])
		}
	}
}

func TestStartIsNoOpWhileRunning(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	rec := newRecorder()
	config := model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}
	if err := keeper.Start(config, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()
	tickN(keeper, 10)

	if err := keeper.Start(model.Config{WorkDurationMinutes: 5, BreakDurationSeconds: 20}, Handlers{}); err != nil {
		t.Fatalf("redundant start: %v", err)
	}
	if state := keeper.Snapshot(); state.Remaining != 50 || state.Phase != model.PhaseWork {
		t.Fatalf("redundant start changed state: %+v", state)
	}
	if keeper.Config() != config {
		t.Fatalf("redundant start replaced config")
	}
	if created, active := factory.counts(); created != 1 || active != 1 {
		t.Fatalf("tickers created=%d active=%d, want 1/1", created, active)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 90}, Handlers{})
	if !errors.Is(err, model.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if keeper.Snapshot().Running {
		t.Fatalf("keeper must not run after rejected start")
	}
	if created, _ := factory.counts(); created != 0 {
		t.Fatalf("no ticker expected, got %d", created)
	}
}

func TestRestartResetsAtAnyOffset(t *testing.T) {
	t.Parallel()
	config := model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 30}
	next := model.Config{WorkDurationMinutes: 2, BreakDurationSeconds: 20}

	for _, offset := range []int{0, 1, 30, 59, 60, 61, 75, 89} {
		keeper, _ := newTestKeeper()
		rec := newRecorder()
		if err := keeper.Start(config, rec.handlers()); err != nil {
			t.Fatalf("start: %v", err)
		}
		tickN(keeper, offset)

		if err := keeper.Restart(next); err != nil {
			t.Fatalf("restart: %v", err)
		}
		state := keeper.Snapshot()
		if state.Phase != model.PhaseWork || state.Remaining != 120 || !state.Running {
			t.Fatalf("offset %d: state after restart = %+v", offset, state)
		}
		before := len(rec.snapshot())

		keeper.Tick()
		events := rec.snapshot()[before:]
		if len(events) != 1 || events[0].Type != EventTick || events[0].Remaining != 119 {
			t.Fatalf("offset %d: events after restart = %+v", offset, events)
		}
		keeper.Stop()
	}
}

func TestRestartRejectsInvalidConfigAndKeepsState(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	config := model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}
	if err := keeper.Start(config, Handlers{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()
	tickN(keeper, 7)
	before := keeper.Snapshot()

	err := keeper.Restart(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 90})
	if !errors.Is(err, model.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if keeper.Snapshot() != before {
		t.Fatalf("state changed after rejected restart")
	}
	if keeper.Config() != config {
		t.Fatalf("config changed after rejected restart")
	}
	if created, active := factory.counts(); created != 1 || active != 1 {
		t.Fatalf("tickers created=%d active=%d, want 1/1", created, active)
	}
}

func TestRestartTwiceKeepsSingleTickSource(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = keeper.Restart(model.Config{WorkDurationMinutes: 3, BreakDurationSeconds: 20})
	}()
	wg.Wait()
	if err := keeper.Restart(model.Config{WorkDurationMinutes: 4, BreakDurationSeconds: 30}); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if created, active := factory.counts(); created != 3 || active != 1 {
		t.Fatalf("tickers created=%d active=%d, want 3/1", created, active)
	}
	if state := keeper.Snapshot(); state.Remaining != 240 || state.Phase != model.PhaseWork {
		t.Fatalf("state = %+v, want work/240", state)
	}
	if got := keeper.Config(); got.WorkDurationMinutes != 4 || got.BreakDurationSeconds != 30 {
		t.Fatalf("config = %+v", got)
	}

	factory.fire(t)
	event := rec.waitFor(t, EventTick)
	if event.Remaining != 239 {
		t.Fatalf("first tick after restarts = %d, want 239", event.Remaining)
	}
}

func TestRestartOnStoppedKeeperStaysStopped(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	if err := keeper.Restart(model.Config{WorkDurationMinutes: 2, BreakDurationSeconds: 20}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	state := keeper.Snapshot()
	if state.Running || state.Remaining != 120 {
		t.Fatalf("state = %+v", state)
	}
	if created, _ := factory.counts(); created != 0 {
		t.Fatalf("restart on stopped keeper created %d tickers", created)
	}
}

func TestStopIsIdempotentAndSilencesTicks(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	keeper.Stop()

	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	factory.fire(t)
	rec.waitFor(t, EventTick)

	keeper.Stop()
	keeper.Stop()
	keeper.Stop()

	before := len(rec.snapshot())
	tickN(keeper, 100)
	if after := len(rec.snapshot()); after != before {
		t.Fatalf("ticks delivered after stop: %d", after-before)
	}
	if _, active := factory.counts(); active != 0 {
		t.Fatalf("active tickers after stop = %d", active)
	}
	if keeper.Snapshot().Running {
		t.Fatalf("keeper still running")
	}
}

func TestStartAfterStopBeginsAtWork(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	config := model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}
	if err := keeper.Start(config, Handlers{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	tickN(keeper, 65)
	keeper.Stop()

	if err := keeper.Start(config, Handlers{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()
	if state := keeper.Snapshot(); state.Phase != model.PhaseWork || state.Remaining != 60 {
		t.Fatalf("state = %+v", state)
	}
}

func TestTickerGoroutineDrivesCountdown(t *testing.T) {
	t.Parallel()
	keeper, factory := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	for want := 59; want >= 57; want-- {
		factory.fire(t)
		event := rec.waitFor(t, EventTick)
		if event.Remaining != want || event.Phase != model.PhaseWork {
			t.Fatalf("tick = %+v, want remaining %d", event, want)
		}
	}
}

func TestPauseIgnoresTicks(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	tickN(keeper, 5)
	keeper.Pause()
	tickN(keeper, 10)
	if state := keeper.Snapshot(); state.Remaining != 55 || !state.Paused {
		t.Fatalf("paused state = %+v", state)
	}
	keeper.Resume()
	keeper.Tick()
	if state := keeper.Snapshot(); state.Remaining != 54 || state.Paused {
		t.Fatalf("resumed state = %+v", state)
	}
}

func TestRestartResumesPausedCycle(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	rec := newRecorder()
	config := model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}
	if err := keeper.Start(config, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	tickN(keeper, 5)
	keeper.Pause()
	if err := keeper.Restart(config); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if state := keeper.Snapshot(); state.Paused || state.Remaining != 60 {
		t.Fatalf("restarted state = %+v", state)
	}
	keeper.Tick()
	if state := keeper.Snapshot(); state.Remaining != 59 {
		t.Fatalf("restart must resume ticking, state = %+v", state)
	}
}

func TestSkipBreakReturnsToWork(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	keeper.SkipBreak()
	if len(rec.snapshot()) != 0 {
		t.Fatalf("skip during work must be a no-op")
	}

	tickN(keeper, 65)
	keeper.SkipBreak()

	events := rec.snapshot()
	last := events[len(events)-2:]
	if last[0].Type != EventPhaseExit || last[0].Phase != model.PhaseBreak {
		t.Fatalf("expected break exit, got %+v", last[0])
	}
	if last[1].Type != EventPhaseEnter || last[1].Phase != model.PhaseWork || last[1].Remaining != 60 {
		t.Fatalf("expected work entry, got %+v", last[1])
	}
}

type fakeIdle struct {
	mu    sync.Mutex
	idle  time.Duration
	err   error
	calls int
}

func (idle *fakeIdle) IdleDuration() (time.Duration, error) {
	idle.mu.Lock()
	defer idle.mu.Unlock()
	idle.calls++
	return idle.idle, idle.err
}

func TestIdleResetRestartsWorkCountdown(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	rec := newRecorder()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, rec.handlers()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()
	tickN(keeper, 30)

	checker := &fakeIdle{idle: 10 * time.Minute}
	keeper.SetIdleChecker(checker)
	keeper.Tick()

	resets := ofType(rec.snapshot(), EventIdleReset)
	if len(resets) != 1 || resets[0].Remaining != 60 {
		t.Fatalf("idle resets = %+v", resets)
	}
	if state := keeper.Snapshot(); state.Remaining != 60 {
		t.Fatalf("remaining after idle reset = %d", state.Remaining)
	}
}

func TestIdleUnsupportedDisablesChecks(t *testing.T) {
	t.Parallel()
	keeper, _ := newTestKeeper()
	if err := keeper.Start(model.Config{WorkDurationMinutes: 1, BreakDurationSeconds: 20}, Handlers{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer keeper.Stop()

	checker := &fakeIdle{err: ErrIdleUnsupported}
	keeper.SetIdleChecker(checker)
	tickN(keeper, 3)
	if checker.calls != 1 {
		t.Fatalf("idle checker calls = %d, want 1", checker.calls)
	}
	if state := keeper.Snapshot(); state.Remaining != 57 {
		t.Fatalf("remaining = %d, want 57", state.Remaining)
	}
}
