// Package bootstrap owns the application context shared by the GUI and
// terminal front ends.
package bootstrap

import (
	"errors"
	"log/slog"

	"eyebreak/internal/core/timekeeper"
	"eyebreak/internal/platform"
	"eyebreak/internal/storage"
	"eyebreak/internal/ui/preferences"
	"eyebreak/internal/ui/presenter"
)

// AppName names the config directory, autostart entry and instance lock.
const AppName = "EyeBreak"

// SettingsStore persists the single settings record.
type SettingsStore interface {
	Load() (preferences.Settings, error)
	Save(preferences.Settings) error
	Exists() bool
}

// Options configures New. Zero values select the production collaborators.
type Options struct {
	ConfigPath   string
	Store        SettingsStore
	Registrar    platform.Registrar
	IdleProvider platform.IdleProvider
	NewTicker    timekeeper.NewTickerFunc
	Logger       *slog.Logger
}

// AppContext holds the active settings, the TimeKeeper and the presentation
// adapter. Its methods must be called from the UI loop.
type AppContext struct {
	Settings preferences.Settings
	Keeper   *timekeeper.TimeKeeper

	// OnWarning surfaces non-fatal failures to the user. Defaults to logging.
	OnWarning func(error)
	// OnSettingsChanged runs after new settings are applied.
	OnSettingsChanged func(preferences.Settings)

	store     SettingsStore
	registrar platform.Registrar
	idle      platform.IdleProvider
	presenter *presenter.Presenter
	logger    *slog.Logger
	firstRun  bool
	started   bool
	shutdown  bool
	teardown  []func()
	loadErr   error
}

// New loads settings and builds a stopped AppContext. A settings file that
// cannot be read is not fatal: defaults are used and the failure is kept for
// Warnings.
func New(options Options) (*AppContext, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := options.Store
	if store == nil {
		if options.ConfigPath != "" {
			store = storage.NewStoreAt(options.ConfigPath)
		} else {
			resolved, err := storage.NewStore(AppName)
			if err != nil {
				return nil, err
			}
			store = resolved
		}
	}
	registrar := options.Registrar
	if registrar == nil {
		registrar = platform.NewRegistrar()
	}
	idle := options.IdleProvider
	if idle == nil {
		idle = platform.NewIdleProvider()
	}

	settings, loadErr := store.Load()
	if loadErr != nil {
		logger.Warn("settings unavailable, using defaults", "error", loadErr)
	}

	appCtx := &AppContext{
		Settings:  settings,
		store:     store,
		registrar: registrar,
		idle:      idle,
		logger:    logger,
		firstRun:  !store.Exists(),
		loadErr:   loadErr,
		Keeper: timekeeper.New(timekeeper.Options{
			NewTicker: options.NewTicker,
			Logger:    logger,
		}),
	}
	appCtx.OnWarning = func(err error) {
		appCtx.logger.Warn("warning", "error", err)
	}
	return appCtx, nil
}

// Attach sets the presentation adapter receiving TimeKeeper events.
func (appCtx *AppContext) Attach(adapter *presenter.Presenter) {
	appCtx.presenter = adapter
}

// FirstRun reports whether no settings file existed at startup.
func (appCtx *AppContext) FirstRun() bool {
	return appCtx.firstRun
}

// Started reports whether the cycle has been started.
func (appCtx *AppContext) Started() bool {
	return appCtx.started
}

// Warnings replays startup failures through OnWarning.
func (appCtx *AppContext) Warnings() {
	if appCtx.loadErr != nil {
		appCtx.warn(appCtx.loadErr)
	}
}

// AddTeardown registers fn to run on Shutdown after the TimeKeeper stops.
func (appCtx *AppContext) AddTeardown(fn func()) {
	appCtx.teardown = append(appCtx.teardown, fn)
}

// Start begins the work/break cycle with the active settings.
func (appCtx *AppContext) Start() error {
	if appCtx.shutdown {
		return errors.New("start after shutdown")
	}
	var handlers timekeeper.Handlers
	if appCtx.presenter != nil {
		handlers = appCtx.presenter.Handlers()
	}
	appCtx.applyIdle()
	if err := appCtx.Keeper.Start(appCtx.Settings.Config(), handlers); err != nil {
		return err
	}
	appCtx.started = true
	appCtx.sync()
	return nil
}

// SaveSettings validates, applies and persists settings. Invalid durations
// return model.ErrConfigInvalid and leave everything untouched. Persistence
// and autostart failures are reported through OnWarning; the new settings
// stay active.
func (appCtx *AppContext) SaveSettings(settings preferences.Settings) error {
	previous := appCtx.Settings
	if err := appCtx.applySettings(settings); err != nil {
		return err
	}
	if settings.LaunchAtLogin != previous.LaunchAtLogin {
		appCtx.updateAutostart(settings.LaunchAtLogin)
	}
	return nil
}

// CompleteSetup finishes the first-run flow: persist settings, apply the
// login launch preference and start the cycle.
func (appCtx *AppContext) CompleteSetup(settings preferences.Settings) error {
	if err := appCtx.applySettings(settings); err != nil {
		return err
	}
	appCtx.updateAutostart(settings.LaunchAtLogin)
	if appCtx.started {
		return nil
	}
	return appCtx.Start()
}

// TogglePause pauses or resumes the countdown.
func (appCtx *AppContext) TogglePause() {
	if appCtx.Keeper.Snapshot().Paused {
		appCtx.Keeper.Resume()
	} else {
		appCtx.Keeper.Pause()
	}
	appCtx.sync()
}

// Paused reports whether the countdown is paused.
func (appCtx *AppContext) Paused() bool {
	return appCtx.Keeper.Snapshot().Paused
}

// SkipBreak ends the current break early.
func (appCtx *AppContext) SkipBreak() {
	appCtx.Keeper.SkipBreak()
}

// Shutdown stops the TimeKeeper, closes the presenter and then releases UI
// resources in reverse registration order. It is safe to call more than once.
func (appCtx *AppContext) Shutdown() {
	if appCtx.shutdown {
		return
	}
	appCtx.shutdown = true
	appCtx.Keeper.Stop()
	if appCtx.presenter != nil {
		appCtx.presenter.Close()
	}
	for i := len(appCtx.teardown) - 1; i >= 0; i-- {
		appCtx.teardown[i]()
	}
	appCtx.teardown = nil
	appCtx.logger.Info("shutdown complete")
}

func (appCtx *AppContext) applySettings(settings preferences.Settings) error {
	config := settings.Config()
	if err := config.Validate(); err != nil {
		return err
	}
	if err := appCtx.Keeper.Restart(config); err != nil {
		return err
	}

	appCtx.Settings = settings
	appCtx.applyIdle()
	appCtx.sync()
	if appCtx.OnSettingsChanged != nil {
		appCtx.OnSettingsChanged(settings)
	}

	if err := appCtx.store.Save(settings); err != nil {
		appCtx.warn(err)
	} else {
		appCtx.firstRun = false
	}
	appCtx.logger.Info("settings applied",
		"work_minutes", config.WorkDurationMinutes,
		"break_seconds", config.BreakDurationSeconds,
	)
	return nil
}

func (appCtx *AppContext) updateAutostart(enabled bool) {
	var err error
	if enabled {
		err = platform.RegisterForLogin(appCtx.registrar, AppName)
	} else {
		err = platform.UnregisterFromLogin(appCtx.registrar, AppName)
	}
	if err != nil {
		appCtx.warn(err)
		return
	}
	appCtx.logger.Info("login launch updated", "enabled", enabled)
}

func (appCtx *AppContext) applyIdle() {
	if appCtx.Settings.IdleResetEnabled && appCtx.idle != nil {
		appCtx.Keeper.SetIdleChecker(appCtx.idle)
		return
	}
	appCtx.Keeper.SetIdleChecker(nil)
}

func (appCtx *AppContext) sync() {
	if appCtx.presenter != nil {
		appCtx.presenter.Sync(appCtx.Keeper.Snapshot)
	}
}

func (appCtx *AppContext) warn(err error) {
	if appCtx.OnWarning != nil {
		appCtx.OnWarning(err)
	}
}
