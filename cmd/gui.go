package main

import (
	"errors"
	"log/slog"

	"eyebreak/internal/bootstrap"
	"eyebreak/internal/platform"
	"eyebreak/internal/ui/overlay"
	"eyebreak/internal/ui/preferences"
	"eyebreak/internal/ui/presenter"
	"eyebreak/internal/ui/tray"
	"eyebreak/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const alreadyRunningMessage = "The application is already running."

func runGUI(options *runOptions) error {
	logger := slog.Default()

	guard, err := platform.AcquireSingleInstance(bootstrap.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Warn("another instance holds the lock", "error", err)
			showAlreadyRunning()
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	appCtx, err := bootstrap.New(bootstrap.Options{
		ConfigPath: options.configPath,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID("com.eyebreak.app")
	fyneApp.SetIcon(resources.ActiveIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	appCtx.OnWarning = func(err error) {
		logger.Warn("warning", "error", err)
		fyneApp.SendNotification(fyne.NewNotification(bootstrap.AppName, err.Error()))
	}

	refreshTrayIcon := func() {
		if appCtx.Paused() {
			desktopApp.SetSystemTrayIcon(resources.PausedIcon())
		} else {
			desktopApp.SetSystemTrayIcon(resources.ActiveIcon())
		}
	}

	overlayWindow := overlay.New(fyneApp, overlayConfig(appCtx.Settings))
	overlayWindow.SetOnSkip(appCtx.SkipBreak)
	appCtx.OnSettingsChanged = func(settings preferences.Settings) {
		overlayWindow.UpdateConfig(overlayConfig(settings))
		refreshTrayIcon()
	}

	var prefsWindow *preferences.Window
	var trayManager *tray.Manager
	trayManager = tray.New(desktopApp, bootstrap.AppName, tray.Callbacks{
		OnSettings: func() {
			prefsWindow.UpdateSettings(appCtx.Settings)
			prefsWindow.Show()
		},
		OnTogglePause: func() {
			appCtx.TogglePause()
			refreshTrayIcon()
		},
		OnSkipBreak: appCtx.SkipBreak,
		OnQuit: func() {
			appCtx.Shutdown()
			fyneApp.Quit()
		},
	})
	refreshTrayIcon()

	appCtx.Attach(presenter.New(fyne.Do, trayManager, overlayWindow, logger))
	appCtx.AddTeardown(overlayWindow.Close)
	fyneApp.Lifecycle().SetOnStopped(appCtx.Shutdown)

	firstRun := appCtx.FirstRun()
	prefsWindow = preferences.New(fyneApp, appCtx.Settings, func(settings preferences.Settings) error {
		if !appCtx.Started() {
			return appCtx.CompleteSetup(settings)
		}
		return appCtx.SaveSettings(settings)
	}, preferences.Options{
		Welcome: firstRun,
		OnDismiss: func() {
			if err := appCtx.CompleteSetup(appCtx.Settings); err != nil {
				appCtx.OnWarning(err)
			}
		},
	})

	appCtx.Warnings()
	if firstRun {
		prefsWindow.Show()
	} else if err := appCtx.Start(); err != nil {
		return err
	}

	fyneApp.Run()
	appCtx.Shutdown()
	return nil
}

func overlayConfig(settings preferences.Settings) overlay.Config {
	config := overlay.DefaultConfig()
	config.Opacity = settings.OverlayAlpha()
	config.Fullscreen = settings.Fullscreen
	return config
}

func showAlreadyRunning() {
	fyneApp := app.NewWithID("com.eyebreak.app.warning")
	window := fyneApp.NewWindow("Warning")
	window.SetContent(container.NewVBox(
		widget.NewLabel(alreadyRunningMessage),
		container.NewCenter(widget.NewButton("OK", fyneApp.Quit)),
	))
	window.SetOnClosed(fyneApp.Quit)
	window.CenterOnScreen()
	window.Show()
	fyneApp.Run()
}
