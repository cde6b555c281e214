package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"eyebreak/internal/bootstrap"
	"eyebreak/internal/platform"
	"eyebreak/internal/ui/presenter"
	"eyebreak/internal/ui/terminal"

	tea "github.com/charmbracelet/bubbletea"
)

func runTerminal(options *runOptions) error {
	// The alternate screen owns stdout/stderr while the program runs.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if options.debug {
		logFile, err := tea.LogToFile("eyebreak-debug.log", "eyebreak")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer logFile.Close()
		logger = newLogger(logFile, true)
	}

	guard, err := platform.AcquireSingleInstance(bootstrap.AppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			_, _ = fmt.Fprintln(os.Stderr, alreadyRunningMessage)
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

	var warnings []error
	appCtx.OnWarning = func(err error) {
		logger.Warn("warning", "error", err)
		warnings = append(warnings, err)
	}
	appCtx.Warnings()

	model := terminal.New(bootstrap.AppName, terminal.Actions{
		OnTogglePause: appCtx.TogglePause,
		OnSkipBreak:   appCtx.SkipBreak,
		OnQuit:        appCtx.Shutdown,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	queue := presenter.NewQueue(func(fn func()) {
		program.Send(terminal.RunMsg(fn))
	})
	appCtx.AddTeardown(queue.Close)
	appCtx.Attach(presenter.New(queue.Schedule, model, model, logger))

	if err := appCtx.Start(); err != nil {
		return err
	}

	_, runErr := program.Run()
	appCtx.Shutdown()

	for _, warning := range warnings {
		_, _ = fmt.Fprintln(os.Stderr, "warning:", warning)
	}
	return runErr
}
