package preferences

import (
	"errors"
	"strconv"

	"eyebreak/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// SaveFunc persists and applies settings. A returned error is shown in a
// dialog and the window stays open.
type SaveFunc func(Settings) error

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     SaveFunc
	onDismiss  func()
	welcome    bool
	workMins   *widget.Entry
	breakSecs  *widget.Entry
	idleCheck  *widget.Check
	loginCheck *widget.Check
	opacity    *widget.Slider
	fullscreen *widget.Check
	message    *widget.Label
}

// Options controls how the window behaves.
type Options struct {
	// Welcome shows the first-run greeting and confirms closing without saving.
	Welcome bool
	// OnDismiss runs when the window is closed without saving.
	OnDismiss func()
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave SaveFunc, options Options) *Window {
	window := app.NewWindow("EyeBreak Settings")

	workMins := widget.NewEntry()
	breakSecs := widget.NewEntry()

	idleCheck := widget.NewCheck("Restart work timer after 5 minutes idle", nil)
	loginCheck := widget.NewCheck("Launch at login", nil)
	opacity := widget.NewSlider(MinOverlayOpacity, MaxOverlayOpacity)
	opacity.Step = 0.01
	fullscreen := widget.NewCheck("Fullscreen overlay", nil)
	message := widget.NewLabel("")
	message.Wrapping = fyne.TextWrapWord

	form := container.NewVBox()
	if options.Welcome {
		form.Add(widget.NewLabelWithStyle("Welcome to EyeBreak!", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}))
		form.Add(widget.NewLabel("Please set your preferred break and work durations."))
	}
	form.Add(widget.NewForm(
		widget.NewFormItem("Work duration (minutes)", workMins),
		widget.NewFormItem("Break duration (seconds)", breakSecs),
	))
	form.Add(idleCheck)
	form.Add(loginCheck)
	form.Add(widget.NewLabel("Overlay opacity"))
	form.Add(opacity)
	form.Add(fullscreen)
	form.Add(message)

	saveButton := widget.NewButton("Save", nil)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(layout.NewSpacer(), cancelButton, saveButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(400, 320))

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		onDismiss:  options.OnDismiss,
		welcome:    options.Welcome,
		workMins:   workMins,
		breakSecs:  breakSecs,
		idleCheck:  idleCheck,
		loginCheck: loginCheck,
		opacity:    opacity,
		fullscreen: fullscreen,
		message:    message,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = prefs.handleClose
	window.SetCloseIntercept(prefs.handleClose)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.workMins.SetText(strconv.Itoa(settings.WorkDurationMinutes))
	prefs.breakSecs.SetText(strconv.Itoa(settings.BreakDurationSeconds))
	prefs.idleCheck.SetChecked(settings.IdleResetEnabled)
	prefs.loginCheck.SetChecked(settings.LaunchAtLogin)
	prefs.opacity.SetValue(settings.OverlayOpacity)
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.message.SetText("")
}

func (prefs *Window) handleSave() {
	base := prefs.settings
	base.IdleResetEnabled = prefs.idleCheck.Checked
	base.LaunchAtLogin = prefs.loginCheck.Checked
	base.OverlayOpacity = prefs.opacity.Value
	base.Fullscreen = prefs.fullscreen.Checked

	settings, err := ParseDurations(base, prefs.workMins.Text, prefs.breakSecs.Text)
	if err != nil {
		prefs.message.SetText(validationMessage(err))
		return
	}

	prefs.settings = settings
	prefs.welcome = false
	if prefs.onSave != nil {
		if err := prefs.onSave(settings); err != nil {
			dialog.ShowError(err, prefs.window)
			return
		}
	}
	prefs.message.SetText("Settings have been saved.")
	prefs.window.Hide()
}

func (prefs *Window) handleClose() {
	if !prefs.welcome {
		prefs.UpdateSettings(prefs.settings)
		prefs.window.Hide()
		return
	}
	dialog.ShowConfirm("Quit", "Do you want to quit without saving settings?", func(confirmed bool) {
		if !confirmed {
			return
		}
		prefs.welcome = false
		prefs.window.Hide()
		if prefs.onDismiss != nil {
			prefs.onDismiss()
		}
	}, prefs.window)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidNumber):
		return "Please enter valid numbers for durations."
	case errors.Is(err, model.ErrConfigInvalid):
		return "Work must be between 1 minute and 24 hours, breaks at least 20 seconds, and a break cannot be longer than the work period."
	default:
		return err.Error()
	}
}
