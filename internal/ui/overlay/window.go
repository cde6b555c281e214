package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
	Title      string
	Message    string
}

// DefaultConfig returns the standard break overlay copy.
func DefaultConfig() Config {
	return Config{
		Opacity:    216,
		Fullscreen: true,
		Title:      "Take a break!",
		Message:    "Look at something 20 feet away.",
	}
}

const (
	windowedWidth  = float32(480)
	windowedHeight = float32(260)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window manages the overlay UI. All methods must run on the fyne main goroutine.
type Window struct {
	window       fyne.Window
	config       Config
	background   *canvas.Rectangle
	titleLabel   *canvas.Text
	messageLabel *canvas.Text
	timerLabel   *canvas.Text
	progress     *widget.ProgressBar
	skipButton   *widget.Button
	onSkip       func()
	visible      bool
}

// New creates a hidden overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow(config.Title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash windows are undecorated, so the user cannot close the overlay.
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText(config.Title, white)
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 32

	messageLabel := canvas.NewText(config.Message, white)
	messageLabel.Alignment = fyne.TextAlignCenter
	messageLabel.TextSize = 20

	timerLabel := canvas.NewText("--:--", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 24

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	skipButton := widget.NewButton("Skip", nil)

	column := container.NewVBox(
		titleLabel,
		messageLabel,
		timerLabel,
		container.NewGridWrap(fyne.NewSize(240, progress.MinSize().Height), progress),
		container.NewCenter(skipButton),
	)
	window.SetContent(container.NewStack(background, container.NewCenter(column)))

	overlay := &Window{
		window:       window,
		config:       config,
		background:   background,
		titleLabel:   titleLabel,
		messageLabel: messageLabel,
		timerLabel:   timerLabel,
		progress:     progress,
		skipButton:   skipButton,
	}
	skipButton.OnTapped = func() {
		if overlay.onSkip != nil {
			overlay.onSkip()
		}
	}
	return overlay
}

// ShowBreak resets the countdown display and shows the overlay.
func (overlay *Window) ShowBreak(countdown string) {
	overlay.setCountdown(countdown, 0)
	overlay.applyWindowMode()
	overlay.visible = true
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// HideBreak closes the overlay.
func (overlay *Window) HideBreak() {
	overlay.visible = false
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// SetCountdown updates the timer label and progress bar.
func (overlay *Window) SetCountdown(countdown string, progress float64) {
	overlay.setCountdown(countdown, progress)
}

// SetOnSkip sets the skip handler.
func (overlay *Window) SetOnSkip(handler func()) {
	overlay.onSkip = handler
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	overlay.titleLabel.Text = config.Title
	overlay.messageLabel.Text = config.Message
	overlay.background.Refresh()
	overlay.titleLabel.Refresh()
	overlay.messageLabel.Refresh()
	if overlay.visible {
		overlay.applyWindowMode()
	}
}

// Close releases the native window.
func (overlay *Window) Close() {
	overlay.visible = false
	overlay.window.Close()
}

func (overlay *Window) setCountdown(countdown string, progress float64) {
	overlay.timerLabel.Text = countdown
	overlay.timerLabel.Refresh()
	overlay.progress.SetValue(progress)
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.window.Resize(fyne.NewSize(windowedWidth, windowedHeight))
	overlay.window.CenterOnScreen()
}
