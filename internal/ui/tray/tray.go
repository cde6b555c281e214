package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnSettings    func()
	OnTogglePause func()
	OnSkipBreak   func()
	OnQuit        func()
}

// Manager handles system tray state. All methods must run on the fyne main goroutine.
type Manager struct {
	app        desktop.App
	title      string
	statusItem *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	skipItem   *fyne.MenuItem
	callbacks  Callbacks
	status     string
	paused     bool
}

// New creates a tray manager and installs its menu.
func New(app desktop.App, title string, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		title:     title,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Starting...", nil)
	manager.statusItem.Disabled = true
	manager.pauseItem = fyne.NewMenuItem("Pause", invoke(&manager.callbacks.OnTogglePause))
	manager.skipItem = fyne.NewMenuItem("Skip break", invoke(&manager.callbacks.OnSkipBreak))
	manager.skipItem.Disabled = true

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.status {
		return
	}
	manager.status = status
	manager.refreshStatus()
}

// SetPaused updates pause state.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	if paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	manager.refreshStatus()
}

// SetInBreak toggles break-related menu items.
func (manager *Manager) SetInBreak(inBreak bool) {
	manager.skipItem.Disabled = !inBreak
	manager.refreshMenu()
}

// Label returns the current status line.
func (manager *Manager) Label() string {
	return manager.statusItem.Label
}

func (manager *Manager) refreshStatus() {
	label := manager.status
	if manager.paused {
		label += " (paused)"
	}
	manager.statusItem.Label = label
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	// Marked as quit so the driver does not append its own Quit item.
	exit := fyne.NewMenuItem("Exit", invoke(&manager.callbacks.OnQuit))
	exit.IsQuit = true
	manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.title,
		manager.statusItem,
		fyne.NewMenuItem("Settings", invoke(&manager.callbacks.OnSettings)),
		manager.pauseItem,
		manager.skipItem,
		fyne.NewMenuItemSeparator(),
		exit,
	))
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
