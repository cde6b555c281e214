// Package terminal renders the break cycle in a terminal with bubbletea.
package terminal

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunMsg carries a function to execute on the bubbletea event loop.
type RunMsg func()

// Actions defines key binding handlers. They run on the event loop.
type Actions struct {
	OnTogglePause func()
	OnSkipBreak   func()
	OnQuit        func()
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#496D89")).
			Padding(1, 3)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0B4C8"))
	countdownStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8BE42"))
	breakStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#496D89")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7A89"))
)

// Model is the terminal presentation surface. It implements the presenter's
// StatusView and BreakView; those methods must run on the event loop.
type Model struct {
	title     string
	actions   Actions
	status    string
	paused    bool
	inBreak   bool
	countdown string
	percent   float64
	bar       progress.Model
	quitting  bool
}

// New creates a terminal model.
func New(title string, actions Actions) *Model {
	return &Model{
		title:     title,
		actions:   actions,
		status:    "Starting...",
		countdown: "--:--",
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

func (model *Model) SetStatus(label string) { model.status = label }

func (model *Model) SetInBreak(inBreak bool) { model.inBreak = inBreak }

func (model *Model) SetPaused(paused bool) { model.paused = paused }

func (model *Model) ShowBreak(countdown string) {
	model.inBreak = true
	model.countdown = countdown
	model.percent = 0
}

func (model *Model) HideBreak() {
	model.inBreak = false
	model.percent = 0
}

func (model *Model) SetCountdown(countdown string, progress float64) {
	model.countdown = countdown
	model.percent = progress
}

func (model *Model) Init() tea.Cmd {
	return nil
}

func (model *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RunMsg:
		if msg != nil {
			msg()
		}
		return model, nil
	case tea.WindowSizeMsg:
		width := msg.Width - 12
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		model.bar.Width = width
		return model, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			model.quitting = true
			if model.actions.OnQuit != nil {
				model.actions.OnQuit()
			}
			return model, tea.Quit
		case "p", " ":
			if model.actions.OnTogglePause != nil {
				model.actions.OnTogglePause()
			}
		case "s":
			if model.inBreak && model.actions.OnSkipBreak != nil {
				model.actions.OnSkipBreak()
			}
		}
	}
	return model, nil
}

func (model *Model) View() string {
	if model.quitting {
		return ""
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render(model.title))
	body.WriteString("\n\n")

	status := model.status
	if model.paused {
		status += " (paused)"
	}
	body.WriteString(statusStyle.Render(status))
	body.WriteString("\n")

	if model.inBreak {
		body.WriteString("\n")
		body.WriteString(breakStyle.Render("Take a break!"))
		body.WriteString("\n")
		body.WriteString("Look at something 20 feet away.\n\n")
		body.WriteString(countdownStyle.Render(model.countdown))
		body.WriteString("\n")
		body.WriteString(model.bar.ViewAs(model.percent))
		body.WriteString("\n")
	}

	help := "p pause/resume • q quit"
	if model.inBreak {
		help = "s skip break • " + help
	}
	body.WriteString("\n")
	body.WriteString(helpStyle.Render(help))

	return frameStyle.Render(body.String()) + "\n"
}
