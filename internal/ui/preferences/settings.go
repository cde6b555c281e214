package preferences

import (
	"eyebreak/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	WorkDurationMinutes  int
	BreakDurationSeconds int
	IdleResetEnabled     bool
	LaunchAtLogin        bool

	OverlayOpacity float64
	Fullscreen     bool
}

const (
	MinOverlayOpacity = 0.7
	MaxOverlayOpacity = 0.95
)

// DefaultSettings returns default settings for EyeBreak.
func DefaultSettings() Settings {
	config := model.DefaultConfig()
	return Settings{
		WorkDurationMinutes:  config.WorkDurationMinutes,
		BreakDurationSeconds: config.BreakDurationSeconds,
		IdleResetEnabled:     false,
		LaunchAtLogin:        true,
		OverlayOpacity:       0.85,
		Fullscreen:           true,
	}
}

// Config converts settings to the cycle config.
func (settings Settings) Config() model.Config {
	return model.Config{
		WorkDurationMinutes:  settings.WorkDurationMinutes,
		BreakDurationSeconds: settings.BreakDurationSeconds,
	}
}

// WithConfig returns a copy with the cycle durations replaced.
func (settings Settings) WithConfig(config model.Config) Settings {
	settings.WorkDurationMinutes = config.WorkDurationMinutes
	settings.BreakDurationSeconds = config.BreakDurationSeconds
	return settings
}

// OverlayAlpha converts the opacity preference to an 8-bit alpha value.
func (settings Settings) OverlayAlpha() uint8 {
	opacity := settings.OverlayOpacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
