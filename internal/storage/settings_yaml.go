package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"eyebreak/internal/core/model"
	"eyebreak/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

// ErrPersistence indicates the settings file could not be read or written.
var ErrPersistence = errors.New("settings persistence failure")

type yamlSettings struct {
	WorkDurationMinutes  int      `yaml:"work_duration_minutes"`
	BreakDurationSeconds int      `yaml:"break_duration_seconds"`
	IdleResetEnabled     bool     `yaml:"idle_reset_enabled"`
	LaunchAtLogin        *bool    `yaml:"launch_at_login,omitempty"`
	OverlayOpacity       *float64 `yaml:"overlay_opacity,omitempty"`
	Fullscreen           *bool    `yaml:"fullscreen,omitempty"`
}

// Store persists a single settings record.
type Store struct {
	path string
}

// NewStore returns a store at the per-user config location for appName.
func NewStore(appName string) (*Store, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return &Store{path: configPath}, nil
}

// NewStoreAt returns a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// Exists reports whether a settings file has been written before.
func (store *Store) Exists() bool {
	_, err := os.Stat(store.path)
	return err == nil
}

// Load reads user preferences from YAML.
// Defaults are returned when the file is absent; when it is unreadable or
// holds an invalid cycle, defaults are returned together with an error
// wrapping ErrPersistence.
func (store *Store) Load() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("%w: read settings file: %w", ErrPersistence, err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("%w: parse settings yaml: %w", ErrPersistence, err)
	}

	applyYamlSettings(&settings, fileData)
	if err := settings.Config().Validate(); err != nil {
		return settings.WithConfig(model.DefaultConfig()), fmt.Errorf("%w: stored durations rejected: %w", ErrPersistence, err)
	}
	return settings, nil
}

// Save overwrites the settings file. Invalid durations are rejected with
// model.ErrConfigInvalid before anything is written.
func (store *Store) Save(settings preferences.Settings) error {
	if err := settings.Config().Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("%w: create config directory: %w", ErrPersistence, err)
	}

	opacity := settings.OverlayOpacity
	fullscreen := settings.Fullscreen
	launchAtLogin := settings.LaunchAtLogin
	fileData := yamlSettings{
		WorkDurationMinutes:  settings.WorkDurationMinutes,
		BreakDurationSeconds: settings.BreakDurationSeconds,
		IdleResetEnabled:     settings.IdleResetEnabled,
		LaunchAtLogin:        &launchAtLogin,
		OverlayOpacity:       &opacity,
		Fullscreen:           &fullscreen,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("%w: marshal settings yaml: %w", ErrPersistence, err)
	}

	if err := writeFileAtomic(store.path, serialized); err != nil {
		return fmt.Errorf("%w: write settings file: %w", ErrPersistence, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+settingsFileName+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.WorkDurationMinutes > 0 {
		settings.WorkDurationMinutes = fileData.WorkDurationMinutes
	}
	if fileData.BreakDurationSeconds > 0 {
		settings.BreakDurationSeconds = fileData.BreakDurationSeconds
	}

	if fileData.OverlayOpacity != nil &&
		*fileData.OverlayOpacity >= preferences.MinOverlayOpacity &&
		*fileData.OverlayOpacity <= preferences.MaxOverlayOpacity {
		settings.OverlayOpacity = *fileData.OverlayOpacity
	}
	if fileData.Fullscreen != nil {
		settings.Fullscreen = *fileData.Fullscreen
	}
	if fileData.LaunchAtLogin != nil {
		settings.LaunchAtLogin = *fileData.LaunchAtLogin
	}
	settings.IdleResetEnabled = fileData.IdleResetEnabled
}
