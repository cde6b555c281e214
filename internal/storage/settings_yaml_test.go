package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eyebreak/internal/core/model"
	"eyebreak/internal/ui/preferences"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	store := NewStoreAt(filepath.Join(t.TempDir(), "EyeBreak", settingsFileName))

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings != preferences.DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", settings)
	}
	if store.Exists() {
		t.Fatalf("store must not report an existing file")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Parallel()
	store := NewStoreAt(filepath.Join(t.TempDir(), "nested", "EyeBreak", settingsFileName))

	saved := preferences.DefaultSettings()
	saved.WorkDurationMinutes = 45
	saved.BreakDurationSeconds = 90
	saved.OverlayOpacity = 0.9
	saved.Fullscreen = false
	saved.IdleResetEnabled = true
	saved.LaunchAtLogin = false

	if err := store.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Exists() {
		t.Fatalf("settings file not written")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != saved {
		t.Fatalf("loaded = %+v, want %+v", loaded, saved)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "work_duration_minutes: 45") || !strings.Contains(string(raw), "launch_at_login: false") {
		t.Fatalf("unexpected file contents:\n%s", raw)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	store := NewStoreAt(filepath.Join(t.TempDir(), settingsFileName))

	settings := preferences.DefaultSettings()
	settings.WorkDurationMinutes = 1
	settings.BreakDurationSeconds = 90

	err := store.Save(settings)
	if !errors.Is(err, model.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if store.Exists() {
		t.Fatalf("rejected settings must not be written")
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), settingsFileName)
	if err := os.WriteFile(path, []byte("work_duration_minutes: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := NewStoreAt(path).Load()
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if settings.Config() != model.DefaultConfig() {
		t.Fatalf("config = %+v, want defaults", settings.Config())
	}
}

func TestLoadInvalidStoredCycleFallsBackToDefaultConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), settingsFileName)
	content := "work_duration_minutes: 1\nbreak_duration_seconds: 120\nfullscreen: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := NewStoreAt(path).Load()
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, model.ErrConfigInvalid) {
		t.Fatalf("expected persistence + config error, got %v", err)
	}
	if settings.Config() != model.DefaultConfig() {
		t.Fatalf("config = %+v, want defaults", settings.Config())
	}
	if settings.Fullscreen {
		t.Fatalf("non-duration preferences should still load")
	}
}

func TestLoadIgnoresOutOfRangeOpacity(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), settingsFileName)
	if err := os.WriteFile(path, []byte("overlay_opacity: 0.2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	settings, err := NewStoreAt(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.OverlayOpacity != preferences.DefaultSettings().OverlayOpacity {
		t.Fatalf("opacity = %v", settings.OverlayOpacity)
	}
}
