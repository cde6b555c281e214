package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAutostartDenied indicates the login item could not be registered
// because the user lacks the required privilege.
var ErrAutostartDenied = errors.New("autostart registration denied")

// Registrar registers an executable for per-user login launch.
type Registrar interface {
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
}

type platformService struct {
	configDir string
}

// NewRegistrar returns the registrar for the running OS.
func NewRegistrar() Registrar {
	return &platformService{}
}

// RegisterForLogin registers the running executable with registrar.
// Permission failures are reported as ErrAutostartDenied.
func RegisterForLogin(registrar Registrar, appName string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("register for login: resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	return mapAutostartError(registrar.EnableAutostart(appName, execPath))
}

// UnregisterFromLogin removes the login item. Removing an absent item is not
// an error.
func UnregisterFromLogin(registrar Registrar, appName string) error {
	return mapAutostartError(registrar.DisableAutostart(appName))
}

func mapAutostartError(err error) error {
	if err != nil && errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrAutostartDenied, err)
	}
	return err
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	if service.configDir != "" {
		return service.configDir, nil
	}
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func slugName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "eyebreak"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}
