//go:build windows

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	quoted := `"` + strings.Trim(execPath, `"`) + `"`
	output, err := exec.Command("reg", "add", registryRunKey, "/v", appName, "/t", "REG_SZ", "/d", quoted, "/f").CombinedOutput()
	if err != nil {
		return regError("enable autostart: reg add", err, output)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	output, err := exec.Command("reg", "delete", registryRunKey, "/v", appName, "/f").CombinedOutput()
	if err != nil {
		if strings.Contains(strings.ToLower(string(output)), "unable to find") {
			return nil
		}
		return regError("disable autostart: reg delete", err, output)
	}
	return nil
}

func regError(operation string, err error, output []byte) error {
	message := strings.TrimSpace(string(output))
	if strings.Contains(strings.ToLower(message), "access is denied") {
		return fmt.Errorf("%s: %w: %s", operation, os.ErrPermission, message)
	}
	return fmt.Errorf("%s: %w: %s", operation, err, message)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
