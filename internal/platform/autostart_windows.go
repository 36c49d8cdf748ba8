//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

// reg runs reg.exe and folds its output into the error.
func reg(action string, args ...string) (string, error) {
	output, err := exec.Command("reg", append([]string{action, registryRunKey}, args...)...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("reg %s failed: %w: %s", action, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}
	if _, err := reg("add", "/v", appName, "/t", "REG_SZ", "/d", autostartCommand(execPath), "/f"); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}
	if _, err := reg("delete", "/v", appName, "/f"); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

// AutostartState queries the Run key. reg exits non-zero when the value is absent.
func (service *platformService) AutostartState(appName string) (AutostartState, error) {
	if appName == "" {
		return AutostartState{}, fmt.Errorf("read autostart: app name is empty")
	}
	output, err := exec.Command("reg", "query", registryRunKey, "/v", appName).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return AutostartState{}, nil
		}
		return AutostartState{}, fmt.Errorf("read autostart: %w", err)
	}

	command, ok := parseRegQuery(string(output), appName)
	return AutostartState{Installed: ok, Command: command}, nil
}

// parseRegQuery extracts the data of value name from `reg query` output:
//
//	    Tomatick    REG_SZ    "C:\Apps\tomatick.exe" run
func parseRegQuery(output, name string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		valueName, data, ok := strings.Cut(line, "REG_SZ")
		if !ok || !strings.EqualFold(strings.TrimSpace(valueName), name) {
			continue
		}
		return strings.TrimSpace(data), true
	}
	return "", false
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func autostartCommand(execPath string) string {
	trimmed := strings.Trim(execPath, `"`)
	return fmt.Sprintf(`"%s" run`, trimmed)
}
