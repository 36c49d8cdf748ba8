//go:build linux

package platform

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const desktopEntryGroup = "[Desktop Entry]"

// desktopEntry holds the XDG autostart keys Tomatick writes and reads back.
type desktopEntry struct {
	Name    string
	Exec    string
	Enabled bool
}

func (entry desktopEntry) String() string {
	return fmt.Sprintf(
		`%s
Type=Application
Name=%s
Comment=Pomodoro timer
Exec=%s
Terminal=false
Categories=Utility;
StartupNotify=false
X-GNOME-Autostart-enabled=%t
`,
		desktopEntryGroup,
		entry.Name,
		entry.Exec,
		entry.Enabled,
	)
}

// parseDesktopEntry reads the [Desktop Entry] group. Hidden=true and
// X-GNOME-Autostart-enabled=false both mean the user switched it off.
func parseDesktopEntry(content string) desktopEntry {
	entry := desktopEntry{Enabled: true}
	inGroup := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == desktopEntryGroup
			continue
		}
		if !inGroup {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			entry.Name = strings.TrimSpace(value)
		case "Exec":
			entry.Exec = strings.TrimSpace(value)
		case "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				entry.Enabled = false
			}
		case "X-GNOME-Autostart-enabled":
			if strings.EqualFold(strings.TrimSpace(value), "false") {
				entry.Enabled = false
			}
		}
	}
	return entry
}

// autostartCommand is the Exec value; paths with spaces are quoted.
func autostartCommand(execPath string) string {
	execLine := strings.Trim(execPath, `"`)
	if strings.Contains(execLine, " ") {
		execLine = `"` + execLine + `"`
	}
	return execLine + " run"
}

func (service *platformService) desktopEntryPath(appName string) (string, error) {
	if appName == "" {
		return "", fmt.Errorf("app name is empty")
	}
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", desktopFileName(appName)), nil
}

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}

	entry := desktopEntry{Name: appName, Exec: autostartCommand(execPath), Enabled: true}
	if err := os.WriteFile(path, []byte(entry.String()), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) AutostartState(appName string) (AutostartState, error) {
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return AutostartState{}, fmt.Errorf("read autostart: %w", err)
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return AutostartState{}, nil
	}
	if err != nil {
		return AutostartState{}, fmt.Errorf("read autostart: %w", err)
	}

	entry := parseDesktopEntry(string(content))
	return AutostartState{Installed: entry.Enabled && entry.Exec != "", Command: entry.Exec}, nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func desktopFileName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "tomatick"
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	return name + ".desktop"
}
