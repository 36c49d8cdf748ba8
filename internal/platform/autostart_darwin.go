//go:build darwin

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	plistArgumentsPattern = regexp.MustCompile(`(?s)<key>ProgramArguments</key>\s*<array>(.*?)</array>`)
	plistStringPattern    = regexp.MustCompile(`(?s)<string>(.*?)</string>`)
	plistDisabledPattern  = regexp.MustCompile(`<key>Disabled</key>\s*<true\s*/>`)

	xmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	xmlUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func launchArguments(execPath string) []string {
	return []string{execPath, "run"}
}

// autostartCommand joins the launch arguments the way AutostartState reports them.
func autostartCommand(execPath string) string {
	return strings.Join(launchArguments(execPath), " ")
}

func (service *platformService) launchAgentPath(appName string) (string, error) {
	if appName == "" {
		return "", fmt.Errorf("app name is empty")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}
	path, err := service.launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}

	content := buildLaunchAgentPlist(launchAgentLabel(appName), launchArguments(execPath))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	path, err := service.launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func (service *platformService) AutostartState(appName string) (AutostartState, error) {
	path, err := service.launchAgentPath(appName)
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
	return parseLaunchAgent(string(content)), nil
}

// parseLaunchAgent recovers the program arguments of a plist written by
// buildLaunchAgentPlist. A Disabled key set to true counts as not installed.
func parseLaunchAgent(content string) AutostartState {
	block := plistArgumentsPattern.FindStringSubmatch(content)
	if block == nil {
		return AutostartState{}
	}
	var args []string
	for _, match := range plistStringPattern.FindAllStringSubmatch(block[1], -1) {
		args = append(args, xmlUnescaper.Replace(strings.TrimSpace(match[1])))
	}
	return AutostartState{
		Installed: len(args) > 0 && !plistDisabledPattern.MatchString(content),
		Command:   strings.Join(args, " "),
	}
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func launchAgentLabel(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "tomatick"
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	return "io.tomatick." + name
}

func buildLaunchAgentPlist(label string, args []string) string {
	var arguments strings.Builder
	for _, arg := range args {
		fmt.Fprintf(&arguments, "\t\t<string>%s</string>\n", xmlEscaper.Replace(arg))
	}

	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`,
		xmlEscaper.Replace(label),
		arguments.String(),
	)
}
