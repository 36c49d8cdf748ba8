// Package tray renders the session in the system tray and forwards menu actions.
package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"tomatick/internal/core/session"
	"tomatick/internal/ipc"
	"tomatick/resources"
)

// Host is the part of desktop.App the tray needs.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnSettings func()
	OnToggle   func()
	OnSkip     func()
	OnStop     func()
	OnQuit     func()
}

// Manager handles system tray state.
type Manager struct {
	host         Host
	title        string
	callbacks    Callbacks
	statusItem   *fyne.MenuItem
	toggleItem   *fyne.MenuItem
	skipItem     *fyne.MenuItem
	stopItem     *fyne.MenuItem
	settingsItem *fyne.MenuItem
	quitItem     *fyne.MenuItem
	icon         string
}

// New creates a tray manager with the provided callbacks.
func New(host Host, title string, callbacks Callbacks) *Manager {
	manager := &Manager{host: host, title: title, callbacks: callbacks}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start", invoke(&manager.callbacks.OnToggle))
	manager.skipItem = fyne.NewMenuItem("Skip", invoke(&manager.callbacks.OnSkip))
	manager.stopItem = fyne.NewMenuItem("Stop", invoke(&manager.callbacks.OnStop))
	manager.stopItem.Disabled = true
	manager.settingsItem = fyne.NewMenuItem("Settings", invoke(&manager.callbacks.OnSettings))
	manager.quitItem = fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit))
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	return manager
}

func invoke(callback *func()) func() {
	return func() {
		if *callback != nil {
			(*callback)()
		}
	}
}

// Update renders a status snapshot. It must run on the fyne main goroutine.
func (manager *Manager) Update(status ipc.StatusResponse) {
	manager.statusItem.Label = StatusLabel(status)
	manager.toggleItem.Label = ToggleLabel(status.State)
	manager.stopItem.Disabled = status.State == "idle"

	if icon := IconName(status); icon != manager.icon {
		manager.icon = icon
		if resource, err := resources.Icon(icon); err == nil {
			manager.host.SetSystemTrayIcon(resource)
		}
	}
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.host == nil {
		return
	}
	manager.host.SetSystemTrayMenu(fyne.NewMenu(manager.title,
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.skipItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		manager.settingsItem,
		manager.quitItem,
	))
}

// StatusLabel renders the first menu line, e.g. "Focus 24:59 (1/4)".
func StatusLabel(status ipc.StatusResponse) string {
	name := status.SessionType
	if sessionType, err := session.ParseType(status.SessionType); err == nil {
		name = sessionType.DisplayName()
	}
	label := fmt.Sprintf("%s %s (%d/%d)", name, status.RemainingFormatted, status.CurrentSession, status.TotalSessions)
	if status.State == "paused" {
		label += " - paused"
	}
	return label
}

// ToggleLabel names the action the toggle item performs in state.
func ToggleLabel(state string) string {
	switch state {
	case "running":
		return "Pause"
	case "paused":
		return "Resume"
	default:
		return "Start"
	}
}

// IconName picks the tray icon for a status.
func IconName(status ipc.StatusResponse) string {
	switch {
	case status.State == "paused":
		return resources.IconPaused
	case status.SessionType == string(session.TypeWork):
		return resources.IconFocus
	default:
		return resources.IconBreak
	}
}
