package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/ipc"
	"tomatick/resources"
)

type fakeHost struct {
	menu  *fyne.Menu
	icons []fyne.Resource
}

func (host *fakeHost) SetSystemTrayMenu(menu *fyne.Menu) {
	host.menu = menu
}

func (host *fakeHost) SetSystemTrayIcon(icon fyne.Resource) {
	host.icons = append(host.icons, icon)
}

func labels(menu *fyne.Menu) []string {
	var out []string
	for _, item := range menu.Items {
		if item.IsSeparator {
			continue
		}
		out = append(out, item.Label)
	}
	return out
}

func TestManagerUpdate(t *testing.T) {
	host := &fakeHost{}
	toggles := 0
	manager := New(host, "Tomatick", Callbacks{OnToggle: func() { toggles++ }})
	require.NotNil(t, host.menu)
	assert.Equal(t, []string{"Status: starting...", "Start", "Skip", "Stop", "Settings", "Quit"}, labels(host.menu))

	manager.Update(ipc.StatusResponse{
		State:              "running",
		SessionType:        "work",
		RemainingFormatted: "24:59",
		CurrentSession:     1,
		TotalSessions:      4,
	})
	assert.Equal(t, []string{"Focus 24:59 (1/4)", "Pause", "Skip", "Stop", "Settings", "Quit"}, labels(host.menu))
	require.Len(t, host.icons, 1)
	assert.Equal(t, resources.MustIcon(resources.IconFocus), host.icons[0])

	manager.Update(ipc.StatusResponse{State: "running", SessionType: "work", RemainingFormatted: "24:58", CurrentSession: 1, TotalSessions: 4})
	assert.Len(t, host.icons, 1, "icon is only replaced on change")

	manager.toggleItem.Action()
	assert.Equal(t, 1, toggles)

	assert.NotPanics(t, func() { manager.skipItem.Action() })
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Start", ToggleLabel("idle"))
	assert.Equal(t, "Pause", ToggleLabel("running"))
	assert.Equal(t, "Resume", ToggleLabel("paused"))
	assert.Equal(t, "Start", ToggleLabel("completed"))

	paused := ipc.StatusResponse{State: "paused", SessionType: "long_break", RemainingFormatted: "10:00", CurrentSession: 4, TotalSessions: 4}
	assert.Equal(t, "Long Break 10:00 (4/4) - paused", StatusLabel(paused))
	assert.Equal(t, resources.IconPaused, IconName(paused))
	assert.Equal(t, resources.IconBreak, IconName(ipc.StatusResponse{State: "idle", SessionType: "short_break"}))
}
