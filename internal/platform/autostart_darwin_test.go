//go:build darwin

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunchAgentPlist(t *testing.T) {
	content := buildLaunchAgentPlist(launchAgentLabel("Tomatick"), launchArguments("/Applications/R&D/tomatick"))
	assert.Contains(t, content, "<string>io.tomatick.tomatick</string>")
	assert.Contains(t, content, "<string>/Applications/R&amp;D/tomatick</string>")

	state := parseLaunchAgent(content)
	assert.True(t, state.Installed)
	assert.Equal(t, autostartCommand("/Applications/R&D/tomatick"), state.Command)
}

func TestParseLaunchAgentDisabled(t *testing.T) {
	content := `<plist><dict><key>Disabled</key><true/><key>ProgramArguments</key><array><string>tomatick</string></array></dict></plist>`
	assert.False(t, parseLaunchAgent(content).Installed)
	assert.False(t, parseLaunchAgent(`<plist><dict></dict></plist>`).Installed)
}
