//go:build windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegQuery(t *testing.T) {
	output := "\r\nHKEY_CURRENT_USER\\Software\\Microsoft\\Windows\\CurrentVersion\\Run\r\n" +
		"    Tomatick    REG_SZ    \"C:\\Program Files\\Tomatick\\tomatick.exe\" run\r\n\r\n"

	command, ok := parseRegQuery(output, "Tomatick")
	assert.True(t, ok)
	assert.Equal(t, autostartCommand(`C:\Program Files\Tomatick\tomatick.exe`), command)

	_, ok = parseRegQuery(output, "Other")
	assert.False(t, ok)
}
