package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/core/model"
	ferrors "tomatick/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Tomatick", ConfigFileName)

	config, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), config)
	assert.FileExists(t, path)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, config, reloaded)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, "timer:\n  work_duration: 50\n  auto_start_breaks: true\nsounds:\n  volume: 150\n")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, config.Timer.WorkMinutes)
	assert.Equal(t, 5, config.Timer.ShortBreakMinutes)
	assert.True(t, config.Timer.AutoStartBreaks)
	assert.Equal(t, 100, config.Sounds.Volume)
	assert.True(t, config.Sounds.Enabled)
	assert.Equal(t, model.DefaultIPCAddress, config.IPC.Address)
	assert.Equal(t, model.DefaultDailyTarget, config.Goals.DailyTarget)
}

func TestLoadPreset(t *testing.T) {
	path := writeConfig(t, "timer:\n  preset: 52/17\n")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.Preset5217, config.Timer.ActivePreset())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero duration", "timer:\n  short_break: 0\n"},
		{"zero cycle", "timer:\n  sessions_before_long: 0\n"},
		{"unknown preset", "timer:\n  preset: marathon\n"},
		{"public ipc", "ipc:\n  address: 0.0.0.0:19847\n"},
		{"public metrics", "metrics:\n  address: 10.0.0.1:9090\n"},
		{"not yaml", "timer: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), "got %v", err)
		})
	}
}

func TestLoadOrCreateFallsBackOnBrokenFile(t *testing.T) {
	path := writeConfig(t, "timer:\n  work_duration: -3\n")

	config, err := LoadOrCreate(path)
	require.Error(t, err)
	assert.Equal(t, model.DefaultConfig(), config)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	config := model.DefaultConfig()
	config.Timer.Preset = "short"
	config.System.StartOnLogin = true
	config.Metrics.Address = "127.0.0.1:9464"
	config.Log.Level = "debug"

	require.NoError(t, Save(path, config))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestResolveConfigPath(t *testing.T) {
	path, err := ResolveConfigPath("Tomatick")
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	assert.Equal(t, ConfigFileName, filepath.Base(path))
	assert.Equal(t, "Tomatick", filepath.Base(filepath.Dir(path)))
}
