package preferences

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/core/model"
)

func TestValuesFromConfig(t *testing.T) {
	values := ValuesFromConfig(model.DefaultConfig())
	assert.Equal(t, CustomPreset, values.Preset)
	assert.Equal(t, "25", values.WorkMinutes)
	assert.Equal(t, "4", values.SessionsBeforeLong)
	assert.Equal(t, float64(80), values.Volume)
	assert.Equal(t, "8", values.DailyTarget)

	config := model.DefaultConfig()
	config.Timer.Preset = "52/17"
	values = ValuesFromConfig(config)
	assert.Equal(t, "52/17", values.Preset)
	assert.Equal(t, "52", values.WorkMinutes)
	assert.Equal(t, "17", values.ShortBreakMinutes)
}

func TestApplyCustomValues(t *testing.T) {
	values := ValuesFromConfig(model.DefaultConfig())
	values.WorkMinutes = "45"
	values.ShortBreakMinutes = "zero"
	values.LongBreakMinutes = "-5"
	values.AutoStartWork = true
	values.Volume = 35
	values.DailyTarget = " 10 "

	config := values.Apply(model.DefaultConfig())
	assert.Empty(t, config.Timer.Preset)
	assert.Equal(t, 45, config.Timer.WorkMinutes)
	assert.Equal(t, 5, config.Timer.ShortBreakMinutes, "unparsable input keeps the old value")
	assert.Equal(t, 15, config.Timer.LongBreakMinutes)
	assert.True(t, config.Timer.AutoStartWork)
	assert.Equal(t, 35, config.Sounds.Volume)
	assert.Equal(t, 10, config.Goals.DailyTarget)
	assert.Equal(t, model.DefaultIPCAddress, config.IPC.Address, "fields outside the form are kept")
}

func TestApplyPreset(t *testing.T) {
	values := ValuesFromConfig(model.DefaultConfig())
	values.Preset = "short"
	values.WorkMinutes = "99"

	config := values.Apply(model.DefaultConfig())
	assert.Equal(t, "short", config.Timer.Preset)
	assert.Equal(t, model.PresetShort, config.Timer.ActivePreset())
	assert.Equal(t, 15, config.Timer.WorkMinutes)
}

func TestPresetOptions(t *testing.T) {
	assert.Equal(t, []string{"classic", "short", "long", "52/17", CustomPreset}, PresetOptions())
}

func TestWindowSave(t *testing.T) {
	app := test.NewTempApp(t)

	var saved []Values
	window := New(app, "Tomatick", ValuesFromConfig(model.DefaultConfig()), func(values Values) {
		saved = append(saved, values)
	})
	window.Show()

	assert.False(t, window.work.Disabled(), "custom durations are editable")
	window.dailyTarget.SetText("12")
	test.Tap(window.saveButton)

	require.Len(t, saved, 1)
	assert.Equal(t, "12", saved[0].DailyTarget)

	window.preset.SetSelected("long")
	assert.True(t, window.work.Disabled())
	assert.Equal(t, "50", window.work.Text)
	test.Tap(window.saveButton)

	require.Len(t, saved, 2)
	config := saved[1].Apply(model.DefaultConfig())
	assert.Equal(t, model.PresetLongFocus, config.Timer.ActivePreset())
}
