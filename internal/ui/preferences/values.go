// Package preferences is the settings window. Saving writes the configuration,
// which reaches the running session through the config watcher.
package preferences

import (
	"strconv"
	"strings"

	"tomatick/internal/core/model"
)

// CustomPreset is the select option for explicit durations.
const CustomPreset = "custom"

// Values mirrors the form fields as entered.
type Values struct {
	Preset               string
	WorkMinutes          string
	ShortBreakMinutes    string
	LongBreakMinutes     string
	SessionsBeforeLong   string
	AutoStartBreaks      bool
	AutoStartWork        bool
	SoundEnabled         bool
	Volume               float64
	NotificationsEnabled bool
	StartOnLogin         bool
	DailyTarget          string
}

// PresetOptions lists the select entries: built-in presets then custom.
func PresetOptions() []string {
	options := make([]string, 0, len(model.BuiltinPresets())+1)
	for _, preset := range model.BuiltinPresets() {
		options = append(options, preset.Name)
	}
	return append(options, CustomPreset)
}

// ValuesFromConfig fills the form from config.
func ValuesFromConfig(config model.Config) Values {
	preset := config.Timer.ActivePreset()
	name := CustomPreset
	if _, ok := model.PresetByName(config.Timer.Preset); ok {
		name = preset.Name
	}
	return Values{
		Preset:               name,
		WorkMinutes:          strconv.Itoa(preset.WorkMinutes),
		ShortBreakMinutes:    strconv.Itoa(preset.ShortBreakMinutes),
		LongBreakMinutes:     strconv.Itoa(preset.LongBreakMinutes),
		SessionsBeforeLong:   strconv.Itoa(preset.SessionsBeforeLong),
		AutoStartBreaks:      config.Timer.AutoStartBreaks,
		AutoStartWork:        config.Timer.AutoStartWork,
		SoundEnabled:         config.Sounds.Enabled,
		Volume:               float64(config.Sounds.Volume),
		NotificationsEnabled: config.System.NotificationsEnabled,
		StartOnLogin:         config.System.StartOnLogin,
		DailyTarget:          strconv.Itoa(config.Goals.DailyTarget),
	}
}

// Apply merges the form into base. Unparsable numbers keep the base value.
func (values Values) Apply(base model.Config) model.Config {
	config := base
	timer := &config.Timer

	if preset, ok := model.PresetByName(values.Preset); ok {
		timer.Preset = preset.Name
		timer.WorkMinutes = preset.WorkMinutes
		timer.ShortBreakMinutes = preset.ShortBreakMinutes
		timer.LongBreakMinutes = preset.LongBreakMinutes
		timer.SessionsBeforeLong = preset.SessionsBeforeLong
	} else {
		timer.Preset = ""
		timer.WorkMinutes = parsePositiveInt(values.WorkMinutes, timer.WorkMinutes)
		timer.ShortBreakMinutes = parsePositiveInt(values.ShortBreakMinutes, timer.ShortBreakMinutes)
		timer.LongBreakMinutes = parsePositiveInt(values.LongBreakMinutes, timer.LongBreakMinutes)
		timer.SessionsBeforeLong = parsePositiveInt(values.SessionsBeforeLong, timer.SessionsBeforeLong)
	}
	timer.AutoStartBreaks = values.AutoStartBreaks
	timer.AutoStartWork = values.AutoStartWork

	config.Sounds.Enabled = values.SoundEnabled
	config.Sounds.Volume = int(values.Volume)
	config.System.NotificationsEnabled = values.NotificationsEnabled
	config.System.StartOnLogin = values.StartOnLogin
	config.Goals.DailyTarget = parsePositiveInt(values.DailyTarget, config.Goals.DailyTarget)
	return config
}

// presetValues returns the duration fields of a built-in preset.
func presetValues(name string) (Values, bool) {
	preset, ok := model.PresetByName(name)
	if !ok {
		return Values{}, false
	}
	return Values{
		Preset:             preset.Name,
		WorkMinutes:        strconv.Itoa(preset.WorkMinutes),
		ShortBreakMinutes:  strconv.Itoa(preset.ShortBreakMinutes),
		LongBreakMinutes:   strconv.Itoa(preset.LongBreakMinutes),
		SessionsBeforeLong: strconv.Itoa(preset.SessionsBeforeLong),
	}, true
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
