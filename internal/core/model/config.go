package model

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultIPCAddress is the loopback address the control protocol listens on.
const DefaultIPCAddress = "127.0.0.1:19847"

// DefaultDailyTarget is the default number of pomodoros per day.
const DefaultDailyTarget = 8

// Preset defines the durations of one Pomodoro cycle.
type Preset struct {
	Name               string
	WorkMinutes        int
	ShortBreakMinutes  int
	LongBreakMinutes   int
	SessionsBeforeLong int
}

// WorkDuration returns the length of a work session.
func (preset Preset) WorkDuration() time.Duration {
	return time.Duration(preset.WorkMinutes) * time.Minute
}

// ShortBreakDuration returns the length of a short break.
func (preset Preset) ShortBreakDuration() time.Duration {
	return time.Duration(preset.ShortBreakMinutes) * time.Minute
}

// LongBreakDuration returns the length of a long break.
func (preset Preset) LongBreakDuration() time.Duration {
	return time.Duration(preset.LongBreakMinutes) * time.Minute
}

// Normalized returns a copy with the cycle length clamped to at least one session.
func (preset Preset) Normalized() Preset {
	if preset.SessionsBeforeLong < 1 {
		preset.SessionsBeforeLong = 1
	}
	return preset
}

// SameDurations reports whether both presets describe the same cycle.
func (preset Preset) SameDurations(other Preset) bool {
	return preset.WorkMinutes == other.WorkMinutes &&
		preset.ShortBreakMinutes == other.ShortBreakMinutes &&
		preset.LongBreakMinutes == other.LongBreakMinutes &&
		preset.SessionsBeforeLong == other.SessionsBeforeLong
}

// Built-in presets.
var (
	PresetClassic   = Preset{Name: "classic", WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsBeforeLong: 4}
	PresetShort     = Preset{Name: "short", WorkMinutes: 15, ShortBreakMinutes: 3, LongBreakMinutes: 10, SessionsBeforeLong: 4}
	PresetLongFocus = Preset{Name: "long", WorkMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 30, SessionsBeforeLong: 2}
	Preset5217      = Preset{Name: "52/17", WorkMinutes: 52, ShortBreakMinutes: 17, LongBreakMinutes: 30, SessionsBeforeLong: 2}
)

// BuiltinPresets lists the presets shipped with the application.
func BuiltinPresets() []Preset {
	return []Preset{PresetClassic, PresetShort, PresetLongFocus, Preset5217}
}

// PresetByName looks up a built-in preset, ignoring case.
func PresetByName(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, preset := range BuiltinPresets() {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// TimerConfig holds durations and auto-start policy.
type TimerConfig struct {
	Preset             string
	WorkMinutes        int
	ShortBreakMinutes  int
	LongBreakMinutes   int
	SessionsBeforeLong int
	AutoStartBreaks    bool
	AutoStartWork      bool
}

// ActivePreset resolves the named preset, falling back to the explicit durations.
func (config TimerConfig) ActivePreset() Preset {
	if preset, ok := PresetByName(config.Preset); ok {
		return preset
	}
	return Preset{
		Name:               "custom",
		WorkMinutes:        config.WorkMinutes,
		ShortBreakMinutes:  config.ShortBreakMinutes,
		LongBreakMinutes:   config.LongBreakMinutes,
		SessionsBeforeLong: config.SessionsBeforeLong,
	}.Normalized()
}

// SoundConfig controls the completion chime.
type SoundConfig struct {
	Enabled bool
	Volume  int
}

// SystemConfig controls desktop integration.
type SystemConfig struct {
	NotificationsEnabled bool
	StartOnLogin         bool
}

// GoalConfig holds the daily pomodoro goal.
type GoalConfig struct {
	DailyTarget int
}

// IPCConfig holds the control protocol endpoint.
type IPCConfig struct {
	Address string
}

// MetricsConfig holds the optional metrics endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string
}

// LogConfig holds the log level name.
type LogConfig struct {
	Level string
}

// Config is the full application configuration.
type Config struct {
	Timer   TimerConfig
	Sounds  SoundConfig
	System  SystemConfig
	Goals   GoalConfig
	IPC     IPCConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// DefaultConfig returns the configuration used on first run.
func DefaultConfig() Config {
	return Config{
		Timer: TimerConfig{
			WorkMinutes:        PresetClassic.WorkMinutes,
			ShortBreakMinutes:  PresetClassic.ShortBreakMinutes,
			LongBreakMinutes:   PresetClassic.LongBreakMinutes,
			SessionsBeforeLong: PresetClassic.SessionsBeforeLong,
		},
		Sounds: SoundConfig{Enabled: true, Volume: 80},
		System: SystemConfig{NotificationsEnabled: true},
		Goals:  GoalConfig{DailyTarget: DefaultDailyTarget},
		IPC:    IPCConfig{Address: DefaultIPCAddress},
		Log:    LogConfig{Level: "info"},
	}
}

// ValidateLoopback rejects addresses that are not bound to a loopback interface.
func ValidateLoopback(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("parse address %q: %w", address, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("address %q is not loopback", address)
	}
	return nil
}
