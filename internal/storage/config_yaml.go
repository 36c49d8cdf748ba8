// Package storage persists the user configuration as YAML and watches it for edits.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"tomatick/internal/core/model"
	ferrors "tomatick/internal/foundation/errors"
)

// ConfigFileName is the name of the configuration file inside the app config directory.
const ConfigFileName = "config.yaml"

type yamlTimer struct {
	Preset             string `yaml:"preset,omitempty"`
	WorkDuration       int    `yaml:"work_duration"`
	ShortBreak         int    `yaml:"short_break"`
	LongBreak          int    `yaml:"long_break"`
	SessionsBeforeLong int    `yaml:"sessions_before_long"`
	AutoStartBreaks    bool   `yaml:"auto_start_breaks"`
	AutoStartWork      bool   `yaml:"auto_start_work"`
}

type yamlSounds struct {
	Enabled bool `yaml:"enabled"`
	Volume  int  `yaml:"volume"`
}

type yamlSystem struct {
	NotificationsEnabled bool `yaml:"notifications_enabled"`
	StartOnLogin         bool `yaml:"start_on_login"`
}

type yamlGoals struct {
	DailyTarget int `yaml:"daily_target"`
}

type yamlAddress struct {
	Address string `yaml:"address"`
}

type yamlLog struct {
	Level string `yaml:"level"`
}

type yamlConfig struct {
	Timer   yamlTimer   `yaml:"timer"`
	Sounds  yamlSounds  `yaml:"sounds"`
	System  yamlSystem  `yaml:"system"`
	Goals   yamlGoals   `yaml:"goals"`
	IPC     yamlAddress `yaml:"ipc"`
	Metrics yamlAddress `yaml:"metrics"`
	Log     yamlLog     `yaml:"log"`
}

// ResolveConfigPath returns <UserConfigDir>/<appName>/config.yaml.
func ResolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, ConfigFileName), nil
}

// LoadOrCreate reads the configuration at path. A missing file is created with
// the defaults. On a parse or validation error the defaults are returned with the error.
func LoadOrCreate(path string) (model.Config, error) {
	config, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		config = model.DefaultConfig()
		if saveErr := Save(path, config); saveErr != nil {
			return config, saveErr
		}
		log.Info().Str("path", path).Msg("Wrote default configuration")
		return config, nil
	}
	if err != nil {
		return model.DefaultConfig(), err
	}
	return config, nil
}

// Load reads and validates the configuration at path. Keys missing from the
// file keep their default values.
func Load(path string) (model.Config, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Config{}, err
		}
		return model.Config{}, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			WithContext("path", path).Build()
	}

	fileData := toYAML(model.DefaultConfig())
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return model.Config{}, ferrors.ConfigError("parse config yaml").
			WithCause(err).WithContext("path", path).Build()
	}

	config := fromYAML(fileData)
	if err := Validate(&config); err != nil {
		return model.Config{}, err
	}
	return config, nil
}

// Save writes config to path, creating the directory as needed.
func Save(path string, config model.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(toYAML(config))
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate rejects unusable durations and non-loopback endpoints, and clamps the volume.
func Validate(config *model.Config) error {
	timer := config.Timer
	if timer.Preset != "" {
		if _, ok := model.PresetByName(timer.Preset); !ok {
			return ferrors.ConfigError("unknown timer preset").WithContext("preset", timer.Preset).Build()
		}
	}
	for name, minutes := range map[string]int{
		"work_duration": timer.WorkMinutes,
		"short_break":   timer.ShortBreakMinutes,
		"long_break":    timer.LongBreakMinutes,
	} {
		if minutes < 1 {
			return ferrors.ConfigError("durations must be at least one minute").
				WithContext("field", name).WithContext("value", minutes).Build()
		}
	}
	if timer.SessionsBeforeLong < 1 {
		return ferrors.ConfigError("sessions_before_long must be at least 1").
			WithContext("value", timer.SessionsBeforeLong).Build()
	}

	config.Sounds.Volume = min(max(config.Sounds.Volume, 0), 100)
	if config.Goals.DailyTarget < 1 {
		config.Goals.DailyTarget = model.DefaultDailyTarget
	}

	if config.IPC.Address == "" {
		config.IPC.Address = model.DefaultIPCAddress
	}
	if err := model.ValidateLoopback(config.IPC.Address); err != nil {
		return ferrors.ConfigError("ipc address must be loopback").WithCause(err).Build()
	}
	if config.Metrics.Address != "" {
		if err := model.ValidateLoopback(config.Metrics.Address); err != nil {
			return ferrors.ConfigError("metrics address must be loopback").WithCause(err).Build()
		}
	}
	return nil
}

func toYAML(config model.Config) yamlConfig {
	return yamlConfig{
		Timer: yamlTimer{
			Preset:             config.Timer.Preset,
			WorkDuration:       config.Timer.WorkMinutes,
			ShortBreak:         config.Timer.ShortBreakMinutes,
			LongBreak:          config.Timer.LongBreakMinutes,
			SessionsBeforeLong: config.Timer.SessionsBeforeLong,
			AutoStartBreaks:    config.Timer.AutoStartBreaks,
			AutoStartWork:      config.Timer.AutoStartWork,
		},
		Sounds:  yamlSounds{Enabled: config.Sounds.Enabled, Volume: config.Sounds.Volume},
		System:  yamlSystem{NotificationsEnabled: config.System.NotificationsEnabled, StartOnLogin: config.System.StartOnLogin},
		Goals:   yamlGoals{DailyTarget: config.Goals.DailyTarget},
		IPC:     yamlAddress{Address: config.IPC.Address},
		Metrics: yamlAddress{Address: config.Metrics.Address},
		Log:     yamlLog{Level: config.Log.Level},
	}
}

func fromYAML(fileData yamlConfig) model.Config {
	return model.Config{
		Timer: model.TimerConfig{
			Preset:             fileData.Timer.Preset,
			WorkMinutes:        fileData.Timer.WorkDuration,
			ShortBreakMinutes:  fileData.Timer.ShortBreak,
			LongBreakMinutes:   fileData.Timer.LongBreak,
			SessionsBeforeLong: fileData.Timer.SessionsBeforeLong,
			AutoStartBreaks:    fileData.Timer.AutoStartBreaks,
			AutoStartWork:      fileData.Timer.AutoStartWork,
		},
		Sounds:  model.SoundConfig{Enabled: fileData.Sounds.Enabled, Volume: fileData.Sounds.Volume},
		System:  model.SystemConfig{NotificationsEnabled: fileData.System.NotificationsEnabled, StartOnLogin: fileData.System.StartOnLogin},
		Goals:   model.GoalConfig{DailyTarget: fileData.Goals.DailyTarget},
		IPC:     model.IPCConfig{Address: fileData.IPC.Address},
		Metrics: model.MetricsConfig{Address: fileData.Metrics.Address},
		Log:     model.LogConfig{Level: fileData.Log.Level},
	}
}
