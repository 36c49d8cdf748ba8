package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
	AutostartState(appName string) (AutostartState, error)
}

// AutostartState is the login entry currently registered for an application.
// Command is the command line the entry launches; entries the user disabled
// are reported as not installed.
type AutostartState struct {
	Installed bool
	Command   string
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// AppDataPath joins name onto the per-application configuration directory.
func AppDataPath(service Service, appName, name string) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName, name), nil
}

// Autostarter toggles launching the current executable at login.
type Autostarter struct {
	service  Service
	appName  string
	execPath string
}

// NewAutostarter registers the running executable under appName.
func NewAutostarter(service Service, appName string) (*Autostarter, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return &Autostarter{service: service, appName: appName, execPath: execPath}, nil
}

// Command is the command line the login entry should launch.
func (autostarter *Autostarter) Command() string {
	return autostartCommand(autostarter.execPath)
}

// IsEnabled reports whether a login entry launching this executable is installed.
func (autostarter *Autostarter) IsEnabled() (bool, error) {
	state, err := autostarter.service.AutostartState(autostarter.appName)
	if err != nil {
		return false, err
	}
	return state.Installed && state.Command == autostarter.Command(), nil
}

// SetEnabled installs or removes the login entry. Nothing is written when the
// registered entry already matches; an entry pointing at another executable
// is rewritten.
func (autostarter *Autostarter) SetEnabled(enabled bool) error {
	state, err := autostarter.service.AutostartState(autostarter.appName)
	if err != nil {
		log.Debug().Err(err).Msg("Read start on login entry")
	} else if autostarter.matches(state, enabled) {
		log.Debug().Bool("enabled", enabled).Msg("Start on login unchanged")
		return nil
	}

	if enabled {
		if err := autostarter.service.EnableAutostart(autostarter.appName, autostarter.execPath); err != nil {
			return err
		}
		log.Info().Str("command", autostarter.Command()).Msg("Enabled start on login")
		return nil
	}
	if err := autostarter.service.DisableAutostart(autostarter.appName); err != nil {
		return err
	}
	log.Info().Msg("Disabled start on login")
	return nil
}

func (autostarter *Autostarter) matches(state AutostartState, enabled bool) bool {
	if !enabled {
		return !state.Installed
	}
	return state.Installed && state.Command == autostarter.Command()
}
