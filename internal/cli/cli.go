// Package cli defines the command line: the default run command hosts the
// timer, every other command controls a running instance over IPC.
package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tomatick/internal/core/model"
	"tomatick/internal/storage"
)

// AppName is the user-visible application name.
const AppName = "Tomatick"

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: user config dir)" type:"path"`
	Address string           `short:"a" help:"Control address, overrides the configuration"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run    RunCmd    `cmd:"" default:"1" help:"Run the timer in the system tray (default)"`
	Start  StartCmd  `cmd:"" help:"Start the timer, optionally switching session type"`
	Pause  PauseCmd  `cmd:"" help:"Pause the timer"`
	Resume ResumeCmd `cmd:"" help:"Resume the timer"`
	Toggle ToggleCmd `cmd:"" help:"Toggle start/pause"`
	Stop   StopCmd   `cmd:"" help:"Stop and reset the timer"`
	Skip   SkipCmd   `cmd:"" help:"Skip to the next session"`
	Status StatusCmd `cmd:"" help:"Show the current timer status"`
	Stats  StatsCmd  `cmd:"" help:"Show statistics"`
	Ping   PingCmd   `cmd:"" help:"Check whether Tomatick is running"`
	Export ExportCmd `cmd:"" help:"Export statistics to JSON or CSV"`

	Stdout io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if c.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
	return nil
}

func (c *CLI) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *CLI) configPath() (string, error) {
	if c.Config != "" {
		return c.Config, nil
	}
	return storage.ResolveConfigPath(AppName)
}

// clientConfig reads the configuration without creating it. Controllers fall
// back to the defaults when the file is missing or broken.
func (c *CLI) clientConfig() model.Config {
	path, err := c.configPath()
	if err != nil {
		log.Debug().Err(err).Msg("Resolve config path")
		return model.DefaultConfig()
	}
	config, err := storage.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Ignoring configuration")
		}
		return model.DefaultConfig()
	}
	return config
}

func (c *CLI) address(config model.Config) string {
	if c.Address != "" {
		return c.Address
	}
	return config.IPC.Address
}

// applyLogLevel honours the configured level unless --verbose was given.
func (c *CLI) applyLogLevel(level string) {
	if c.Verbose || strings.TrimSpace(level) == "" {
		return
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown log level")
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
