package cli

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"tomatick/internal/app"
	"tomatick/internal/core/model"
	"tomatick/internal/core/session"
	"tomatick/internal/ipc"
	"tomatick/internal/metrics"
	"tomatick/internal/notify"
	"tomatick/internal/platform"
	"tomatick/internal/stats"
	"tomatick/internal/storage"
	"tomatick/internal/ui/preferences"
	"tomatick/internal/ui/tray"
	"tomatick/resources"
)

const appID = "io.tomatick.app"

// RunCmd implements the default 'run' command.
type RunCmd struct {
	Headless bool `help:"Run without the tray icon, controlled only through IPC"`
}

func (r *RunCmd) Run(root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath, err := root.configPath()
	if err != nil {
		return err
	}
	config, err := storage.LoadOrCreate(configPath)
	if err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("Load configuration, using defaults")
	}
	root.applyLogLevel(config.Log.Level)

	address := root.address(config)
	if err := platform.RequireLoopback(address); err != nil {
		return err
	}
	probe := ipc.NewClient(address, AppName).WithTimeout(time.Second)
	if probe.Ping(ctx) {
		log.Info().Str("addr", address).Msg(AppName + " is already running")
		return nil
	}

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	service := platform.NewService()

	var requests <-chan ipc.Request
	guard, err := platform.AcquireSingleInstance(ctx, address, probe.Ping)
	switch {
	case errors.Is(err, platform.ErrAlreadyRunning):
		log.Info().Str("addr", address).Msg(AppName + " is already running")
		return nil
	case err != nil:
		log.Warn().Err(err).Msg("IPC unavailable, remote control disabled")
	default:
		defer func() { _ = guard.Release() }()
		server := ipc.NewServer(guard.Listener(), ipc.ServerConfig{}, recorder)
		server.Start(ctx)
		defer server.Stop()
		requests = server.Requests()
	}

	if config.Metrics.Address != "" {
		serveMetrics(ctx, config.Metrics.Address, registry)
	}

	options := app.Options{
		Session:  session.New(config.Timer.ActivePreset(), nil),
		Config:   config,
		Requests: requests,
		Metrics:  recorder,
	}
	if store := openStats(service); store != nil {
		defer store.Close()
		options.Stats = store
		options.Recorder = store
	}
	if autostarter, err := platform.NewAutostarter(service, AppName); err != nil {
		log.Warn().Err(err).Msg("Start on login unavailable")
	} else {
		options.Autostart = autostarter
		if err := autostarter.SetEnabled(config.System.StartOnLogin); err != nil {
			log.Warn().Err(err).Bool("enabled", config.System.StartOnLogin).Msg("Sync start on login")
		}
	}

	var gui fyne.App
	var sender notify.Sender
	if !r.Headless {
		gui = fyneapp.NewWithID(appID)
		gui.SetIcon(resources.MustIcon(resources.IconFocus))
		sender = func(title, body string) {
			gui.SendNotification(fyne.NewNotification(title, body))
		}
	}
	var player notify.Player
	if chime, err := notify.NewChime(); err != nil {
		log.Warn().Err(err).Msg("Audio disabled")
	} else {
		player = chime
	}
	notifier := notify.New(config, sender, player)
	options.Notifier = notifier

	controller := app.NewController(options)

	scheduler, err := app.NewScheduler(controller)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn().Err(err).Msg("Stop scheduler")
		}
	}()

	if watcher, err := storage.NewConfigWatcher(configPath, controller.ApplyConfig); err != nil {
		log.Warn().Err(err).Msg("Configuration hot reload disabled")
	} else if err := watcher.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("Configuration hot reload disabled")
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	done := make(chan error, 1)
	go func() { done <- controller.Run(ctx) }()

	log.Info().Str("addr", address).Str("config", configPath).Msg(AppName + " started")
	if gui == nil {
		<-ctx.Done()
	} else {
		runTray(ctx, gui, controller, settingsOpener(gui, configPath, config, controller))
	}
	stop()
	return <-done
}

// runTray blocks on the fyne event loop until Quit or ctx is done.
func runTray(ctx context.Context, gui fyne.App, controller *app.Controller, openSettings func()) {
	desktopApp, ok := gui.(desktop.App)
	if !ok {
		log.Warn().Msg("System tray unsupported on this platform, running headless")
		<-ctx.Done()
		return
	}

	submit := func(cmd ipc.Command) func() {
		return func() {
			go func() {
				if resp, isErr := controller.Submit(ctx, cmd).(ipc.ErrorResponse); isErr {
					log.Warn().Str("command", string(cmd.Kind())).Str("error", resp.Message).Msg("Tray action failed")
				}
			}()
		}
	}
	desktopApp.SetSystemTrayIcon(resources.MustIcon(resources.IconFocus))
	manager := tray.New(desktopApp, AppName, tray.Callbacks{
		OnSettings: openSettings,
		OnToggle:   submit(ipc.ToggleCommand{}),
		OnSkip:     submit(ipc.SkipCommand{}),
		OnStop:     submit(ipc.StopCommand{}),
		OnQuit:     gui.Quit,
	})

	updates := controller.Subscribe(1)
	go func() {
		var last ipc.StatusResponse
		for status := range updates {
			if !statusChanged(last, status) {
				continue
			}
			last = status
			fyne.Do(func() { manager.Update(status) })
		}
	}()
	go func() {
		<-ctx.Done()
		fyne.Do(gui.Quit)
	}()

	gui.Run()
}

// settingsOpener shows the settings window filled from the file on disk. Saving
// writes the file and applies it right away; the watcher then sees the same content.
func settingsOpener(gui fyne.App, configPath string, fallback model.Config, controller *app.Controller) func() {
	var window *preferences.Window
	current := func() model.Config {
		config, err := storage.Load(configPath)
		if err != nil {
			return fallback
		}
		return config
	}
	return func() {
		values := preferences.ValuesFromConfig(current())
		if window != nil {
			window.SetValues(values)
			window.Show()
			return
		}
		window = preferences.New(gui, AppName, values, func(edited preferences.Values) {
			config := edited.Apply(current())
			if err := storage.Validate(&config); err != nil {
				log.Warn().Err(err).Msg("Settings rejected")
				return
			}
			if err := storage.Save(configPath, config); err != nil {
				log.Error().Err(err).Str("path", configPath).Msg("Save settings")
			}
			controller.ApplyConfig(config)
		})
		window.Show()
	}
}

// statusChanged ignores sub-second progress so the menu is rebuilt at most once per second.
func statusChanged(previous, next ipc.StatusResponse) bool {
	previous.Progress, next.Progress = 0, 0
	return previous != next
}

func openStats(service platform.Service) *stats.Store {
	path, err := statsPath(service)
	if err != nil {
		log.Warn().Err(err).Msg("Statistics disabled")
		return nil
	}
	store, err := stats.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Statistics disabled")
		return nil
	}
	return store
}

func serveMetrics(ctx context.Context, address string, registry *prom.Registry) {
	if err := model.ValidateLoopback(address); err != nil {
		log.Warn().Err(err).Msg("Metrics endpoint disabled")
		return
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Warn().Err(err).Str("addr", address).Msg("Metrics endpoint disabled")
		return
	}
	go func() {
		if err := metrics.Serve(ctx, listener, registry); err != nil {
			log.Error().Err(err).Msg("Metrics endpoint stopped")
		}
	}()
}
