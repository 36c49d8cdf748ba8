package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"tomatick/internal/core/model"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// ConfigWatcher reloads the configuration file when it changes on disk.
type ConfigWatcher struct {
	configPath string
	onReload   func(model.Config)
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	reloadChan chan struct{}
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewConfigWatcher creates a watcher that calls onReload with every valid new configuration.
func NewConfigWatcher(configPath string, onReload func(model.Config)) (*ConfigWatcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &ConfigWatcher{
		configPath: absPath,
		onReload:   onReload,
		watcher:    watcher,
		debounce:   DefaultDebounce,
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}, nil
}

// WithDebounce overrides the debounce delay.
func (cw *ConfigWatcher) WithDebounce(delay time.Duration) *ConfigWatcher {
	cw.debounce = delay
	return cw
}

// Start watches the directory holding the file, which survives atomic renames.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("watch config directory %s: %w", configDir, err)
	}
	log.Info().Str("path", cw.configPath).Msg("Watching configuration")

	cw.wg.Add(2)
	go func() {
		defer cw.wg.Done()
		cw.watchLoop(ctx)
	}()
	go func() {
		defer cw.wg.Done()
		cw.reloadLoop(ctx)
	}()
	return nil
}

// Stop ends both loops and releases the OS watcher.
func (cw *ConfigWatcher) Stop() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		err = cw.watcher.Close()
		cw.wg.Wait()
	})
	return err
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(cw.configPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config change detected")
				cw.triggerReload()
			case event.Has(fsnotify.Remove):
				log.Warn().Str("file", event.Name).Msg("Config file removed")
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Config watcher error")
		}
	}
}

func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	var reloadTimer *time.Timer
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case <-cw.reloadChan:
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(cw.debounce, cw.performReload)
		}
	}
}

func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ConfigWatcher) performReload() {
	config, err := Load(cw.configPath)
	if err != nil {
		log.Error().Err(err).Str("path", cw.configPath).Msg("Reload configuration failed, keeping current")
		return
	}
	log.Info().Str("path", cw.configPath).Msg("Configuration reloaded")
	cw.onReload(config)
}
