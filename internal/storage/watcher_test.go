package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/core/model"
)

func TestConfigWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Save(path, model.DefaultConfig()))

	reloads := make(chan model.Config, 4)
	watcher, err := NewConfigWatcher(path, func(config model.Config) { reloads <- config })
	require.NoError(t, err)
	watcher.WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { assert.NoError(t, watcher.Stop()) }()

	updated := model.DefaultConfig()
	updated.Timer.WorkMinutes = 45
	require.NoError(t, Save(path, updated))

	select {
	case config := <-reloads:
		assert.Equal(t, 45, config.Timer.WorkMinutes)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestConfigWatcherIgnoresInvalidEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, Save(path, model.DefaultConfig()))

	reloads := make(chan model.Config, 4)
	watcher, err := NewConfigWatcher(path, func(config model.Config) { reloads <- config })
	require.NoError(t, err)
	watcher.WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { assert.NoError(t, watcher.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("timer:\n  work_duration: 0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case config := <-reloads:
		t.Fatalf("unexpected reload: %+v", config)
	case <-time.After(300 * time.Millisecond):
	}
}
