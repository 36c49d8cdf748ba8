package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/platform"
	"tomatick/internal/stats"
)

// StatsFileName is the SQLite database inside the app config directory.
const StatsFileName = "stats.db"

// ExportCmd implements the 'export' command. It reads the database directly
// and works whether or not the app is running.
type ExportCmd struct {
	Format   string `short:"f" help:"Export format: json, csv" enum:"json,csv" default:"json"`
	Output   string `short:"o" help:"Output file, '-' for stdout (default: tomatick_stats_<timestamp>.<format>)"`
	Database string `help:"Statistics database path (default: user config dir)" type:"path"`
}

func (e *ExportCmd) Run(root *CLI) error {
	dbPath := e.Database
	if dbPath == "" {
		resolved, err := statsPath(platform.NewService())
		if err != nil {
			return err
		}
		dbPath = resolved
	}
	if _, err := os.Stat(dbPath); err != nil {
		return ferrors.StorageError("No statistics recorded yet").WithCause(err).WithContext("path", dbPath).Build()
	}

	store, err := stats.Open(dbPath)
	if err != nil {
		return ferrors.StorageError("Cannot open statistics").WithCause(err).Build()
	}
	defer store.Close()

	format := stats.Format(e.Format)
	if e.Output == "-" {
		return store.Export(context.Background(), root.stdout(), format)
	}

	output := e.Output
	if output == "" {
		output = stats.DefaultExportName(format, time.Now())
	}
	file, err := os.Create(output)
	if err != nil {
		return ferrors.StorageError("Cannot create export file").WithCause(err).Build()
	}
	if err := store.Export(context.Background(), file, format); err != nil {
		_ = file.Close()
		return ferrors.StorageError("Export failed").WithCause(err).Build()
	}
	if err := file.Close(); err != nil {
		return ferrors.StorageError("Export failed").WithCause(err).Build()
	}

	log.Debug().Str("path", output).Str("format", e.Format).Msg("Statistics exported")
	_, err = fmt.Fprintf(root.stdout(), "Exported statistics to %s\n", output)
	return err
}

// statsPath resolves the database location and makes sure its directory exists.
func statsPath(service platform.Service) (string, error) {
	path, err := platform.AppDataPath(service, AppName, StatsFileName)
	if err != nil {
		return "", ferrors.StorageError("Cannot locate statistics").WithCause(err).Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", ferrors.StorageError("Cannot create data directory").WithCause(err).Build()
	}
	return path, nil
}
