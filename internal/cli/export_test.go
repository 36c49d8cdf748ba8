package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/core/session"
	"tomatick/internal/stats"
)

func seedStats(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), StatsFileName)
	store, err := stats.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordSession(context.Background(), stats.Record{
		SessionType: session.TypeWork,
		Duration:    25 * time.Minute,
		Planned:     25 * time.Minute,
		Completed:   true,
		StartedAt:   time.Now().Add(-25 * time.Minute),
	}))
	require.NoError(t, store.Close())
	return path
}

func TestExportToStdout(t *testing.T) {
	root, out := newRoot(t, "")
	cmd := &ExportCmd{Format: "json", Output: "-", Database: seedStats(t)}

	require.NoError(t, cmd.Run(root))
	assert.Contains(t, out.String(), `"total_pomodoros": 1`)
}

func TestExportToFile(t *testing.T) {
	root, out := newRoot(t, "")
	output := filepath.Join(t.TempDir(), "stats.csv")
	cmd := &ExportCmd{Format: "csv", Output: output, Database: seedStats(t)}

	require.NoError(t, cmd.Run(root))
	assert.Equal(t, "Exported statistics to "+output+"\n", out.String())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "work")
}

func TestExportWithoutDatabase(t *testing.T) {
	root, _ := newRoot(t, "")
	cmd := &ExportCmd{Format: "json", Output: "-", Database: filepath.Join(t.TempDir(), "none.db")}

	err := cmd.Run(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No statistics recorded yet")
}
