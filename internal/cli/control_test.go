package cli

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomatick/internal/app"
	"tomatick/internal/core/model"
	"tomatick/internal/core/session"
	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/ipc"
)

func startInstance(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := ipc.NewServer(listener, ipc.ServerConfig{}, nil)
	server.Start(ctx)

	controller := app.NewController(app.Options{
		Session:  session.New(model.PresetClassic, nil),
		Config:   model.DefaultConfig(),
		Requests: server.Requests(),
	})
	done := make(chan error, 1)
	go func() { done <- controller.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		server.Stop()
		<-done
	})
	return server.Addr().String()
}

func closedAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())
	return address
}

func newRoot(t *testing.T, address string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &CLI{
		Config:  filepath.Join(t.TempDir(), "missing.yaml"),
		Address: address,
		Stdout:  &out,
	}, &out
}

func TestCommandsAgainstRunningInstance(t *testing.T) {
	root, out := newRoot(t, startInstance(t))

	require.NoError(t, (&PingCmd{}).Run(root))
	assert.Equal(t, "Tomatick is running\n", out.String())

	out.Reset()
	require.NoError(t, (&StartCmd{}).Run(root))
	assert.Equal(t, "Timer started\n", out.String())

	out.Reset()
	require.NoError(t, (&StatusCmd{}).Run(root))
	assert.Contains(t, out.String(), ">> Focus - ")
	assert.Contains(t, out.String(), "Session 1/4")

	out.Reset()
	require.NoError(t, (&PauseCmd{}).Run(root))
	require.NoError(t, (&ResumeCmd{}).Run(root))
	require.NoError(t, (&ToggleCmd{}).Run(root))
	require.NoError(t, (&StopCmd{}).Run(root))
	require.NoError(t, (&SkipCmd{}).Run(root))
	assert.Equal(t, "Timer paused\nTimer resumed\nTimer paused\nTimer stopped and reset\nSkipped to Short Break\n", out.String())

	err := (&StartCmd{Session: "nap"}).Run(root)
	require.Error(t, err)
	assert.Equal(t, "Error: Unknown session type: nap", ferrors.NewCLIErrorAdapter(false).FormatError(err))

	err = (&StatsCmd{Period: "today"}).Run(root)
	require.Error(t, err, "no statistics store is wired")
}

func TestCommandsWithoutInstance(t *testing.T) {
	root, out := newRoot(t, closedAddress(t))

	err := (&StatusCmd{}).Run(root)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConnection))
	assert.Equal(t, "Error: "+NotRunningMessage, ferrors.NewCLIErrorAdapter(false).FormatError(err))

	err = (&PingCmd{}).Run(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot connect to Tomatick. Is it running?")
	assert.Empty(t, out.String())
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		check   func(t *testing.T, root *CLI)
	}{
		{args: nil, command: "run"},
		{args: []string{"run", "--headless"}, command: "run", check: func(t *testing.T, root *CLI) {
			assert.True(t, root.Run.Headless)
		}},
		{args: []string{"start", "-s", "long"}, command: "start", check: func(t *testing.T, root *CLI) {
			assert.Equal(t, "long", root.Start.Session)
		}},
		{args: []string{"stats"}, command: "stats", check: func(t *testing.T, root *CLI) {
			assert.Equal(t, "today", root.Stats.Period)
		}},
		{args: []string{"stats", "--period", "week", "-v"}, command: "stats", check: func(t *testing.T, root *CLI) {
			assert.Equal(t, "week", root.Stats.Period)
			assert.True(t, root.Verbose)
		}},
		{args: []string{"export", "-f", "csv", "-o", "-"}, command: "export", check: func(t *testing.T, root *CLI) {
			assert.Equal(t, "csv", root.Export.Format)
			assert.Equal(t, "-", root.Export.Output)
		}},
		{args: []string{"--address", "127.0.0.1:5555", "ping"}, command: "ping", check: func(t *testing.T, root *CLI) {
			assert.Equal(t, "127.0.0.1:5555", root.Address)
		}},
	}
	for _, tt := range tests {
		var root CLI
		parser, err := kong.New(&root, kong.Name("tomatick"), kong.Vars{"version": "test"}, kong.Bind(&root))
		require.NoError(t, err)
		ctx, err := parser.Parse(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.command, ctx.Command(), tt.args)
		if tt.check != nil {
			tt.check(t, &root)
		}
	}
}

func TestParseRejectsUnknownExportFormat(t *testing.T) {
	var root CLI
	parser, err := kong.New(&root, kong.Name("tomatick"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"export", "--format", "xml"})
	assert.Error(t, err)
}
