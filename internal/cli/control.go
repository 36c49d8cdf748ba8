package cli

import (
	"context"

	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/ipc"
)

// NotRunningMessage is reported when no instance answers the liveness ping.
const NotRunningMessage = AppName + " is not running. Start the app first."

// StartCmd implements the 'start' command.
type StartCmd struct {
	Session string `short:"s" help:"Session type: work, short, long"`
}

func (s *StartCmd) Run(root *CLI) error {
	cmd := ipc.StartCommand{}
	if s.Session != "" {
		cmd.SessionType = &s.Session
	}
	return sendCommand(root, cmd)
}

// PauseCmd implements the 'pause' command.
type PauseCmd struct{}

func (*PauseCmd) Run(root *CLI) error { return sendCommand(root, ipc.PauseCommand{}) }

// ResumeCmd implements the 'resume' command.
type ResumeCmd struct{}

func (*ResumeCmd) Run(root *CLI) error { return sendCommand(root, ipc.ResumeCommand{}) }

// ToggleCmd implements the 'toggle' command.
type ToggleCmd struct{}

func (*ToggleCmd) Run(root *CLI) error { return sendCommand(root, ipc.ToggleCommand{}) }

// StopCmd implements the 'stop' command.
type StopCmd struct{}

func (*StopCmd) Run(root *CLI) error { return sendCommand(root, ipc.StopCommand{}) }

// SkipCmd implements the 'skip' command.
type SkipCmd struct{}

func (*SkipCmd) Run(root *CLI) error { return sendCommand(root, ipc.SkipCommand{}) }

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (*StatusCmd) Run(root *CLI) error { return sendCommand(root, ipc.StatusCommand{}) }

// StatsCmd implements the 'stats' command.
type StatsCmd struct {
	Period string `short:"p" help:"Period: today, week, all" default:"today"`
}

func (s *StatsCmd) Run(root *CLI) error {
	return sendCommand(root, ipc.StatsCommand{Period: s.Period})
}

// PingCmd implements the 'ping' command.
type PingCmd struct{}

func (*PingCmd) Run(root *CLI) error { return sendCommand(root, ipc.PingCommand{}) }

// sendCommand checks liveness for everything but Ping, sends cmd and renders the reply.
func sendCommand(root *CLI, cmd ipc.Command) error {
	ctx := context.Background()
	client := ipc.NewClient(root.address(root.clientConfig()), AppName)

	if _, isPing := cmd.(ipc.PingCommand); !isPing && !client.Ping(ctx) {
		return ferrors.ConnectionError(NotRunningMessage).Build()
	}

	resp, err := client.Send(ctx, cmd)
	if err != nil {
		return err
	}
	return RenderResponse(root.stdout(), resp)
}
