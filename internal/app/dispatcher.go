// Package app owns the running session: it applies commands from every
// controller and reacts to timer completions.
package app

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"tomatick/internal/core/session"
	"tomatick/internal/core/timer"
	"tomatick/internal/ipc"
	"tomatick/internal/stats"
)

// StatsProvider supplies statistics for Stats commands.
type StatsProvider interface {
	Load(ctx context.Context) (stats.Statistics, error)
}

// Dispatcher applies commands to a Session. It must only be used from the
// goroutine that owns the Session.
type Dispatcher struct {
	session   *session.Session
	stats     StatsProvider
	dailyGoal int
}

// NewDispatcher creates a dispatcher. stats may be nil when no store is available.
func NewDispatcher(sess *session.Session, provider StatsProvider, dailyGoal int) *Dispatcher {
	return &Dispatcher{session: sess, stats: provider, dailyGoal: dailyGoal}
}

// SetDailyGoal updates the goal reported by Stats.
func (dispatcher *Dispatcher) SetDailyGoal(goal int) {
	dispatcher.dailyGoal = goal
}

// Dispatch applies cmd and returns its response.
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, cmd ipc.Command) ipc.Response {
	switch typed := cmd.(type) {
	case ipc.StartCommand:
		return dispatcher.start(typed)
	case ipc.PauseCommand:
		if !dispatcher.session.Timer().IsRunning() {
			return ipc.NewOk("Timer not running")
		}
		dispatcher.session.Pause()
		return ipc.NewOk("Timer paused")
	case ipc.ResumeCommand:
		if !dispatcher.session.Timer().IsPaused() {
			return ipc.NewOk("Timer not paused")
		}
		dispatcher.session.Start()
		return ipc.NewOk("Timer resumed")
	case ipc.ToggleCommand:
		return ipc.NewOk(toggleMessage(dispatcher.session.Toggle()))
	case ipc.StopCommand:
		dispatcher.session.Reset()
		return ipc.NewOk("Timer stopped and reset")
	case ipc.SkipCommand:
		dispatcher.session.Skip()
		return ipc.NewOk("Skipped to " + dispatcher.session.Type().DisplayName())
	case ipc.StatusCommand:
		return StatusOf(dispatcher.session)
	case ipc.StatsCommand:
		return dispatcher.statistics(ctx, typed.Period)
	case ipc.PingCommand:
		return ipc.PongResponse{}
	default:
		return ipc.NewError(fmt.Sprintf("Unsupported command: %T", cmd))
	}
}

func (dispatcher *Dispatcher) start(cmd ipc.StartCommand) ipc.Response {
	if cmd.SessionType != nil {
		sessionType, err := session.ParseType(*cmd.SessionType)
		if err != nil {
			return ipc.NewError("Unknown session type: " + *cmd.SessionType)
		}
		dispatcher.session.SwitchTo(sessionType)
	}
	if dispatcher.session.Timer().IsRunning() {
		return ipc.NewOk("Timer already running")
	}
	dispatcher.session.Start()
	return ipc.NewOk("Timer started")
}

func toggleMessage(event timer.Event) string {
	switch event {
	case timer.EventStarted:
		return "Timer started"
	case timer.EventResumed:
		return "Timer resumed"
	case timer.EventPaused:
		return "Timer paused"
	default:
		return "Timer toggled"
	}
}

func (dispatcher *Dispatcher) statistics(ctx context.Context, period string) ipc.Response {
	if period != "today" && period != "week" && period != "all" {
		return ipc.NewError("Unknown period: " + period)
	}
	if dispatcher.stats == nil {
		return ipc.NewError("Statistics unavailable")
	}
	snapshot, err := dispatcher.stats.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Load statistics")
		return ipc.NewError("Failed to load statistics")
	}

	resp := ipc.StatsResponse{
		Period:         period,
		CurrentStreak:  snapshot.CurrentStreak,
		LongestStreak:  snapshot.LongestStreak,
		DailyGoal:      dispatcher.dailyGoal,
		TodayPomodoros: snapshot.TodayPomodoros,
	}
	switch period {
	case "today":
		resp.Hours, resp.Pomodoros = snapshot.TodayHours(), snapshot.TodayPomodoros
	case "week":
		resp.Hours, resp.Pomodoros = snapshot.WeekHours(), snapshot.WeekPomodoros
	case "all":
		resp.Hours, resp.Pomodoros = snapshot.TotalHours(), snapshot.TotalPomodoros
	}
	resp.Hours = math.Round(resp.Hours*100) / 100
	return resp
}

// StatusOf projects the session into a status response.
func StatusOf(sess *session.Session) ipc.StatusResponse {
	current := sess.Timer()
	return ipc.StatusResponse{
		State:              string(current.State()),
		SessionType:        string(sess.Type()),
		RemainingSecs:      current.RemainingSecs(),
		RemainingFormatted: current.Format(),
		Progress:           current.Progress(),
		CurrentSession:     sess.CurrentSessionInCycle(),
		TotalSessions:      sess.TotalSessionsInCycle(),
		TotalDurationSecs:  uint64(current.TotalDuration().Seconds()),
	}
}
