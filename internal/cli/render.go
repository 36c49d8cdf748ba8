package cli

import (
	"fmt"
	"io"
	"math"

	"tomatick/internal/core/session"
	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/ipc"
)

// RenderResponse prints resp for a human. Error responses become the returned error.
func RenderResponse(w io.Writer, resp ipc.Response) error {
	switch typed := resp.(type) {
	case ipc.OkResponse:
		message := "OK"
		if typed.Message != nil {
			message = *typed.Message
		}
		_, err := fmt.Fprintln(w, message)
		return err
	case ipc.StatusResponse:
		return renderStatus(w, typed)
	case ipc.StatsResponse:
		return renderStats(w, typed)
	case ipc.PongResponse:
		_, err := fmt.Fprintln(w, AppName+" is running")
		return err
	case ipc.ErrorResponse:
		return ferrors.ProtocolError(typed.Message).Build()
	default:
		return ferrors.InternalError(fmt.Sprintf("unexpected response %T", resp)).Build()
	}
}

func stateIcon(state string) string {
	switch state {
	case "running":
		return ">>"
	case "paused":
		return "||"
	case "completed":
		return "**"
	default:
		return "--"
	}
}

func sessionLabel(sessionType string) string {
	parsed, err := session.ParseType(sessionType)
	if err != nil {
		return sessionType
	}
	return parsed.DisplayName()
}

func renderStatus(w io.Writer, status ipc.StatusResponse) error {
	_, err := fmt.Fprintf(w, "%s %s - %s\n   Session %d/%d | Progress: %.0f%%\n",
		stateIcon(status.State),
		sessionLabel(status.SessionType),
		status.RemainingFormatted,
		status.CurrentSession,
		status.TotalSessions,
		status.Progress*100,
	)
	return err
}

func periodLabel(period string) string {
	switch period {
	case "today":
		return "Today"
	case "week":
		return "This Week"
	case "all":
		return "All Time"
	default:
		return period
	}
}

func renderStats(w io.Writer, stats ipc.StatsResponse) error {
	if _, err := fmt.Fprintf(w, "=== %s ===\nFocus Time: %.1fh\nPomodoros:  %d\n",
		periodLabel(stats.Period), stats.Hours, stats.Pomodoros); err != nil {
		return err
	}

	if stats.Period == "today" {
		progress := 100.0
		if stats.DailyGoal > 0 {
			progress = math.Min(100, float64(stats.TodayPomodoros)/float64(stats.DailyGoal)*100)
		}
		if _, err := fmt.Fprintf(w, "Daily Goal: %d/%d (%.0f%%)\n",
			stats.TodayPomodoros, stats.DailyGoal, progress); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Streak:     %d days (best: %d)\n", stats.CurrentStreak, stats.LongestStreak)
	return err
}
