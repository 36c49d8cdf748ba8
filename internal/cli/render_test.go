package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/ipc"
)

func render(t *testing.T, resp ipc.Response) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, RenderResponse(&out, resp))
	return out.String()
}

func TestRenderOk(t *testing.T) {
	assert.Equal(t, "Timer started\n", render(t, ipc.NewOk("Timer started")))
	assert.Equal(t, "OK\n", render(t, ipc.OkResponse{}))
	assert.Equal(t, "Tomatick is running\n", render(t, ipc.PongResponse{}))
}

func TestRenderStatus(t *testing.T) {
	out := render(t, ipc.StatusResponse{
		State:              "running",
		SessionType:        "work",
		RemainingSecs:      1499,
		RemainingFormatted: "24:59",
		Progress:           0.0004,
		CurrentSession:     1,
		TotalSessions:      4,
		TotalDurationSecs:  1500,
	})
	assert.Equal(t, ">> Focus - 24:59\n   Session 1/4 | Progress: 0%\n", out)

	out = render(t, ipc.StatusResponse{State: "paused", SessionType: "short_break", RemainingFormatted: "02:30", Progress: 0.5, CurrentSession: 2, TotalSessions: 4})
	assert.Equal(t, "|| Short Break - 02:30\n   Session 2/4 | Progress: 50%\n", out)

	out = render(t, ipc.StatusResponse{State: "idle", SessionType: "long_break", RemainingFormatted: "15:00", CurrentSession: 4, TotalSessions: 4})
	assert.Contains(t, out, "-- Long Break - 15:00")
}

func TestRenderStats(t *testing.T) {
	out := render(t, ipc.StatsResponse{
		Period:         "today",
		Hours:          0.42,
		Pomodoros:      1,
		CurrentStreak:  1,
		LongestStreak:  3,
		DailyGoal:      8,
		TodayPomodoros: 1,
	})
	assert.Equal(t, "=== Today ===\n"+
		"Focus Time: 0.4h\n"+
		"Pomodoros:  1\n"+
		"Daily Goal: 1/8 (12%)\n"+
		"Streak:     1 days (best: 3)\n", out)

	out = render(t, ipc.StatsResponse{Period: "week", Hours: 10, Pomodoros: 24, DailyGoal: 8, TodayPomodoros: 9})
	assert.Contains(t, out, "=== This Week ===")
	assert.NotContains(t, out, "Daily Goal")

	out = render(t, ipc.StatsResponse{Period: "today", TodayPomodoros: 12, DailyGoal: 8})
	assert.Contains(t, out, "Daily Goal: 12/8 (100%)")
}

func TestRenderErrorResponse(t *testing.T) {
	var out bytes.Buffer
	err := RenderResponse(&out, ipc.NewError("Unknown period: bogus"))
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, "Error: Unknown period: bogus", ferrors.NewCLIErrorAdapter(false).FormatError(err))
}
