package stats

import "math"

// Statistics is a point-in-time summary of recorded sessions.
type Statistics struct {
	TodayWorkSeconds int64
	TodayPomodoros   int
	WeekWorkSeconds  int64
	WeekPomodoros    int
	// WeekDailyHours is indexed from Monday.
	WeekDailyHours   [7]float64
	TotalWorkSeconds int64
	TotalPomodoros   int
	CurrentStreak    int
	LongestStreak    int
}

// TodayHours returns focus hours recorded today.
func (s Statistics) TodayHours() float64 {
	return float64(s.TodayWorkSeconds) / 3600
}

// WeekHours returns focus hours recorded since Monday.
func (s Statistics) WeekHours() float64 {
	return float64(s.WeekWorkSeconds) / 3600
}

// TotalHours returns all recorded focus hours.
func (s Statistics) TotalHours() float64 {
	return float64(s.TotalWorkSeconds) / 3600
}

// DailyGoalProgress returns today's pomodoros over target, capped at 1.
func (s Statistics) DailyGoalProgress(target int) float64 {
	if target <= 0 {
		return 1
	}
	return math.Min(1, float64(s.TodayPomodoros)/float64(target))
}

// IsDailyGoalReached reports whether today's pomodoros meet target.
func (s Statistics) IsDailyGoalReached(target int) bool {
	return s.TodayPomodoros >= target
}
