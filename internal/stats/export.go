package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Summary aggregates the whole history.
type Summary struct {
	ExportDate            string  `json:"export_date"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	TotalPomodoros        int     `json:"total_pomodoros"`
	TotalDaysTracked      int     `json:"total_days_tracked"`
	CurrentStreak         int     `json:"current_streak"`
	LongestStreak         int     `json:"longest_streak"`
	AverageDailyHours     float64 `json:"average_daily_hours"`
	AverageDailyPomodoros float64 `json:"average_daily_pomodoros"`
}

// ExportData is the full export document.
type ExportData struct {
	Summary    Summary      `json:"summary"`
	DailyStats []DailyRow   `json:"daily_stats"`
	Sessions   []SessionRow `json:"sessions"`
}

// Gather collects everything needed for an export.
func (store *Store) Gather(ctx context.Context) (ExportData, error) {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return ExportData{}, err
	}
	daily, err := store.DailyStats(ctx)
	if err != nil {
		return ExportData{}, err
	}
	snapshot, err := store.Load(ctx)
	if err != nil {
		return ExportData{}, err
	}

	var workSeconds int64
	var pomodoros int
	for _, row := range daily {
		workSeconds += row.WorkSeconds
		pomodoros += row.CompletedPomodoros
	}
	summary := Summary{
		ExportDate:       store.now().Format("2006-01-02 15:04:05"),
		TotalWorkHours:   float64(workSeconds) / 3600,
		TotalPomodoros:   pomodoros,
		TotalDaysTracked: len(daily),
		CurrentStreak:    snapshot.CurrentStreak,
		LongestStreak:    snapshot.LongestStreak,
	}
	if days := len(daily); days > 0 {
		summary.AverageDailyHours = summary.TotalWorkHours / float64(days)
		summary.AverageDailyPomodoros = float64(pomodoros) / float64(days)
	}

	return ExportData{Summary: summary, DailyStats: daily, Sessions: sessions}, nil
}

// Export writes the full history to w.
func (store *Store) Export(ctx context.Context, w io.Writer, format Format) error {
	data, err := store.Gather(ctx)
	if err != nil {
		return fmt.Errorf("gather export data: %w", err)
	}
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, data)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// DefaultExportName returns a timestamped file name for format.
func DefaultExportName(format Format, now time.Time) string {
	return fmt.Sprintf("tomatick_stats_%s.%s", now.Format("20060102_150405"), format)
}

func writeCSV(w io.Writer, data ExportData) error {
	writer := csv.NewWriter(w)
	hours := func(value float64) string { return strconv.FormatFloat(value, 'f', 2, 64) }
	records := [][]string{
		{"# Summary"},
		{"Metric", "Value"},
		{"Export Date", data.Summary.ExportDate},
		{"Total Work Hours", hours(data.Summary.TotalWorkHours)},
		{"Total Pomodoros", strconv.Itoa(data.Summary.TotalPomodoros)},
		{"Days Tracked", strconv.Itoa(data.Summary.TotalDaysTracked)},
		{"Current Streak", strconv.Itoa(data.Summary.CurrentStreak)},
		{"Longest Streak", strconv.Itoa(data.Summary.LongestStreak)},
		{"Average Daily Hours", hours(data.Summary.AverageDailyHours)},
		{"Average Daily Pomodoros", hours(data.Summary.AverageDailyPomodoros)},
		{},
		{"# Daily Statistics"},
		{"Date", "Work Seconds", "Work Hours", "Break Seconds", "Completed Pomodoros", "Interrupted Pomodoros"},
	}
	for _, row := range data.DailyStats {
		records = append(records, []string{
			row.Date,
			strconv.FormatInt(row.WorkSeconds, 10),
			hours(row.WorkHours),
			strconv.FormatInt(row.BreakSeconds, 10),
			strconv.Itoa(row.CompletedPomodoros),
			strconv.Itoa(row.InterruptedPomodoros),
		})
	}
	records = append(records,
		[]string{},
		[]string{"# Sessions"},
		[]string{"ID", "Type", "Duration (s)", "Planned Duration (s)", "Completed", "Started At", "Ended At"},
	)
	for _, row := range data.Sessions {
		records = append(records, []string{
			strconv.FormatInt(row.ID, 10),
			row.SessionType,
			strconv.FormatInt(row.DurationSeconds, 10),
			strconv.FormatInt(row.PlannedSeconds, 10),
			strconv.FormatBool(row.Completed),
			row.StartedAt,
			row.EndedAt,
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}
