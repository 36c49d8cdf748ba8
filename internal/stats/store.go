// Package stats records finished sessions in SQLite and summarizes them.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"tomatick/internal/core/session"
)

const dateLayout = "2006-01-02"

// Record describes one finished session.
type Record struct {
	SessionType session.Type
	Duration    time.Duration
	Planned     time.Duration
	Completed   bool
	StartedAt   time.Time
}

// Store persists session history.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for day boundaries.
func WithClock(now func() time.Time) Option {
	return func(store *Store) {
		store.now = now
	}
}

// Open opens or creates the database at path. Use ":memory:" for a throwaway store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps per-connection pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (store *Store) initialize() error {
	schema := `
	PRAGMA busy_timeout = 5000;
	PRAGMA journal_mode = WAL;
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_type TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		planned_duration INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS daily_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT UNIQUE NOT NULL,
		total_work_seconds INTEGER DEFAULT 0,
		total_break_seconds INTEGER DEFAULT 0,
		completed_pomodoros INTEGER DEFAULT 0,
		interrupted_pomodoros INTEGER DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS streaks (
		id INTEGER PRIMARY KEY,
		current_streak INTEGER DEFAULT 0,
		longest_streak INTEGER DEFAULT 0,
		last_active_date TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
	INSERT OR IGNORE INTO streaks (id, current_streak, longest_streak) VALUES (1, 0, 0);
	`
	_, err := store.db.Exec(schema)
	return err
}

// Close releases the database.
func (store *Store) Close() error {
	return store.db.Close()
}

// RecordSession stores a finished session and updates the daily totals and streak.
func (store *Store) RecordSession(ctx context.Context, record Record) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	endedAt := store.now()
	today := endedAt.Format(dateLayout)
	seconds := int64(record.Duration / time.Second)

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_type, duration_seconds, planned_duration, completed, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(record.SessionType), seconds, int64(record.Planned/time.Second), boolToInt(record.Completed),
		record.StartedAt.UTC().Format(time.RFC3339), endedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (date) VALUES (?) ON CONFLICT(date) DO NOTHING`, today)
	if err != nil {
		return fmt.Errorf("ensure daily stats: %w", err)
	}

	if record.SessionType == session.TypeWork {
		column := "interrupted_pomodoros"
		if record.Completed {
			column = "completed_pomodoros"
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE daily_stats SET total_work_seconds = total_work_seconds + ?, %[1]s = %[1]s + 1 WHERE date = ?`, column),
			seconds, today)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE daily_stats SET total_break_seconds = total_break_seconds + ? WHERE date = ?`, seconds, today)
	}
	if err != nil {
		return fmt.Errorf("update daily stats: %w", err)
	}

	if record.SessionType == session.TypeWork && record.Completed {
		if err := store.updateStreak(ctx, tx, endedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// updateStreak extends the streak on consecutive days and restarts it after a gap.
func (store *Store) updateStreak(ctx context.Context, tx *sql.Tx, now time.Time) error {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	var current int
	var lastActive sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT current_streak, last_active_date FROM streaks WHERE id = 1`).Scan(&current, &lastActive)
	if err != nil {
		return fmt.Errorf("read streak: %w", err)
	}

	next := 1
	switch {
	case lastActive.Valid && lastActive.String == today:
		next = current
	case lastActive.Valid && lastActive.String == yesterday:
		next = current + 1
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE streaks SET current_streak = ?, longest_streak = MAX(longest_streak, ?),
		last_active_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		next, next, today)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// Load reads a fresh Statistics snapshot.
func (store *Store) Load(ctx context.Context) (Statistics, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	now := store.now()
	today := now.Format(dateLayout)
	weekStart := startOfWeek(now)

	var snapshot Statistics
	err := store.db.QueryRowContext(ctx,
		`SELECT COALESCE(total_work_seconds, 0), COALESCE(completed_pomodoros, 0) FROM daily_stats WHERE date = ?`,
		today).Scan(&snapshot.TodayWorkSeconds, &snapshot.TodayPomodoros)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Statistics{}, fmt.Errorf("query today stats: %w", err)
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT date, total_work_seconds, completed_pomodoros FROM daily_stats WHERE date >= ? AND date <= ? ORDER BY date`,
		weekStart.Format(dateLayout), today)
	if err != nil {
		return Statistics{}, fmt.Errorf("query week stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var seconds int64
		var pomodoros int
		if err := rows.Scan(&date, &seconds, &pomodoros); err != nil {
			return Statistics{}, fmt.Errorf("scan week stats: %w", err)
		}
		snapshot.WeekWorkSeconds += seconds
		snapshot.WeekPomodoros += pomodoros
		if day, err := time.ParseInLocation(dateLayout, date, now.Location()); err == nil {
			index := int(math.Round(day.Sub(weekStart).Hours() / 24))
			if index >= 0 && index < len(snapshot.WeekDailyHours) {
				snapshot.WeekDailyHours[index] = float64(seconds) / 3600
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Statistics{}, fmt.Errorf("iterate week stats: %w", err)
	}

	err = store.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_work_seconds), 0), COALESCE(SUM(completed_pomodoros), 0) FROM daily_stats`,
	).Scan(&snapshot.TotalWorkSeconds, &snapshot.TotalPomodoros)
	if err != nil {
		return Statistics{}, fmt.Errorf("query total stats: %w", err)
	}

	var lastActive sql.NullString
	err = store.db.QueryRowContext(ctx,
		`SELECT current_streak, longest_streak, last_active_date FROM streaks WHERE id = 1`,
	).Scan(&snapshot.CurrentStreak, &snapshot.LongestStreak, &lastActive)
	if err != nil {
		return Statistics{}, fmt.Errorf("query streak: %w", err)
	}
	// A streak not extended today or yesterday is already broken.
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if !lastActive.Valid || (lastActive.String != today && lastActive.String != yesterday) {
		snapshot.CurrentStreak = 0
	}

	return snapshot, nil
}

// SessionRow is one row of the sessions table.
type SessionRow struct {
	ID              int64  `json:"id"`
	SessionType     string `json:"session_type"`
	DurationSeconds int64  `json:"duration_seconds"`
	PlannedSeconds  int64  `json:"planned_duration"`
	Completed       bool   `json:"completed"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at"`
}

// DailyRow is one row of the daily_stats table.
type DailyRow struct {
	Date                 string  `json:"date"`
	WorkSeconds          int64   `json:"total_work_seconds"`
	WorkHours            float64 `json:"total_work_hours"`
	BreakSeconds         int64   `json:"total_break_seconds"`
	CompletedPomodoros   int     `json:"completed_pomodoros"`
	InterruptedPomodoros int     `json:"interrupted_pomodoros"`
}

// Sessions returns every recorded session, oldest first.
func (store *Store) Sessions(ctx context.Context) ([]SessionRow, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	rows, err := store.db.QueryContext(ctx,
		`SELECT id, session_type, duration_seconds, planned_duration, completed, started_at, COALESCE(ended_at, '')
		FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var row SessionRow
		var completed int
		if err := rows.Scan(&row.ID, &row.SessionType, &row.DurationSeconds, &row.PlannedSeconds,
			&completed, &row.StartedAt, &row.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		row.Completed = completed != 0
		result = append(result, row)
	}
	return result, rows.Err()
}

// DailyStats returns every daily aggregate, oldest first.
func (store *Store) DailyStats(ctx context.Context) ([]DailyRow, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	rows, err := store.db.QueryContext(ctx,
		`SELECT date, total_work_seconds, total_break_seconds, completed_pomodoros, interrupted_pomodoros
		FROM daily_stats ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var result []DailyRow
	for rows.Next() {
		var row DailyRow
		if err := rows.Scan(&row.Date, &row.WorkSeconds, &row.BreakSeconds,
			&row.CompletedPomodoros, &row.InterruptedPomodoros); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		row.WorkHours = float64(row.WorkSeconds) / 3600
		result = append(result, row)
	}
	return result, rows.Err()
}

func startOfWeek(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -offset)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
