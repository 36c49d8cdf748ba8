// Package session cycles a timer through work and break phases.
package session

import (
	"time"

	"tomatick/internal/core/model"
	"tomatick/internal/core/timer"
)

// Session owns the active Timer and the cycle bookkeeping.
// It is not safe for concurrent use; a single owner drives it.
type Session struct {
	clock           timer.Clock
	timer           *timer.Timer
	sessionType     Type
	completedWork   uint32
	preset          model.Preset
	autoStartBreaks bool
	autoStartWork   bool
}

// New creates a Session at the start of a work phase.
func New(preset model.Preset, clock timer.Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	preset = preset.Normalized()
	return &Session{
		clock:       clock,
		timer:       timer.NewWithClock(preset.WorkDuration(), clock),
		sessionType: TypeWork,
		preset:      preset,
	}
}

// Timer exposes the active timer for read-only projections.
func (session *Session) Timer() *timer.Timer {
	return session.timer
}

// Type returns the current session type.
func (session *Session) Type() Type {
	return session.sessionType
}

// Preset returns the active preset.
func (session *Session) Preset() model.Preset {
	return session.preset
}

// CompletedWorkSessions returns the number of naturally completed work sessions.
func (session *Session) CompletedWorkSessions() uint32 {
	return session.completedWork
}

// State maps the timer state to the session view.
func (session *Session) State() State {
	switch session.timer.State() {
	case timer.StateRunning:
		return StateActive
	case timer.StatePaused:
		return StatePaused
	case timer.StateCompleted:
		return StateCompleted
	default:
		return StateReady
	}
}

// SetPreset replaces the preset and starts over with a fresh work session.
func (session *Session) SetPreset(preset model.Preset) {
	session.preset = preset.Normalized()
	session.transitionTo(TypeWork)
}

// SetAutoStart updates the auto-start policy.
func (session *Session) SetAutoStart(breaks, work bool) {
	session.autoStartBreaks = breaks
	session.autoStartWork = work
}

// Start starts or resumes the timer.
func (session *Session) Start() timer.Event {
	return session.timer.Start()
}

// Pause pauses the timer.
func (session *Session) Pause() timer.Event {
	return session.timer.Pause()
}

// Toggle pauses or starts the timer.
func (session *Session) Toggle() timer.Event {
	return session.timer.Toggle()
}

// Reset resets the current timer without changing the session type.
func (session *Session) Reset() timer.Event {
	return session.timer.Reset()
}

// Update advances the timer. On completion it moves to the next phase and
// reports whether that phase should start on its own.
func (session *Session) Update() (timer.Event, bool) {
	event := session.timer.Update()
	if event != timer.EventCompleted {
		return event, false
	}
	return event, session.handleCompletion()
}

func (session *Session) handleCompletion() bool {
	if session.sessionType == TypeWork {
		session.completedWork++
		if session.completedWork%session.cycleLength() == 0 {
			session.transitionTo(TypeLongBreak)
		} else {
			session.transitionTo(TypeShortBreak)
		}
		return session.autoStartBreaks
	}
	session.transitionTo(TypeWork)
	return session.autoStartWork
}

// Skip abandons the current phase. Skipped work never counts toward the cycle
// and always lands on a short break.
func (session *Session) Skip() {
	if session.sessionType == TypeWork {
		session.transitionTo(TypeShortBreak)
		return
	}
	session.transitionTo(TypeWork)
}

// SwitchTo forces a phase change without cycle bookkeeping.
func (session *Session) SwitchTo(sessionType Type) {
	session.transitionTo(sessionType)
}

// transitionTo discards any progress in the old timer.
func (session *Session) transitionTo(sessionType Type) {
	session.sessionType = sessionType
	session.timer = timer.NewWithClock(session.DurationFor(sessionType), session.clock)
}

// DurationFor returns the preset duration for a session type.
func (session *Session) DurationFor(sessionType Type) time.Duration {
	switch sessionType {
	case TypeShortBreak:
		return session.preset.ShortBreakDuration()
	case TypeLongBreak:
		return session.preset.LongBreakDuration()
	default:
		return session.preset.WorkDuration()
	}
}

// CurrentSessionInCycle returns the 1-based position of the current work session.
func (session *Session) CurrentSessionInCycle() uint32 {
	return session.completedWork%session.cycleLength() + 1
}

// TotalSessionsInCycle returns the number of work sessions per cycle.
func (session *Session) TotalSessionsInCycle() uint32 {
	return session.cycleLength()
}

// SessionsUntilLongBreak counts the work sessions left before the next long break.
func (session *Session) SessionsUntilLongBreak() uint32 {
	return session.cycleLength() - session.completedWork%session.cycleLength()
}

// ResetSessionCount clears the cycle counter, typically at the start of a day.
func (session *Session) ResetSessionCount() {
	session.completedWork = 0
}

func (session *Session) cycleLength() uint32 {
	return uint32(session.preset.SessionsBeforeLong)
}
