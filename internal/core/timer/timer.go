// Package timer implements a pausable countdown driven by the monotonic clock.
package timer

import (
	"fmt"
	"math"
	"time"
)

// Clock returns the current instant. time.Now carries a monotonic reading, so
// elapsed time is immune to wall-clock adjustments.
type Clock func() time.Time

// Timer is a countdown with Idle, Running, Paused and Completed states.
// It is not safe for concurrent use; a single owner drives it.
type Timer struct {
	clock     Clock
	total     time.Duration
	remaining time.Duration
	state     State
	lastTick  time.Time
	ticking   bool
	elapsed   time.Duration
}

// New creates an idle Timer using the system clock.
func New(total time.Duration) *Timer {
	return NewWithClock(total, time.Now)
}

// NewWithClock creates an idle Timer reading time from clock.
func NewWithClock(total time.Duration, clock Clock) *Timer {
	if clock == nil {
		clock = time.Now
	}
	if total < 0 {
		total = 0
	}
	return &Timer{
		clock:     clock,
		total:     total,
		remaining: total,
		state:     StateIdle,
	}
}

// Start begins a fresh countdown from Idle or Completed, or resumes from Paused.
func (timer *Timer) Start() Event {
	switch timer.state {
	case StateIdle, StateCompleted:
		timer.elapsed = 0
		timer.remaining = timer.total
		timer.markTick()
		timer.state = StateRunning
		return EventStarted
	case StatePaused:
		timer.markTick()
		timer.state = StateRunning
		return EventResumed
	default:
		return EventTick
	}
}

// Pause folds the running interval into the accumulator.
func (timer *Timer) Pause() Event {
	if timer.state != StateRunning {
		return EventTick
	}
	timer.elapsed += timer.sinceTick()
	timer.clearTick()
	timer.state = StatePaused
	timer.recompute()
	return EventPaused
}

// Toggle pauses a running timer and starts or resumes any other.
func (timer *Timer) Toggle() Event {
	if timer.state == StateRunning {
		return timer.Pause()
	}
	return timer.Start()
}

// Reset returns the timer to Idle with the full duration remaining.
func (timer *Timer) Reset() Event {
	timer.state = StateIdle
	timer.elapsed = 0
	timer.remaining = timer.total
	timer.clearTick()
	return EventReset
}

// ResetWithDuration changes the total duration and resets.
func (timer *Timer) ResetWithDuration(total time.Duration) Event {
	if total < 0 {
		total = 0
	}
	timer.total = total
	return timer.Reset()
}

// Update recomputes the remaining time. Completed is reported exactly once.
func (timer *Timer) Update() Event {
	if timer.state != StateRunning {
		return EventTick
	}
	elapsed := timer.elapsed + timer.sinceTick()
	if elapsed >= timer.total {
		timer.remaining = 0
		timer.elapsed = timer.total
		timer.state = StateCompleted
		timer.clearTick()
		return EventCompleted
	}
	timer.remaining = timer.total - elapsed
	return EventTick
}

// State returns the current state.
func (timer *Timer) State() State {
	return timer.state
}

// IsRunning reports whether the countdown is active.
func (timer *Timer) IsRunning() bool {
	return timer.state == StateRunning
}

// IsPaused reports whether the countdown is paused.
func (timer *Timer) IsPaused() bool {
	return timer.state == StatePaused
}

// IsCompleted reports whether the countdown reached zero.
func (timer *Timer) IsCompleted() bool {
	return timer.state == StateCompleted
}

// TotalDuration returns the configured duration.
func (timer *Timer) TotalDuration() time.Duration {
	return timer.total
}

// Remaining returns the time left as of the last update.
func (timer *Timer) Remaining() time.Duration {
	return timer.remaining
}

// RemainingSecs returns whole seconds left, rounded down.
func (timer *Timer) RemainingSecs() uint64 {
	return uint64(timer.remaining / time.Second)
}

// RemainingMillis returns milliseconds left.
func (timer *Timer) RemainingMillis() uint64 {
	return uint64(timer.remaining / time.Millisecond)
}

// Progress returns the completed fraction in [0, 1]; 1 for a zero-length timer.
func (timer *Timer) Progress() float64 {
	if timer.total <= 0 {
		return 1
	}
	progress := float64(timer.total-timer.remaining) / float64(timer.total)
	return math.Max(0, math.Min(1, progress))
}

// ProgressPrecise is Progress measured against the clock now rather than the last update.
func (timer *Timer) ProgressPrecise() float64 {
	if timer.total <= 0 {
		return 1
	}
	elapsed := timer.elapsed
	if timer.state == StateRunning {
		elapsed += timer.sinceTick()
	}
	return math.Max(0, math.Min(1, float64(elapsed)/float64(timer.total)))
}

// Format renders the remaining time as MM:SS, rounding up to whole seconds.
func (timer *Timer) Format() string {
	secs := ceilSeconds(timer.remaining)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatFull renders HH:MM:SS when an hour or more remains, otherwise MM:SS.
func (timer *Timer) FormatFull() string {
	secs := ceilSeconds(timer.remaining)
	if secs >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func ceilSeconds(duration time.Duration) int64 {
	return int64((duration + time.Second - 1) / time.Second)
}

func (timer *Timer) markTick() {
	timer.lastTick = timer.clock()
	timer.ticking = true
}

func (timer *Timer) clearTick() {
	timer.lastTick = time.Time{}
	timer.ticking = false
}

func (timer *Timer) sinceTick() time.Duration {
	if !timer.ticking {
		return 0
	}
	delta := timer.clock().Sub(timer.lastTick)
	if delta < 0 {
		return 0
	}
	return delta
}

func (timer *Timer) recompute() {
	remaining := timer.total - timer.elapsed
	if remaining < 0 {
		remaining = 0
	}
	timer.remaining = remaining
}
