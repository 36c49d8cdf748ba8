package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.now = clock.now.Add(delta)
}

func TestNewTimerIsIdleWithFullDuration(t *testing.T) {
	for _, secs := range []uint64{1, 59, 60, 1500, 3600} {
		timer := New(time.Duration(secs) * time.Second)
		assert.Equal(t, StateIdle, timer.State())
		assert.Equal(t, secs, timer.RemainingSecs())
		assert.Zero(t, timer.Progress())
	}
}

func TestStartPauseResume(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(60*time.Second, clock.Now)

	assert.Equal(t, EventStarted, timer.Start())
	assert.Equal(t, EventTick, timer.Start(), "starting a running timer is a no-op")

	clock.Advance(10 * time.Second)
	assert.Equal(t, EventPaused, timer.Pause())
	assert.Equal(t, uint64(50), timer.RemainingSecs())
	assert.Equal(t, EventTick, timer.Pause(), "pausing a paused timer is a no-op")

	clock.Advance(time.Hour)
	assert.Equal(t, EventTick, timer.Update(), "paused time does not count")
	assert.Equal(t, uint64(50), timer.RemainingSecs())

	assert.Equal(t, EventResumed, timer.Start())
	clock.Advance(5 * time.Second)
	assert.Equal(t, EventTick, timer.Update())
	assert.Equal(t, uint64(45), timer.RemainingSecs())
}

func TestToggleFromIdle(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(25*time.Minute, clock.Now)

	assert.Equal(t, EventStarted, timer.Toggle())
	assert.Equal(t, StateRunning, timer.State())

	assert.Equal(t, EventPaused, timer.Toggle())
	assert.Equal(t, StatePaused, timer.State())

	assert.Equal(t, EventResumed, timer.Toggle())
	assert.Equal(t, StateRunning, timer.State())
}

func TestCompletionReportedExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(3*time.Second, clock.Now)
	timer.Start()

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, EventTick, timer.Update())
	assert.Equal(t, StateRunning, timer.State())

	clock.Advance(time.Millisecond)
	assert.Equal(t, EventCompleted, timer.Update())
	assert.Equal(t, StateCompleted, timer.State())
	assert.Zero(t, timer.Remaining())
	assert.InDelta(t, 1.0, timer.Progress(), 1e-9)

	clock.Advance(time.Minute)
	assert.Equal(t, EventTick, timer.Update())
	assert.Equal(t, EventTick, timer.Update())
}

func TestStartAfterCompletionRestarts(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(time.Second, clock.Now)
	timer.Start()
	clock.Advance(2 * time.Second)
	require.Equal(t, EventCompleted, timer.Update())

	assert.Equal(t, EventStarted, timer.Start())
	assert.Equal(t, uint64(1), timer.RemainingSecs())
}

func TestResetFromAnyState(t *testing.T) {
	clock := newFakeClock()
	prepare := map[string]func(*Timer){
		"idle":    func(*Timer) {},
		"running": func(timer *Timer) { timer.Start(); clock.Advance(time.Second); timer.Update() },
		"paused":  func(timer *Timer) { timer.Start(); clock.Advance(time.Second); timer.Pause() },
		"completed": func(timer *Timer) {
			timer.Start()
			clock.Advance(time.Minute)
			timer.Update()
		},
	}

	for name, setup := range prepare {
		t.Run(name, func(t *testing.T) {
			timer := NewWithClock(10*time.Second, clock.Now)
			setup(timer)
			assert.Equal(t, EventReset, timer.Reset())
			assert.Equal(t, StateIdle, timer.State())
			assert.Equal(t, 10*time.Second, timer.Remaining())
		})
	}
}

func TestResetWithDuration(t *testing.T) {
	timer := New(10 * time.Second)
	timer.Start()
	assert.Equal(t, EventReset, timer.ResetWithDuration(5*time.Minute))
	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 5*time.Minute, timer.TotalDuration())
	assert.Equal(t, uint64(300), timer.RemainingSecs())
}

func TestFormatRoundsUp(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(time.Minute, clock.Now)
	assert.Equal(t, "01:00", timer.Format())

	timer.Start()
	clock.Advance(600 * time.Millisecond)
	timer.Update()
	assert.Equal(t, "01:00", timer.Format())
	assert.Equal(t, uint64(59), timer.RemainingSecs())

	clock.Advance(59 * time.Second)
	timer.Update()
	assert.Equal(t, "00:01", timer.Format())
}

func TestFormatFullIncludesHours(t *testing.T) {
	assert.Equal(t, "01:30:00", New(90*time.Minute).FormatFull())
	assert.Equal(t, "25:00", New(25*time.Minute).FormatFull())
}

func TestZeroDurationProgress(t *testing.T) {
	timer := New(0)
	assert.Equal(t, 1.0, timer.Progress())
	timer.Start()
	assert.Equal(t, EventCompleted, timer.Update())
}

func TestRemainingNeverExceedsTotal(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(10*time.Second, clock.Now)
	timer.Start()
	for i := 0; i < 15; i++ {
		clock.Advance(time.Second)
		timer.Update()
		assert.LessOrEqual(t, timer.Remaining(), timer.TotalDuration())
		assert.GreaterOrEqual(t, timer.Remaining(), time.Duration(0))
	}
}

func TestProgressPreciseTracksClockBetweenUpdates(t *testing.T) {
	clock := newFakeClock()
	timer := NewWithClock(100*time.Second, clock.Now)
	timer.Start()

	clock.Advance(25 * time.Second)
	assert.Zero(t, timer.Progress(), "Progress waits for Update")
	assert.InDelta(t, 0.25, timer.ProgressPrecise(), 1e-9)

	timer.Pause()
	clock.Advance(time.Hour)
	assert.InDelta(t, 0.25, timer.ProgressPrecise(), 1e-9)
}
