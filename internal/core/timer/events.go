package timer

// State represents the current Timer mode.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// Event reports the outcome of a Timer operation.
type Event string

const (
	EventStarted   Event = "started"
	EventPaused    Event = "paused"
	EventResumed   Event = "resumed"
	EventReset     Event = "reset"
	EventCompleted Event = "completed"
	// EventTick is the neutral outcome: still counting down, or a no-op.
	EventTick Event = "tick"
)
