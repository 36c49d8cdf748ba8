package session

import (
	"fmt"
	"strings"
)

// Type identifies the kind of session in a Pomodoro cycle.
type Type string

const (
	TypeWork       Type = "work"
	TypeShortBreak Type = "short_break"
	TypeLongBreak  Type = "long_break"
)

// ParseType accepts wire names and the short CLI aliases.
func ParseType(value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "work", "focus":
		return TypeWork, nil
	case "short", "short_break":
		return TypeShortBreak, nil
	case "long", "long_break":
		return TypeLongBreak, nil
	}
	return "", fmt.Errorf("unknown session type %q", value)
}

// IsBreak reports whether the type is a short or long break.
func (sessionType Type) IsBreak() bool {
	return sessionType == TypeShortBreak || sessionType == TypeLongBreak
}

// DisplayName returns the human readable name.
func (sessionType Type) DisplayName() string {
	switch sessionType {
	case TypeShortBreak:
		return "Short Break"
	case TypeLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// Label returns the upper-case heading shown in the tray.
func (sessionType Type) Label() string {
	return strings.ToUpper(sessionType.DisplayName())
}

// State is the session-level view of the timer state.
type State string

const (
	StateReady     State = "ready"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)
