// Package metrics exposes counters for the control protocol and the timer.
package metrics

import "time"

// Outcome labels how a forwarded command ended.
type Outcome string

const (
	OutcomeOk      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
	OutcomeInvalid Outcome = "invalid"
)

// Recorder receives observability hooks. NoopRecorder is used when metrics are disabled.
type Recorder interface {
	IncCommand(kind string, outcome Outcome)
	ObserveResponseLatency(kind string, d time.Duration)
	IncCompletion(sessionType string)
	SetQueueDepth(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncCommand(string, Outcome)                   {}
func (NoopRecorder) ObserveResponseLatency(string, time.Duration) {}
func (NoopRecorder) IncCompletion(string)                         {}
func (NoopRecorder) SetQueueDepth(int)                            {}
