// Package ipc implements the loopback control protocol: one JSON object per
// line, commands tagged by "command" and responses tagged by "type".
package ipc

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	ferrors "tomatick/internal/foundation/errors"
)

// CommandKind is the wire tag of a command.
type CommandKind string

const (
	KindStart  CommandKind = "start"
	KindPause  CommandKind = "pause"
	KindResume CommandKind = "resume"
	KindToggle CommandKind = "toggle"
	KindStop   CommandKind = "stop"
	KindSkip   CommandKind = "skip"
	KindStatus CommandKind = "status"
	KindStats  CommandKind = "stats"
	KindPing   CommandKind = "ping"
)

// Command is a request sent by a controller. The set of implementations is closed.
type Command interface {
	Kind() CommandKind
	isCommand()
}

// StartCommand starts the timer, optionally switching session type first.
type StartCommand struct {
	SessionType *string
}

// PauseCommand pauses a running timer.
type PauseCommand struct{}

// ResumeCommand resumes a paused timer.
type ResumeCommand struct{}

// ToggleCommand pauses or starts the timer.
type ToggleCommand struct{}

// StopCommand resets the current timer.
type StopCommand struct{}

// SkipCommand moves to the next phase.
type SkipCommand struct{}

// StatusCommand queries the timer.
type StatusCommand struct{}

// StatsCommand queries statistics for a period: today, week or all.
type StatsCommand struct {
	Period string
}

// PingCommand checks liveness.
type PingCommand struct{}

func (StartCommand) Kind() CommandKind  { return KindStart }
func (PauseCommand) Kind() CommandKind  { return KindPause }
func (ResumeCommand) Kind() CommandKind { return KindResume }
func (ToggleCommand) Kind() CommandKind { return KindToggle }
func (StopCommand) Kind() CommandKind   { return KindStop }
func (SkipCommand) Kind() CommandKind   { return KindSkip }
func (StatusCommand) Kind() CommandKind { return KindStatus }
func (StatsCommand) Kind() CommandKind  { return KindStats }
func (PingCommand) Kind() CommandKind   { return KindPing }

func (StartCommand) isCommand()  {}
func (PauseCommand) isCommand()  {}
func (ResumeCommand) isCommand() {}
func (ToggleCommand) isCommand() {}
func (StopCommand) isCommand()   {}
func (SkipCommand) isCommand()   {}
func (StatusCommand) isCommand() {}
func (StatsCommand) isCommand()  {}
func (PingCommand) isCommand()   {}

type commandEnvelope struct {
	Command     CommandKind `json:"command"`
	SessionType *string     `json:"session_type,omitempty"`
	Period      *string     `json:"period,omitempty"`
}

// MarshalCommand encodes a command without the trailing newline.
func MarshalCommand(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("marshal command: nil command")
	}
	envelope := commandEnvelope{Command: cmd.Kind()}
	switch typed := cmd.(type) {
	case StartCommand:
		envelope.SessionType = typed.SessionType
	case StatsCommand:
		period := typed.Period
		envelope.Period = &period
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}
	return data, nil
}

// ParseCommand decodes one line. Failures are protocol errors whose message
// starts with "Invalid command:".
func ParseCommand(line []byte) (Command, error) {
	var envelope commandEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(line), &envelope); err != nil {
		return nil, invalidCommand(err.Error())
	}
	switch envelope.Command {
	case KindStart:
		return StartCommand{SessionType: envelope.SessionType}, nil
	case KindPause:
		return PauseCommand{}, nil
	case KindResume:
		return ResumeCommand{}, nil
	case KindToggle:
		return ToggleCommand{}, nil
	case KindStop:
		return StopCommand{}, nil
	case KindSkip:
		return SkipCommand{}, nil
	case KindStatus:
		return StatusCommand{}, nil
	case KindStats:
		cmd := StatsCommand{}
		if envelope.Period != nil {
			cmd.Period = *envelope.Period
		}
		return cmd, nil
	case KindPing:
		return PingCommand{}, nil
	case "":
		return nil, invalidCommand("missing field `command`")
	default:
		return nil, invalidCommand(fmt.Sprintf("unknown variant `%s`", envelope.Command))
	}
}

// The decoder error is already part of detail, so no cause is attached.
func invalidCommand(detail string) error {
	return ferrors.ProtocolError("Invalid command: " + detail).Build()
}

// ResponseType is the wire tag of a response.
type ResponseType string

const (
	TypeOk     ResponseType = "ok"
	TypeStatus ResponseType = "status"
	TypeStats  ResponseType = "stats"
	TypePong   ResponseType = "pong"
	TypeError  ResponseType = "error"
)

// Response is a reply from the running instance. The set of implementations is closed.
type Response interface {
	Type() ResponseType
	isResponse()
}

// OkResponse acknowledges a command.
type OkResponse struct {
	Message *string
}

// StatusResponse is a read-only projection of the session and timer.
type StatusResponse struct {
	State              string  `json:"state"`
	SessionType        string  `json:"session_type"`
	RemainingSecs      uint64  `json:"remaining_secs"`
	RemainingFormatted string  `json:"remaining_formatted"`
	Progress           float64 `json:"progress"`
	CurrentSession     uint32  `json:"current_session"`
	TotalSessions      uint32  `json:"total_sessions"`
	TotalDurationSecs  uint64  `json:"total_duration_secs"`
}

// StatsResponse summarizes recorded statistics for a period.
type StatsResponse struct {
	Period         string  `json:"period"`
	Hours          float64 `json:"hours"`
	Pomodoros      int     `json:"pomodoros"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	DailyGoal      int     `json:"daily_goal"`
	TodayPomodoros int     `json:"today_pomodoros"`
}

// PongResponse answers a ping.
type PongResponse struct{}

// ErrorResponse reports a failed command.
type ErrorResponse struct {
	Message string
}

func (OkResponse) Type() ResponseType     { return TypeOk }
func (StatusResponse) Type() ResponseType { return TypeStatus }
func (StatsResponse) Type() ResponseType  { return TypeStats }
func (PongResponse) Type() ResponseType   { return TypePong }
func (ErrorResponse) Type() ResponseType  { return TypeError }

func (OkResponse) isResponse()     {}
func (StatusResponse) isResponse() {}
func (StatsResponse) isResponse()  {}
func (PongResponse) isResponse()   {}
func (ErrorResponse) isResponse()  {}

// NewOk creates an Ok response carrying message.
func NewOk(message string) OkResponse {
	return OkResponse{Message: &message}
}

// NewError creates an Error response.
func NewError(message string) ErrorResponse {
	return ErrorResponse{Message: message}
}

// Status and stats fields are flattened next to the tag.
type responseEnvelope struct {
	Type    ResponseType `json:"type"`
	Message *string      `json:"message,omitempty"`
	*StatusResponse
	*StatsResponse
}

// MarshalResponse encodes a response without the trailing newline.
func MarshalResponse(resp Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("marshal response: nil response")
	}
	envelope := responseEnvelope{Type: resp.Type()}
	switch typed := resp.(type) {
	case OkResponse:
		envelope.Message = typed.Message
	case ErrorResponse:
		message := typed.Message
		envelope.Message = &message
	case StatusResponse:
		envelope.StatusResponse = &typed
	case StatsResponse:
		envelope.StatsResponse = &typed
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return data, nil
}

// ParseResponse decodes one response line.
func ParseResponse(line []byte) (Response, error) {
	var envelope responseEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(line), &envelope); err != nil {
		return nil, invalidResponse(err.Error())
	}
	switch envelope.Type {
	case TypeOk:
		return OkResponse{Message: envelope.Message}, nil
	case TypeStatus:
		if envelope.StatusResponse == nil {
			return StatusResponse{}, nil
		}
		return *envelope.StatusResponse, nil
	case TypeStats:
		if envelope.StatsResponse == nil {
			return StatsResponse{}, nil
		}
		return *envelope.StatsResponse, nil
	case TypePong:
		return PongResponse{}, nil
	case TypeError:
		if envelope.Message == nil {
			return nil, invalidResponse("missing field `message`")
		}
		return ErrorResponse{Message: *envelope.Message}, nil
	case "":
		return nil, invalidResponse("missing field `type`")
	default:
		return nil, invalidResponse(fmt.Sprintf("unknown variant `%s`", envelope.Type))
	}
}

func invalidResponse(detail string) error {
	return ferrors.ProtocolError("Invalid response: " + detail).Build()
}
