package errors

import "maps"

// ErrorCategory is the broad class of a failure.
type ErrorCategory string

const (
	// CategoryProtocol covers malformed JSON and unknown command, period or session type values.
	CategoryProtocol ErrorCategory = "protocol"
	// CategoryConnection covers bind, connect, read and write failures.
	CategoryConnection ErrorCategory = "connection"
	// CategoryTimeout means no response materialized in time.
	CategoryTimeout ErrorCategory = "timeout"

	CategoryConfig   ErrorCategory = "config"
	CategoryStorage  ErrorCategory = "storage"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues degraded
)

// ErrorContext holds structured key/value details.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	value, ok := c[key]
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
