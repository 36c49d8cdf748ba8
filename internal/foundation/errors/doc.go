// Package errors provides classified errors shared by the CLI, the control
// protocol and the storage layers.
//
// A ClassifiedError carries a category, a severity, a user-facing message and
// an optional cause:
//
//	err := errors.ConnectionError("Cannot connect to Tomatick. Is it running?").
//		WithContext("address", addr).
//		WithCause(dialErr).
//		Build()
package errors
