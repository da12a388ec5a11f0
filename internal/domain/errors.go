package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	// ErrConnection marks an unreachable external service (AnkiConnect,
	// an audio source). Callers fall back to cached data.
	ErrConnection = errors.New("connection error")
	// ErrValidation marks input the external store or the tracker rejected.
	ErrValidation = errors.New("validation error")
	// ErrConfig marks a missing or invalid setting.
	ErrConfig = errors.New("config error")
)

// ConnectionError reports a failed call to an external service.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection: %s", e.Op)
	}
	return fmt.Sprintf("connection: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConnection}
	}
	return []error{ErrConnection, e.Err}
}

// NewConnectionError wraps err as a ConnectionError for operation op.
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}

// ValidationError describes rejected input, e.g. a malformed search query
// or an unknown field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError describes a setting that could not be used. The loader
// replaces the value with Default.
type ConfigError struct {
	Key     string
	Value   any
	Default any
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s=%v: %s (using %v)", e.Key, e.Value, e.Reason, e.Default)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
