// Package domain defines domain-specific errors.
// These errors represent processing and playback failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrInvalidWindow is returned when a display window cannot be computed
	// from the given sample rate, window duration or point budget.
	ErrInvalidWindow = errors.New("invalid display window")

	// ErrInvalidTransformSize is returned when the spectrum transform size is not a positive power of two.
	ErrInvalidTransformSize = errors.New("invalid transform size")

	// ErrMalformedSignal is returned when a sample slice is empty or contains non-finite values.
	ErrMalformedSignal = errors.New("malformed signal")

	// ErrStaleBackground is returned when lines are updated before the background has been captured.
	ErrStaleBackground = errors.New("render background not captured")

	// ErrNoSignal is returned when an operation needs a loaded file.
	ErrNoSignal = errors.New("no signal loaded")

	// ErrNoReversedSignal is returned when playback or export is attempted before reversing.
	ErrNoReversedSignal = errors.New("no reversed signal")

	// ErrInvalidSpeed is returned when the speed factor is outside 0.5-2.0.
	ErrInvalidSpeed = errors.New("invalid speed: must be between 0.5 and 2.0")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNothingLoaded is returned when playback is attempted with no buffer loaded in the engine.
	ErrNothingLoaded = errors.New("no buffer loaded")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTransition is returned when the animator is asked for a state change it cannot make.
	ErrInvalidTransition = errors.New("invalid animator transition")
)

// InvalidWindowError describes why a display window request was rejected.
type InvalidWindowError struct {
	SampleRate int
	WindowMs   float64
	Budget     int
	Message    string
}

// Error implements the error interface.
func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window: %s (sample rate: %d, window: %gms, budget: %d)",
		e.Message, e.SampleRate, e.WindowMs, e.Budget)
}

// Unwrap lets errors.Is match ErrInvalidWindow.
func (e *InvalidWindowError) Unwrap() error {
	return ErrInvalidWindow
}

// NewInvalidWindowError creates a new InvalidWindowError.
func NewInvalidWindowError(sampleRate int, windowMs float64, budget int, message string) *InvalidWindowError {
	return &InvalidWindowError{
		SampleRate: sampleRate,
		WindowMs:   windowMs,
		Budget:     budget,
		Message:    message,
	}
}

// InvalidTransformSizeError reports a transform size that is not a positive power of two.
type InvalidTransformSizeError struct {
	Size int
}

// Error implements the error interface.
func (e *InvalidTransformSizeError) Error() string {
	return fmt.Sprintf("invalid transform size %d: must be a positive power of two", e.Size)
}

// Unwrap lets errors.Is match ErrInvalidTransformSize.
func (e *InvalidTransformSizeError) Unwrap() error {
	return ErrInvalidTransformSize
}

// NewInvalidTransformSizeError creates a new InvalidTransformSizeError.
func NewInvalidTransformSizeError(size int) *InvalidTransformSizeError {
	return &InvalidTransformSizeError{Size: size}
}

// DecodeError represents a failure to open or decode an audio file.
// It is surfaced to the user and never affects the animator.
type DecodeError struct {
	Path   string // File path
	Format string // Detected format (mp3, wav, ...), empty if unknown
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("decode %s '%s': %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("decode '%s': %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(path, format string, err error) *DecodeError {
	return &DecodeError{
		Path:   path,
		Format: format,
		Err:    err,
	}
}

// AudioEngineError represents an error from the playback engine.
// This wraps low-level audio library errors with additional context.
type AudioEngineError struct {
	Op      string // Operation that failed (e.g., "load", "play", "stop")
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *AudioEngineError) Error() string {
	return fmt.Sprintf("audio engine %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *AudioEngineError) Unwrap() error {
	return e.Err
}

// NewAudioEngineError creates a new AudioEngineError.
func NewAudioEngineError(op, message string, err error) *AudioEngineError {
	return &AudioEngineError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "recent", "preferences")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
	Err     error  // Sentinel this validation maps to, if any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "AudioService", "PlaybackService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
