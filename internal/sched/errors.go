package sched

import (
	"errors"
	"fmt"
)

// SchedError represents an error raised by a scheduler or engine
// operation. Conditions reachable during steady-state ticking are never
// surfaced this way; those are signalled through return values so the
// real-time path stays unwind-free.
type SchedError struct {
	// Code identifies the error category.
	Code SchedErrorCode

	// Message is a human-readable description.
	Message string

	// TaskName identifies the affected task, when one is involved.
	TaskName string
}

// SchedErrorCode categorizes scheduler errors.
type SchedErrorCode string

const (
	// ErrCodeUnknownTask indicates an operation referenced a task name
	// that is not registered.
	ErrCodeUnknownTask SchedErrorCode = "UNKNOWN_TASK"

	// ErrCodeRegistryFull indicates the fixed-capacity task registry has
	// no free slot.
	ErrCodeRegistryFull SchedErrorCode = "REGISTRY_FULL"

	// ErrCodeEngineNotInitialized indicates an API call before the
	// engine context exists or after it ended.
	ErrCodeEngineNotInitialized SchedErrorCode = "ENGINE_NOT_INITIALIZED"

	// ErrCodeStepQuotaExceeded indicates a task re-entered the same
	// scheduling pass more times than the configured quota allows.
	ErrCodeStepQuotaExceeded SchedErrorCode = "STEP_QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *SchedError) Error() string {
	if e.TaskName != "" {
		return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.TaskName)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRegistryFull returns true if the error is a registry capacity error.
// Uses errors.As to handle wrapped errors.
func IsRegistryFull(err error) bool {
	var se *SchedError
	if errors.As(err, &se) {
		return se.Code == ErrCodeRegistryFull
	}
	return false
}

// IsNotInitialized returns true if the error indicates a missing engine
// context.
func IsNotInitialized(err error) bool {
	var se *SchedError
	if errors.As(err, &se) {
		return se.Code == ErrCodeEngineNotInitialized
	}
	return false
}

// NewRegistryFullError creates a SchedError for an exhausted registry.
func NewRegistryFullError(name string, capacity int) *SchedError {
	return &SchedError{
		Code:     ErrCodeRegistryFull,
		Message:  fmt.Sprintf("task registry is full (%d slots)", capacity),
		TaskName: name,
	}
}

// ErrNotInitialized is the canonical missing-engine error.
var ErrNotInitialized = &SchedError{
	Code:    ErrCodeEngineNotInitialized,
	Message: "engine context is not initialized",
}
