package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrMissingCredential indicates no token is stored.
	ErrMissingCredential = errors.New("no credential configured")

	// ErrPanic marks an error recovered from a panic.
	ErrPanic = errors.New("panic")

	// ErrSchedulerStopped indicates the scheduler is not running.
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// AuthError means the credential was rejected or is missing.
// It is fatal to the cycle and never retried automatically.
type AuthError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: credential rejected (HTTP %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError covers network failures, timeouts, throttling and
// server errors. It is retryable.
type TransportError struct {
	Op         string
	StatusCode int

	// RetryAfter is the server-requested delay, if any.
	RetryAfter time.Duration
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ShapeError means a response did not match the expected structure.
// The cycle is aborted and the stored snapshot is kept.
type ShapeError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unexpected response: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: unexpected response: %s", e.Op, e.Detail)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// UnsupportedSchemaError means the stored Config was written by a newer
// release. No migration or downgrade is attempted.
type UnsupportedSchemaError struct {
	Stored    int
	Supported int
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("config schema version %d is newer than supported version %d", e.Stored, e.Supported)
}

// MergeConflictError means the stored Config moved underneath a cycle.
// The commit is rejected and the cycle counts as failed.
type MergeConflictError struct {
	Reason string
}

func (e *MergeConflictError) Error() string {
	return "merge conflict: " + e.Reason
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsShape reports whether err is a ShapeError.
func IsShape(err error) bool {
	var target *ShapeError
	return errors.As(err, &target)
}

// IsUnsupportedSchema reports whether err is an UnsupportedSchemaError.
func IsUnsupportedSchema(err error) bool {
	var target *UnsupportedSchemaError
	return errors.As(err, &target)
}

// IsMergeConflict reports whether err is a MergeConflictError.
func IsMergeConflict(err error) bool {
	var target *MergeConflictError
	return errors.As(err, &target)
}

// IsRetryable reports whether a failed cycle should be retried after backoff.
// Auth, shape and schema failures need something to change first.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !IsAuth(err) && !IsShape(err) && !IsUnsupportedSchema(err)
}

// RetryAfter returns the server-requested delay carried by err, if any.
func RetryAfter(err error) time.Duration {
	var target *TransportError
	if errors.As(err, &target) {
		return target.RetryAfter
	}
	return 0
}
