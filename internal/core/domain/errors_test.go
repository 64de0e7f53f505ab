package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrMissingCredential", ErrMissingCredential},
		{"ErrPanic", ErrPanic},
		{"ErrSchedulerStopped", ErrSchedulerStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestTypedErrors_Classification(t *testing.T) {
	authErr := &AuthError{Op: "get profile", StatusCode: 401}
	transportErr := &TransportError{Op: "list followers", Err: errors.New("connection reset")}
	shapeErr := &ShapeError{Op: "get profile", Detail: "missing account id"}
	schemaErr := &UnsupportedSchemaError{Stored: 9, Supported: CurrentSchemaVersion}
	conflictErr := &MergeConflictError{Reason: "cursor moved"}

	tests := []struct {
		name      string
		err       error
		auth      bool
		transport bool
		shape     bool
		retryable bool
	}{
		{"auth", authErr, true, false, false, false},
		{"transport", transportErr, false, true, false, true},
		{"shape", shapeErr, false, false, true, false},
		{"schema", schemaErr, false, false, false, false},
		{"conflict", conflictErr, false, false, false, true},
		{"wrapped auth", fmt.Errorf("cycle: %w", authErr), true, false, false, false},
		{"plain", errors.New("unknown"), false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.auth, IsAuth(tt.err))
			assert.Equal(t, tt.transport, IsTransport(tt.err))
			assert.Equal(t, tt.shape, IsShape(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}

	assert.True(t, IsUnsupportedSchema(schemaErr))
	assert.True(t, IsMergeConflict(conflictErr))
	assert.False(t, IsRetryable(nil))
}

func TestTypedErrors_Messages(t *testing.T) {
	assert.Equal(t, "get profile: credential rejected (HTTP 401)",
		(&AuthError{Op: "get profile", StatusCode: 401}).Error())
	assert.Equal(t, "fetch: no credential configured",
		(&AuthError{Op: "fetch", Err: ErrMissingCredential}).Error())
	assert.Equal(t, "list followers: HTTP 503",
		(&TransportError{Op: "list followers", StatusCode: 503}).Error())
	assert.Contains(t, (&UnsupportedSchemaError{Stored: 5, Supported: 2}).Error(), "version 5")
	assert.Equal(t, "merge conflict: cursor moved", (&MergeConflictError{Reason: "cursor moved"}).Error())
}

func TestTypedErrors_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := &TransportError{Op: "get profile", Err: inner}
	assert.ErrorIs(t, err, inner)

	assert.ErrorIs(t, &AuthError{Op: "fetch", Err: ErrMissingCredential}, ErrMissingCredential)
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &TransportError{Op: "x", StatusCode: 429, RetryAfter: 5 * time.Second})
	assert.Equal(t, 5*time.Second, RetryAfter(err))
	assert.Zero(t, RetryAfter(errors.New("other")))
}
