package remote

import (
	"errors"
	"fmt"
)

// Common remote store error types
var (
	ErrUnavailable    = errors.New("remote store unavailable")
	ErrTimeout        = errors.New("operation timeout")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("document not found")
	ErrConflict       = errors.New("document conflict")
	ErrInvalidPayload = errors.New("invalid payload")
)

// RemoteError represents a remote store operation error with additional
// context. Connectivity distinguishes transport-level failures (network
// unreachable, timeouts, 5xx) from semantic rejections (4xx): connectivity
// failures leave queued work in place for a later retry, semantic failures
// must surface to the operator.
type RemoteError struct {
	Op           string // Operation that failed (e.g., "CreateOrder")
	Collection   string // Remote collection involved in the operation
	Err          error  // Underlying error
	Connectivity bool   // Whether the failure is a connectivity problem
}

func (e *RemoteError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("remote %s operation failed for collection '%s': %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("remote %s operation failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsConnectivity returns true if the error is a connectivity failure
func (e *RemoteError) IsConnectivity() bool {
	return e.Connectivity
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(op, collection string, err error, connectivity bool) *RemoteError {
	return &RemoteError{
		Op:           op,
		Collection:   collection,
		Err:          err,
		Connectivity: connectivity,
	}
}

// IsConnectivity returns true if the error indicates the remote store could
// not be reached
func IsConnectivity(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.IsConnectivity()
	}

	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}

// IsSemantic returns true if the remote store was reached but rejected the
// operation
func IsSemantic(err error) bool {
	if err == nil {
		return false
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return !remoteErr.IsConnectivity()
	}
	return !IsConnectivity(err)
}

// IsNotFound returns true if the error indicates a missing document
func IsNotFound(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return errors.Is(remoteErr.Err, ErrNotFound)
	}
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error indicates a conflicting document
func IsConflict(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return errors.Is(remoteErr.Err, ErrConflict)
	}
	return errors.Is(err, ErrConflict)
}
