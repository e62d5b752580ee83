package handlers

import (
	"errors"

	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// isValidationError checks if an error is a validation error
func isValidationError(err error) bool {
	return services.IsValidationError(err)
}

// isConflictError checks if an error is a conflict error
func isConflictError(err error) bool {
	return errors.Is(err, services.ErrDayAlreadyClosed) || remote.IsConflict(err)
}

// isRejectionError checks if the remote store rejected the payload outright
func isRejectionError(err error) bool {
	return remote.IsSemantic(err) && !remote.IsNotFound(err) && !remote.IsConflict(err)
}
