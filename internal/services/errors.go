package services

import "errors"

// Sentinel errors surfaced by the service layer
var (
	// ErrDayAlreadyClosed is returned when a reconciliation record already
	// exists for the requested date. Closing twice is an operator error that
	// must surface, not merge.
	ErrDayAlreadyClosed = errors.New("day already closed")

	// ErrEmptyDrawer is returned when the counted drawer totals zero. An
	// uncounted drawer is not a valid state for closing.
	ErrEmptyDrawer = errors.New("counted cash is zero")

	// ErrValidation wraps request validation failures so handlers can map
	// them to a 400 without inspecting validator internals.
	ErrValidation = errors.New("validation failed")
)

// IsValidationError reports whether the error is a request validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
