package images

import (
	"errors"
	"net/http"
)

// Domain errors for image submission operations.
var (
	ErrNotFound      = errors.New("image not found")
	ErrDuplicate     = errors.New("image already exists")
	ErrEmptyFile     = errors.New("file cannot be empty")
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidID     = errors.New("invalid image id")
	ErrInvalidStatus = errors.New("invalid status")

	// ErrJobDispatch signals that a submission was persisted but its
	// classification job could not be published. Callers receive it together
	// with the stored record.
	ErrJobDispatch = errors.New("job dispatch failed")
)

// MapHTTPStatus maps image domain errors to appropriate HTTP status codes.
// Internal taxonomy is never exposed beyond these three client-facing signals
// plus the generic server error.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrInvalidFile) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidStatus) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
