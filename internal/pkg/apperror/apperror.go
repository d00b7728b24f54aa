// Package apperror holds the error categories shared by every domain.
// Domain errors wrap one of these so the transport layer can map them
// without knowing each sentinel.
package apperror

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")

	// ErrUnauthorized means the caller could not be identified at all.
	ErrUnauthorized = errors.New("unauthorized")
)

// Category returns the category err belongs to, or nil if it is uncategorised.
func Category(err error) error {
	for _, c := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrForbidden, ErrUnauthorized} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
