package errors

import (
	stdErrors "errors"
	"fmt"
)

// DetailsNotFoundError means a detail page was fetched but holds no usable
// book data at all.
type DetailsNotFoundError struct {
	URL    string
	Reason string
}

func (e *DetailsNotFoundError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("details not found: %s", e.Reason)
	}
	return fmt.Sprintf("details not found at %s: %s", e.URL, e.Reason)
}

// NewDetailsNotFoundError creates a DetailsNotFoundError with the provided reason.
func NewDetailsNotFoundError(reason string) *DetailsNotFoundError {
	return &DetailsNotFoundError{Reason: reason}
}

// IsDetailsNotFoundError reports whether err is a DetailsNotFoundError (even when wrapped).
func IsDetailsNotFoundError(err error) bool {
	var notFound *DetailsNotFoundError
	return stdErrors.As(err, &notFound)
}
