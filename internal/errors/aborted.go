package errors

import "errors"

// AbortedError is returned when the user quits an interactive selection.
type AbortedError struct {
	Reason string
}

func (e *AbortedError) Error() string {
	return e.Reason
}

// NewAbortedError creates an AbortedError with the provided reason.
func NewAbortedError(reason string) *AbortedError {
	return &AbortedError{Reason: reason}
}

// IsAbortedError reports whether err is an AbortedError (even when wrapped).
func IsAbortedError(err error) bool {
	var abortErr *AbortedError
	return errors.As(err, &abortErr)
}
