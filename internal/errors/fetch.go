package errors

import (
	stdErrors "errors"
	"fmt"
)

// FetchError is a page-level failure to retrieve a document: a network error,
// a timeout or a non-success HTTP status. Callers decide whether to retry.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Timeout    bool
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timed out: %v", e.URL, e.Cause)
	case e.StatusCode != 0 && e.Cause != nil:
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError wraps a transport level failure.
func NewFetchError(url string, cause error) *FetchError {
	return &FetchError{URL: url, Cause: cause}
}

// NewTimeoutError wraps a failure caused by the per-call deadline.
func NewTimeoutError(url string, cause error) *FetchError {
	return &FetchError{URL: url, Timeout: true, Cause: cause}
}

// NewStatusError reports a response with a non-success status code.
func NewStatusError(url string, statusCode int, cause error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Cause: cause}
}

// IsFetchError reports whether err is a FetchError (even when wrapped).
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return stdErrors.As(err, &fetchErr)
}
