package fetch

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is matched by every UnavailableError. Callers treat an
// unavailable dataset exactly like an unrecognizable one: skip and continue.
var ErrUnavailable = errors.New("dataset unavailable")

// UnavailableError wraps whatever stopped a dataset from being loaded.
type UnavailableError struct {
	Indicator string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("dataset %s unavailable: %v", e.Indicator, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
	// RetryAfter is set when the server sent a usable Retry-After header.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: status=%d body=%s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: status=%d", e.URL, e.StatusCode)
}

// Retryable reports whether the status is worth another attempt (429, 5xx).
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
}
