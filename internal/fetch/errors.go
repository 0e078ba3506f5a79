package fetch

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels matched through errors.Is on the typed errors below.
var (
	ErrTimeout     = errors.New("fetch timeout")
	ErrFetchFailed = errors.New("fetch failed")
)

// TimeoutError reports that the fetch did not complete within Deadline.
type TimeoutError struct {
	URL      string
	Deadline time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch %s: timed out after %s", e.URL, e.Deadline)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status: %d %s", e.URL, e.StatusCode, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrFetchFailed }

// TransportError reports DNS, connection, TLS or read failures. Err carries the cause.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrFetchFailed }
