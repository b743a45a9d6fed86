package swapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingName is returned when a record carries no display name.
var ErrMissingName = errors.New("record has no name")

// APIError is returned for responses with a status code >= 400.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d) for %s: %s", e.StatusCode, e.URL, e.Body)
}

// Temporary reports whether the failure is worth retrying.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NetworkError wraps transient network failures
type NetworkError struct {
	Operation string
	Err       error
	Attempts  int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v",
		e.Operation, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	var transport *transportError

	return errors.As(err, &transport)
}

// transportError marks failures that happened before a response was read.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}
