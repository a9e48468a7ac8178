package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned when a filter parameter cannot be interpreted.
var ErrInvalidQuery = errors.New("catalog: invalid query")

// HTTPError reports a non-success status from the backend.
type HTTPError struct {
	Op     string
	Status int
	Body   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog: %s status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("catalog: %s status %d: %s", e.Op, e.Status, e.Body)
}

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// IsHTTPError reports whether err carries a backend status.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
