package gateway

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a request that exceeded its deadline before the backend
// answered. Distinguished from NetworkError so callers can word notifications
// correctly.
var ErrTimeout = errors.New("request timed out")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the backend answered with a non-2xx status. Detail carries
// the backend's `detail` string when the error payload had one.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// Detail extracts a human-readable message from a gateway error for
// user-facing notification text.
func Detail(err error) string {
	var se *ServerError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "The server took too long to respond. Please try again."
	case errors.As(err, &se) && se.Detail != "":
		return se.Detail
	case errors.As(err, &se):
		return fmt.Sprintf("The server returned an error (HTTP %d).", se.Status)
	default:
		return "Could not reach the server. Check that the backend is running."
	}
}
