package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport-level failures (no HTTP response).
	ErrNetwork = errors.New("network error")

	// ErrAuthExpired matches a 401 that could not be recovered by a refresh.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrDecode is returned when a 2xx body is not the expected JSON.
	ErrDecode = errors.New("malformed response body")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.StatusText, e.Body)
}

// Is lets errors.Is(err, ErrAuthExpired) match a surfaced 401.
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthExpired && e.Status == 401
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
