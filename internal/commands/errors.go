package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"kanori/internal/backend/googletasks"
	"kanori/internal/board"
	"kanori/internal/daybounds"
	"kanori/internal/exitcode"
	"kanori/internal/focus"
	"kanori/internal/service"
)

// userErrors are failures caused by the arguments rather than the backend.
var userErrors = []error{
	service.ErrNotFound,
	board.ErrNotFound,
	board.ErrInvalidStatus,
	focus.ErrSessionActive,
	focus.ErrNotFound,
	focus.ErrNoActiveSession,
	daybounds.ErrInvalidTime,
	googletasks.ErrListNotFound,
	googletasks.ErrAmbiguousList,
}

// Code maps an error to an exit code.
func Code(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, service.ErrSessionExpired), errors.Is(err, service.ErrInvalidCredentials):
		return exitcode.AuthError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitcode.UserError
		}
	}
	return exitcode.BackendError
}

// fail prints err and returns its exit code.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return Code(err)
}

// usage prints a usage error.
func usage(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// parseID parses a positive task or session id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}
