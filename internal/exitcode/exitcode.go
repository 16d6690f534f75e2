// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes returned by kanori.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, session conflict).
	UserError = 1

	// AuthError indicates a missing or rejected login.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
