// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if Run needs a backend service.
	// Commands like help, version and bounds return false.
	NeedsService() bool

	// NeedsAuth returns true if the command requires a logged-in session.
	// It implies NeedsService.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, logger).
	// svc is nil if NeedsService() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// local is embedded by commands that work without the backend.
type local struct{}

func (local) NeedsService() bool { return false }
func (local) NeedsAuth() bool    { return false }

// anonymous is embedded by commands that use the backend without a session.
type anonymous struct{}

func (anonymous) NeedsService() bool { return true }
func (anonymous) NeedsAuth() bool    { return false }

// authenticated is embedded by commands that need a logged-in session.
type authenticated struct{}

func (authenticated) NeedsService() bool { return true }
func (authenticated) NeedsAuth() bool    { return true }

// noFlags is embedded by commands without command-specific flags.
type noFlags struct{}

func (noFlags) RegisterFlags(fs *pflag.FlagSet) {}
