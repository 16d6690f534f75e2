package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/output"
	"kanori/internal/service"
)

func init() {
	Register(&SessionsCmd{})
}

// SessionsCmd lists focus sessions and their totals.
type SessionsCmd struct {
	authenticated
	task int64
}

func (c *SessionsCmd) Name() string      { return "sessions" }
func (c *SessionsCmd) Aliases() []string { return nil }
func (c *SessionsCmd) Synopsis() string  { return "List focus sessions" }
func (c *SessionsCmd) Usage() string     { return "kanori sessions [--task <id>]" }

func (c *SessionsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.Int64VarP(&c.task, "task", "t", 0, "")
}

func (c *SessionsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}

	tracker, err := openTracker(cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if err := tracker.Load(ctx); err != nil {
		return fail(errOut, err)
	}

	for _, s := range tracker.Sessions() {
		if c.task != 0 && s.Task != c.task {
			continue
		}
		output.FormatSession(out, s)
	}

	total := tracker.TotalMinutesAll()
	if c.task != 0 {
		total = tracker.TotalMinutesForTask(c.task)
	}
	fmt.Fprintf(out, "total %s\n", output.FormatMinutes(total))
	return exitcode.Success
}
