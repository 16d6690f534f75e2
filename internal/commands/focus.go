package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/board"
	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/focus"
	"kanori/internal/output"
	"kanori/internal/service"
)

func init() {
	Register(&FocusCmd{})
}

// FocusCmd drives the focus tracker: start, pause, resume, stop and status.
type FocusCmd struct {
	authenticated
	notes   string
	block   int64
	abandon bool
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return nil }
func (c *FocusCmd) Synopsis() string  { return "Run a timed focus session" }
func (c *FocusCmd) Usage() string {
	return "kanori focus start [--notes <text>] [--block <id>] <task-id> | pause | resume | stop [--abandon] | status"
}

func (c *FocusCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.notes, "notes", "n", "", "")
	fs.Int64Var(&c.block, "block", 0, "")
	fs.BoolVar(&c.abandon, "abandon", false, "")
}

func (c *FocusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return usage(errOut, "usage: %s", c.Usage())
	}

	tracker, err := openTracker(cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "start":
		return c.start(ctx, cfg, svc, tracker, rest, out, errOut)
	case "pause":
		return c.toggle(cfg, tracker, tracker.Pause, "paused", "already paused", out, errOut)
	case "resume":
		return c.toggle(cfg, tracker, tracker.Resume, "resumed", "not paused", out, errOut)
	case "stop":
		s, err := tracker.StopActive(ctx, !c.abandon)
		if err != nil {
			return fail(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "stopped task %d after %s\n", s.Task, output.FormatMinutes(s.DurationMinutes))
		}
		return exitcode.Success
	case "status":
		active, ok := tracker.Active()
		if !ok {
			fmt.Fprintln(out, "idle")
			return exitcode.Success
		}
		state := "running"
		if tracker.Paused(active.Task) {
			state = "paused"
		}
		fmt.Fprintf(out, "task %d %s %s\n", active.Task, output.FormatElapsed(tracker.Elapsed(active.Task)), state)
		return exitcode.Success
	default:
		return usage(errOut, "unknown focus action: %s", sub)
	}
}

func (c *FocusCmd) start(ctx context.Context, cfg *config.Config, svc service.Service, tracker *focus.Tracker, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return usage(errOut, "usage: kanori focus start [--notes <text>] [--block <id>] <task-id>")
	}
	taskID, err := parseID(args[0])
	if err != nil {
		return usage(errOut, "%v", err)
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if _, ok := b.Find(taskID); !ok {
		return fail(errOut, fmt.Errorf("%w: %d", board.ErrNotFound, taskID))
	}

	var block *int64
	if c.block > 0 {
		block = &c.block
	}
	s, err := tracker.Start(ctx, taskID, c.notes, block)
	if err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "focusing on task %d (session %d)\n", taskID, s.ID)
	}
	return exitcode.Success
}

// toggle runs pause or resume against the active task.
func (c *FocusCmd) toggle(cfg *config.Config, tracker *focus.Tracker, apply func(int64) (bool, error), done, noop string, out, errOut io.Writer) int {
	active, ok := tracker.Active()
	if !ok {
		return fail(errOut, focus.ErrNoActiveSession)
	}
	changed, err := apply(active.Task)
	if err != nil {
		return fail(errOut, err)
	}
	if cfg.Quiet {
		return exitcode.Success
	}
	if !changed {
		fmt.Fprintln(out, noop)
		return exitcode.Success
	}
	fmt.Fprintf(out, "%s at %s\n", done, output.FormatElapsed(tracker.Elapsed(active.Task)))
	return exitcode.Success
}
