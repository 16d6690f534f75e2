package commands

import (
	"context"
	"fmt"
	"io"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd moves a task to the end of the done lane.
type DoneCmd struct {
	authenticated
	noFlags
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Move a task to done" }
func (c *DoneCmd) Usage() string     { return "kanori done <id>" }

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return usage(errOut, "usage: %s", c.Usage())
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(errOut, "%v", err)
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	task, ok := b.Find(id)
	if !ok {
		return usage(errOut, "task not found: %d", id)
	}
	if task.Status == service.StatusDone {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already done")
		}
		return exitcode.Success
	}
	if err := b.MoveTo(ctx, id, service.StatusDone); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
