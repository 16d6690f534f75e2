package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&ProgressCmd{})
}

// ProgressCmd sets a task's progress percentage.
type ProgressCmd struct {
	authenticated
	noFlags
}

func (c *ProgressCmd) Name() string      { return "progress" }
func (c *ProgressCmd) Aliases() []string { return nil }
func (c *ProgressCmd) Synopsis() string  { return "Set task progress (0-100)" }
func (c *ProgressCmd) Usage() string     { return "kanori progress <id> <percent>" }

func (c *ProgressCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		return usage(errOut, "usage: %s", c.Usage())
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(errOut, "%v", err)
	}
	pct, err := strconv.Atoi(args[1])
	if err != nil || pct < 0 || pct > 100 {
		return usage(errOut, "progress must be 0-100: %s", args[1])
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if _, err := b.SetProgress(ctx, id, pct); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
