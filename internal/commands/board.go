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
	Register(&BoardCmd{})
}

// BoardCmd prints the board lane by lane.
type BoardCmd struct {
	authenticated
	lane string
}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ls"} }
func (c *BoardCmd) Synopsis() string  { return "Show tasks by lane" }
func (c *BoardCmd) Usage() string     { return "kanori board [--lane <status>]" }

func (c *BoardCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.lane, "lane", "l", "", "")
}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}

	lanes := service.Statuses
	if c.lane != "" {
		status, err := service.ParseStatus(c.lane)
		if err != nil {
			return usage(errOut, "%v", err)
		}
		lanes = []service.TaskStatus{status}
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	tracker, err := openTracker(cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if err := tracker.Load(ctx); err != nil {
		cfg.Log().Debug("focus totals unavailable", "err", err)
	}
	colors := loadColumns(ctx, cfg, svc)

	for _, status := range lanes {
		tasks := b.Lane(status)
		output.LaneHeader(out, status, colors.Resolved(status), len(tasks))
		for _, task := range tasks {
			output.FormatTask(out, task, tracker.TotalMinutesForTask(task.ID))
		}
	}

	if active, ok := tracker.Active(); ok {
		state := "running"
		if tracker.Paused(active.Task) {
			state = "paused"
		}
		fmt.Fprintf(out, "\nfocus: task %d %s (%s)\n", active.Task, output.FormatElapsed(tracker.Elapsed(active.Task)), state)
	}
	return exitcode.Success
}
