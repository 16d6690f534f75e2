package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	authenticated
	status   string
	desc     string
	estimate int
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "kanori add [--status <status>] [--desc <text>] [--estimate <minutes>] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.status, "status", "s", string(service.StatusTodo), "")
	fs.StringVarP(&c.desc, "desc", "d", "", "")
	fs.IntVarP(&c.estimate, "estimate", "e", 0, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return usage(errOut, "title required")
	}
	status, err := service.ParseStatus(c.status)
	if err != nil {
		return usage(errOut, "%v", err)
	}
	if c.estimate < 0 {
		return usage(errOut, "estimate must not be negative")
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	created, err := b.Create(ctx, service.NewTask{
		Title:            title,
		Description:      strings.TrimSpace(c.desc),
		Status:           status,
		EstimatedMinutes: c.estimate,
	})
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %d\n", created.ID)
	}
	return exitcode.Success
}
