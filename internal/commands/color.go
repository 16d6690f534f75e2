package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&ColorCmd{})
}

// ColorCmd shows or changes the lane colors.
type ColorCmd struct {
	authenticated
	reset bool
}

func (c *ColorCmd) Name() string      { return "color" }
func (c *ColorCmd) Aliases() []string { return nil }
func (c *ColorCmd) Synopsis() string  { return "Show or set lane colors" }
func (c *ColorCmd) Usage() string     { return "kanori color [<status> <color> | --reset <status>]" }

func (c *ColorCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.reset, "reset", false, "")
}

func (c *ColorCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	cols := loadColumns(ctx, cfg, svc)

	if len(args) == 0 {
		for _, status := range service.Statuses {
			marker := ""
			if cols.Color(status) == "" {
				marker = " (default)"
			}
			fmt.Fprintf(out, "%-6s %s%s\n", status, cols.Resolved(status), marker)
		}
		return exitcode.Success
	}

	status, err := service.ParseStatus(args[0])
	if err != nil {
		return usage(errOut, "%v", err)
	}

	var color string
	switch {
	case c.reset && len(args) == 1:
	case !c.reset && len(args) == 2:
		color = args[1]
	default:
		return usage(errOut, "usage: %s", c.Usage())
	}

	if err := cols.SetColor(ctx, status, color); err != nil {
		return fail(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
