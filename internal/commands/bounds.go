package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/daybounds"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&BoundsCmd{})
}

// BoundsCmd shows or sets the local wake/sleep bounds.
type BoundsCmd struct {
	local
	wake  string
	sleep string
	clear bool
}

func (c *BoundsCmd) Name() string      { return "bounds" }
func (c *BoundsCmd) Aliases() []string { return nil }
func (c *BoundsCmd) Synopsis() string  { return "Show or set wake/sleep times" }
func (c *BoundsCmd) Usage() string     { return "kanori bounds [--wake HH:MM --sleep HH:MM | --clear]" }

func (c *BoundsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.wake, "wake", "", "")
	fs.StringVar(&c.sleep, "sleep", "", "")
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *BoundsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}
	path := cfg.DayBoundsPath()

	switch {
	case c.clear:
		if c.wake != "" || c.sleep != "" {
			return usage(errOut, "--clear cannot be combined with --wake or --sleep")
		}
		if err := daybounds.Clear(path); err != nil {
			return fail(errOut, err)
		}
	case c.wake != "" || c.sleep != "":
		if c.wake == "" || c.sleep == "" {
			return usage(errOut, "both --wake and --sleep are required")
		}
		b, err := daybounds.Parse(c.wake, c.sleep)
		if err != nil {
			return fail(errOut, err)
		}
		if err := cfg.EnsureDir(); err != nil {
			return fail(errOut, err)
		}
		if err := daybounds.Save(path, b); err != nil {
			return fail(errOut, err)
		}
	default:
		b := daybounds.Load(path)
		if b == nil {
			fmt.Fprintln(out, "not set")
		} else {
			fmt.Fprintf(out, "wake %s sleep %s\n", b.Wake, b.Sleep)
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
