package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/output"
	"kanori/internal/service"
	"kanori/internal/summary"
)

func init() {
	Register(&SummaryCmd{})
}

// SummaryCmd shows or writes today's summary.
type SummaryCmd struct {
	authenticated
	set string
	all bool
}

func (c *SummaryCmd) Name() string      { return "summary" }
func (c *SummaryCmd) Aliases() []string { return nil }
func (c *SummaryCmd) Synopsis() string  { return "Show or write today's summary" }
func (c *SummaryCmd) Usage() string     { return "kanori summary [--set <text>] [--all]" }

func (c *SummaryCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.set, "set", "", "")
	fs.BoolVarP(&c.all, "all", "a", false, "")
}

func (c *SummaryCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}
	sums := summary.New(svc, nil)

	if text := strings.TrimSpace(c.set); text != "" {
		if _, err := sums.SaveToday(ctx, text); err != nil {
			return fail(errOut, err)
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	}

	if c.all {
		if err := sums.FetchAll(ctx); err != nil {
			return fail(errOut, err)
		}
		for _, s := range sums.Items() {
			output.FormatSummary(out, s)
		}
		return exitcode.Success
	}

	today, err := sums.FetchToday(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if today == nil {
		if !cfg.Quiet {
			fmt.Fprintf(out, "no summary for %s\n", sums.Today())
		}
		return exitcode.Success
	}
	output.FormatSummary(out, *today)
	return exitcode.Success
}
