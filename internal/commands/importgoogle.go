package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"kanori/internal/backend/googletasks"
	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&ImportGoogleCmd{})
}

// GoogleSource reads open tasks from Google Tasks. *googletasks.Client satisfies it.
type GoogleSource interface {
	ResolveList(ctx context.Context, name string) (string, error)
	ListOpenTasks(ctx context.Context, listID string) ([]googletasks.Item, error)
}

// ImportGoogleCmd copies open Google tasks into the todo lane.
type ImportGoogleCmd struct {
	authenticated
	list   string
	dryRun bool
	source GoogleSource
}

// SetSource replaces the Google Tasks client (for testing).
func (c *ImportGoogleCmd) SetSource(s GoogleSource) {
	c.source = s
}

func (c *ImportGoogleCmd) Name() string      { return "import-google" }
func (c *ImportGoogleCmd) Aliases() []string { return nil }
func (c *ImportGoogleCmd) Synopsis() string  { return "Import open Google Tasks as todo" }
func (c *ImportGoogleCmd) Usage() string {
	return "kanori import-google [--list <list-name>] [--dry-run]"
}

func (c *ImportGoogleCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.list, "list", "l", "", "")
	fs.BoolVarP(&c.dryRun, "dry-run", "n", false, "")
}

func (c *ImportGoogleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usage(errOut, "unexpected argument: %s", args[0])
	}

	source := c.source
	if source == nil {
		if !cfg.HasGoogleToken() {
			fmt.Fprintln(errOut, "error: not connected to Google Tasks (run: kanori google-login)")
			return exitcode.AuthError
		}
		client, err := googletasks.New(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		source = client
	}

	listID, err := source.ResolveList(ctx, c.list)
	if err != nil {
		return fail(errOut, err)
	}
	items, err := source.ListOpenTasks(ctx, listID)
	if err != nil {
		return fail(errOut, err)
	}

	if c.dryRun {
		for _, item := range items {
			fmt.Fprintln(out, item.NewTask().Title)
		}
		return exitcode.Success
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	// Create prepends, so walk backwards to keep Google's order on the board.
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if _, err := b.Create(ctx, item.NewTask()); err != nil {
			return fail(errOut, fmt.Errorf("import %q: %w", item.Title, err))
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d tasks\n", len(items))
	}
	return exitcode.Success
}
