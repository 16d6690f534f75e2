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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	local
	noFlags
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "kanori help" }

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  kanori                                         Show the board
  kanori board [--lane <status>]                 Show tasks by lane
  kanori add [--status <s>] [--desc <text>] [--estimate <min>] <title...>
  kanori move <id> <status> [index]              Move or reorder a task
  kanori done <id>                               Move a task to done
  kanori progress <id> <percent>                 Set task progress
  kanori rm <id>                                 Delete a task
  kanori focus start [--notes <text>] [--block <id>] <task-id>
  kanori focus pause | resume | status
  kanori focus stop [--abandon]
  kanori sessions [--task <id>]                  List focus sessions
  kanori summary [--set <text>] [--all]          Show or write today's summary
  kanori color [<status> <color> | --reset <status>]
  kanori bounds [--wake HH:MM --sleep HH:MM | --clear]
  kanori login <username> | --email <address>
  kanori register --email <address> <username>
  kanori logout
  kanori whoami
  kanori google-login                            Authorize Google Tasks import
  kanori import-google [--list <name>] [--dry-run]
  kanori help
  kanori version

Statuses: todo, doing, today, done

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
