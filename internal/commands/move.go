package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"kanori/internal/board"
	"kanori/internal/config"
	"kanori/internal/exitcode"
	"kanori/internal/service"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd moves a task to a lane, optionally at a position within it.
type MoveCmd struct {
	authenticated
	noFlags
}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move or reorder a task" }
func (c *MoveCmd) Usage() string     { return "kanori move <id> <status> [index]" }

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || len(args) > 3 {
		return usage(errOut, "usage: %s", c.Usage())
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(errOut, "%v", err)
	}
	status, err := service.ParseStatus(args[1])
	if err != nil {
		return usage(errOut, "%v", err)
	}
	index := math.MaxInt
	if len(args) == 3 {
		index, err = strconv.Atoi(args[2])
		if err != nil {
			return usage(errOut, "invalid index: %s", args[2])
		}
	}

	b, err := loadBoard(ctx, cfg, svc)
	if err != nil {
		return fail(errOut, err)
	}
	if _, ok := b.Find(id); !ok {
		return fail(errOut, fmt.Errorf("%w: %d", board.ErrNotFound, id))
	}
	if err := b.MoveOrReorder(ctx, id, status, index); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
