package commands

import (
	"context"

	"kanori/internal/board"
	"kanori/internal/columns"
	"kanori/internal/config"
	"kanori/internal/focus"
	"kanori/internal/service"
)

// loadBoard returns the board filled from the server.
func loadBoard(ctx context.Context, cfg *config.Config, svc service.Service) (*board.Board, error) {
	b := board.New(svc, cfg.Log())
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// openTracker returns the focus tracker backed by the state file in the config dir.
func openTracker(cfg *config.Config, svc service.Service) (*focus.Tracker, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, err
	}
	return focus.Open(svc, cfg.FocusStatePath(), focus.WithLogger(cfg.Log())), nil
}

// loadColumns returns the lane colors with config.toml defaults and the user's setting applied.
func loadColumns(ctx context.Context, cfg *config.Config, svc service.Service) *columns.Columns {
	c := columns.New(svc, cfg.Log())
	defaults := cfg.Settings.Columns
	c.RegisterDefault(service.StatusTodo, defaults.Todo)
	c.RegisterDefault(service.StatusDoing, defaults.Doing)
	c.RegisterDefault(service.StatusToday, defaults.Today)
	c.RegisterDefault(service.StatusDone, defaults.Done)
	c.Hydrate(ctx)
	return c
}
