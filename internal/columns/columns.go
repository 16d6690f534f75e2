// Package columns keeps the per-lane colors and syncs them to the user's setting.
package columns

import (
	"context"
	"log/slog"
	"strings"

	"kanori/internal/service"
)

// Store reads and writes the setting. service.Service satisfies it.
type Store interface {
	GetSetting(ctx context.Context) (*service.Setting, error)
	UpdateSetting(ctx context.Context, patch service.SettingPatch) (service.Setting, error)
}

// Columns holds custom colors and defaults, indexed by lane order.
// An empty string means unset.
type Columns struct {
	store    Store
	colors   []string
	defaults []string
	logger   *slog.Logger
}

// New creates columns with no colors set.
func New(store Store, logger *slog.Logger) *Columns {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := len(service.Statuses)
	return &Columns{
		store:    store,
		colors:   make([]string, n),
		defaults: make([]string, n),
		logger:   logger,
	}
}

// RegisterDefault sets the fallback color of a lane. A custom color equal to
// the new default is dropped.
func (c *Columns) RegisterDefault(status service.TaskStatus, color string) {
	i := status.Index()
	if i < 0 || color == "" {
		return
	}
	c.defaults[i] = color
	if strings.EqualFold(c.colors[i], color) {
		c.colors[i] = ""
	}
}

// Color returns the custom color of a lane, or "" when it shows its default.
func (c *Columns) Color(status service.TaskStatus) string {
	if i := status.Index(); i >= 0 {
		return c.colors[i]
	}
	return ""
}

// Resolved returns the custom color of a lane, falling back to its default.
func (c *Columns) Resolved(status service.TaskStatus) string {
	i := status.Index()
	if i < 0 {
		return ""
	}
	if c.colors[i] != "" {
		return c.colors[i]
	}
	return c.defaults[i]
}

// Hydrate loads the custom colors from the setting. A missing setting or a
// read error leaves the colors untouched.
func (c *Columns) Hydrate(ctx context.Context) {
	setting, err := c.store.GetSetting(ctx)
	if err != nil {
		c.logger.Debug("column colors not loaded", "err", err)
		return
	}
	if setting == nil {
		return
	}
	for i := range c.colors {
		var v string
		if i < len(setting.ColumnColors) {
			v = setting.ColumnColors[i]
		}
		if v != "" && strings.EqualFold(v, c.defaults[i]) {
			v = ""
		}
		c.colors[i] = v
	}
}

// SetColor changes a lane's custom color and persists the full color array.
// An empty color restores the default. Unknown lanes are ignored.
func (c *Columns) SetColor(ctx context.Context, status service.TaskStatus, color string) error {
	i := status.Index()
	if i < 0 {
		return nil
	}
	c.colors[i] = color
	return c.persist(ctx)
}

func (c *Columns) persist(ctx context.Context) error {
	payload, ok := c.apiArray()
	if !ok {
		c.logger.Debug("lane without color or default, skipping column_colors sync")
		return nil
	}
	_, err := c.store.UpdateSetting(ctx, service.SettingPatch{ColumnColors: payload})
	return err
}

// apiArray resolves every lane. It fails if a lane has neither a custom color nor a default.
func (c *Columns) apiArray() ([]string, bool) {
	out := make([]string, len(c.colors))
	for i := range c.colors {
		switch {
		case c.colors[i] != "":
			out[i] = c.colors[i]
		case c.defaults[i] != "":
			out[i] = c.defaults[i]
		default:
			return nil, false
		}
	}
	return out, true
}
