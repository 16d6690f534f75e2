package kanori

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"kanori/internal/gateway"
	"kanori/internal/service"
)

// decodeSetting accepts a singleton object, a list, or a paginated envelope.
// Lists yield their first element; empty lists yield nil.
func decodeSetting(data json.RawMessage) (*service.Setting, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		if _, paged := probe["results"]; !paged {
			var s service.Setting
			if err := json.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("%w: %v", gateway.ErrDecode, err)
			}
			return &s, nil
		}
	}

	items, err := gateway.DecodeList[service.Setting](data)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// GetSetting implements service.Service.
func (c *Client) GetSetting(ctx context.Context) (*service.Setting, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.getSetting(ctx)
}

func (c *Client) getSetting(ctx context.Context) (*service.Setting, error) {
	var raw json.RawMessage
	if err := c.gw.Get(ctx, gateway.PathSetting, &raw); err != nil {
		return nil, wrapError(err)
	}
	return decodeSetting(raw)
}

// UpdateSetting implements service.Service.
//
// The backend exposes the setting either as a singleton route or as a
// collection, so the update walks: PATCH /setting/, PUT on 405; then, on
// 404/405, look up the existing setting and PATCH (or PUT on 405) its detail
// route, creating it when none exists.
func (c *Client) UpdateSetting(ctx context.Context, patch service.SettingPatch) (service.Setting, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	updated, err := c.patchOrPut(ctx, gateway.PathSetting, patch)
	if err == nil {
		return updated, nil
	}
	if !gateway.IsStatus(err, http.StatusNotFound) && !gateway.IsStatus(err, http.StatusMethodNotAllowed) {
		return service.Setting{}, wrapError(err)
	}

	existing, lookupErr := c.getSetting(ctx)
	if lookupErr != nil {
		existing = nil
	}
	if existing == nil {
		var created service.Setting
		if err := c.gw.Post(ctx, gateway.PathSetting, patch, &created); err != nil {
			return service.Setting{}, wrapError(err)
		}
		return created, nil
	}

	updated, err = c.patchOrPut(ctx, gateway.Detail(gateway.PathSetting, existing.ID), patch)
	if err != nil {
		return service.Setting{}, wrapError(err)
	}
	return updated, nil
}

func (c *Client) patchOrPut(ctx context.Context, path string, patch service.SettingPatch) (service.Setting, error) {
	var out service.Setting
	err := c.gw.Patch(ctx, path, patch, &out)
	if gateway.IsStatus(err, http.StatusMethodNotAllowed) {
		out = service.Setting{}
		err = c.gw.Put(ctx, path, patch, &out)
	}
	return out, err
}
