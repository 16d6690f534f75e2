package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Page is the paginated envelope some list endpoints return.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// DecodeList accepts either a bare JSON array or a Page envelope.
// An empty body, null, or an envelope without results yields no items.
func DecodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return items, nil
	case '{':
		var page Page[T]
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return page.Results, nil
	default:
		return nil, fmt.Errorf("%w: expected list or page", ErrDecode)
	}
}

// List GETs a list endpoint and decodes either response shape.
func List[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return DecodeList[T](raw)
}
