package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mendozape/PayComMobile/internal/domain/model"
)

// List fetches a collection. Both {"data": [...]} and a bare array are
// accepted; any other shape yields an empty list.
func (c *Client) List(ctx context.Context, token, path string, query url.Values) ([]model.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(path, query), nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	var items []model.Record
	if err := json.Unmarshal(unwrap(raw), &items); err != nil {
		c.logger.DebugContext(ctx, "collection payload is not an array", "path", path)
		return []model.Record{}, nil
	}
	if items == nil {
		items = []model.Record{}
	}
	return items, nil
}

// Fetch fetches one object, unwrapping {"data": {...}}.
func (c *Client) Fetch(ctx context.Context, token, path string, query url.Values) (model.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, c.endpoint(path, query), nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return decodeObject(raw)
}

// Send issues a write and returns the decoded response object, if any.
func (c *Client) Send(ctx context.Context, token, method, path string, body any) (model.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, token, method, c.endpoint(path, nil), body, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if len(raw) == 0 {
		return model.Record{}, nil
	}
	return decodeObject(raw)
}

func decodeObject(raw json.RawMessage) (model.Record, error) {
	rec := model.Record{}
	if len(raw) == 0 {
		return rec, nil
	}
	data := unwrap(raw)
	if len(data) == 0 || data[0] != '{' {
		// Non-object payloads are returned under "data".
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if obj, ok := v.(map[string]any); ok {
			return obj, nil
		}
		rec["data"] = v
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rec, nil
}
