package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ImportResult reports how many records an import added.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// TypeUsage is the registry footprint of one resource type.
type TypeUsage struct {
	Count int64 `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Usage summarises the registry on the server.
type Usage struct {
	Total          int64                `json:"total"`
	TotalBytes     int64                `json:"totalBytes"`
	ByType         map[string]TypeUsage `json:"byType"`
	Storage        string               `json:"storage"`
	MaxUploadBytes int64                `json:"maxUploadBytes"`
	MaxUploadSize  string               `json:"maxUploadSize"`
}

// Export downloads every registered resource, newest first.
func (c *Client) Export(ctx context.Context) ([]Resource, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/api/resources/export")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.IsError() {
		_, err := decode(resp, nil)
		return nil, err
	}

	var items []Resource
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if items == nil {
		items = []Resource{}
	}
	return items, nil
}

// Import merges previously exported resources into the registry.
func (c *Client) Import(ctx context.Context, items []Resource) (*ImportResult, error) {
	if items == nil {
		items = []Resource{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return c.ImportJSON(ctx, data)
}

// ImportJSON sends an export dump as is. The server validates its shape.
func (c *Client) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Post("/api/resources/import")
	env, err := decode(resp, err)
	if err != nil {
		return nil, err
	}
	var result ImportResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &result, nil
}

// Stats returns resource counts and bytes per type.
func (c *Client) Stats(ctx context.Context) (*Usage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/api/resources/stats")
	env, err := decode(resp, err)
	if err != nil {
		return nil, err
	}
	var usage Usage
	if err := json.Unmarshal(env.Data, &usage); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &usage, nil
}
