package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a Firebase Realtime Database style REST endpoint:
// every key maps to {base}/{path}.json, GET/PUT/PATCH/POST/DELETE carry
// read/set/update/push/delete, equality queries use orderBy + equalTo.
type Client struct {
	base  string
	auth  string
	httpc *http.Client
}

// NewClient builds a client for the given base URL. auth is the optional
// database secret or ID token, sent as the auth query parameter.
func NewClient(base, auth string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		auth:  auth,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) url(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.auth != "" {
		query.Set("auth", c.auth)
	}
	u := c.base + "/" + strings.Trim(path, "/") + ".json"
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s %s: http %d: %s", method, rawURL, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodGet, c.url(path, nil), nil)
	if err != nil {
		return nil, err
	}
	// The endpoint returns the literal null for missing keys.
	if isNull(data) {
		return nil, nil
	}
	return data, nil
}

func (c *Client) QueryEqual(ctx context.Context, path, field string, value any) (map[string]json.RawMessage, error) {
	val, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal query value: %w", err)
	}
	q := url.Values{}
	q.Set("orderBy", fmt.Sprintf("%q", field))
	q.Set("equalTo", string(val))

	data, err := c.do(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode query result: %w", err)
	}
	return out, nil
}

func (c *Client) Set(ctx context.Context, path string, value any) error {
	_, err := c.do(ctx, http.MethodPut, c.url(path, nil), value)
	return err
}

func (c *Client) Update(ctx context.Context, path string, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, c.url(path, nil), fields)
	return err
}

func (c *Client) Push(ctx context.Context, path string, value any) (string, error) {
	data, err := c.do(ctx, http.MethodPost, c.url(path, nil), value)
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	return resp.Name, nil
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, c.url(path, nil), nil)
	return err
}

func isNull(data []byte) bool {
	return len(data) == 0 || string(bytes.TrimSpace(data)) == "null"
}
