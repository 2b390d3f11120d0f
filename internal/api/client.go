// Package api is the client for the remote ordering service's REST API.
// Token endpoints go out over a raw HTTP client; everything else runs
// through the authenticated request pipeline, which owns bearer injection
// and the refresh-and-replay behavior.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// Doer executes authenticated JSON requests. Implemented by
// transport.Pipeline.
type Doer interface {
	Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error)
}

// Error is a non-2xx response from the remote service.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d: %s", e.StatusCode, e.Detail)
}

// Client talks to the remote ordering service.
type Client struct {
	baseURL  string
	raw      *http.Client
	pipeline Doer
}

// Config configures the API client.
type Config struct {
	// BaseURL of the remote service, without trailing slash.
	BaseURL string
	// Pipeline executes authenticated requests.
	Pipeline Doer
	// HTTPClient executes raw (token) requests; defaults to a client with a
	// fixed timeout.
	HTTPClient *http.Client
}

// New creates an API client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	raw := cfg.HTTPClient
	if raw == nil {
		raw = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:  baseURL,
		raw:      raw,
		pipeline: cfg.Pipeline,
	}, nil
}

// SetPipeline installs the authenticated doer. Called once during wiring,
// after the pipeline (which needs this client's refresh primitive) exists.
func (c *Client) SetPipeline(d Doer) {
	c.pipeline = d
}

// doRaw issues a request outside the authenticated pipeline. Token
// endpoints use this path so a refresh can never recurse into itself.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.raw.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: execute request: %w", err)
	}
	return resp, nil
}

// decodeResponse decodes a JSON response into target, turning non-2xx
// statuses into *Error. The server reports failures as {"detail": ...} or
// {"message": ...}; anything else is surfaced as the raw body.
func decodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(raw))
		if gjson.ValidBytes(raw) {
			if d := gjson.GetBytes(raw, "detail"); d.Exists() {
				detail = d.String()
			} else if m := gjson.GetBytes(raw, "message"); m.Exists() {
				detail = m.String()
			}
		}
		return &Error{StatusCode: resp.StatusCode, Detail: detail}
	}

	if target == nil {
		_, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("api: discard response body: %w", err)
		}
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("api: read response body: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// get runs an authenticated GET and decodes the response.
func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	if c.pipeline == nil {
		return fmt.Errorf("api: pipeline not configured")
	}
	resp, err := c.pipeline.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

// post runs an authenticated POST and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, target interface{}) error {
	if c.pipeline == nil {
		return fmt.Errorf("api: pipeline not configured")
	}
	resp, err := c.pipeline.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}
