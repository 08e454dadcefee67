package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Status reported by the rendering backend for a submitted asset.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRendering Status = "rendering"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the backend will not change this status again.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Request is an asset submission: the drafted content to turn into a
// downloadable artifact.
type Request struct {
	GroupID string `json:"group_id"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// PollResult is one status observation for a submitted render.
type PollResult struct {
	Status   Status `json:"status"`
	AssetURL string `json:"asset_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Client talks to an external rendering backend that turns drafted
// content into hosted assets (slide decks, videos).
type Client interface {
	Submit(ctx context.Context, req Request) (renderID string, err error)
	Poll(ctx context.Context, renderID string) (PollResult, error)
}

// HTTPClient is a Client over a JSON HTTP API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a client for the given backend base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type submitResponse struct {
	RenderID string `json:"render_id"`
}

// Submit enqueues a render and returns the backend's ID for it.
func (c *HTTPClient) Submit(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("render submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("render backend returned %d: %s", resp.StatusCode, string(data))
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("failed to decode render response: %w", err)
	}
	if sr.RenderID == "" {
		return "", fmt.Errorf("render backend returned no render ID")
	}
	return sr.RenderID, nil
}

// Poll fetches the current status of a submitted render.
func (c *HTTPClient) Poll(ctx context.Context, renderID string) (PollResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/render/"+renderID, nil)
	if err != nil {
		return PollResult{}, fmt.Errorf("failed to build poll request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return PollResult{}, fmt.Errorf("render poll failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PollResult{}, fmt.Errorf("render backend returned %d: %s", resp.StatusCode, string(data))
	}

	var pr PollResult
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return PollResult{}, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return pr, nil
}
