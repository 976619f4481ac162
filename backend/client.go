// Package backend is the HTTP client for the PDF RAG chat backend. The
// backend is treated as an opaque peer: this package shapes requests, streams
// response bytes and decodes the backend's framing, nothing more.
package backend

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

	"dtui/stream"
)

// Client talks to one backend instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: chat responses stream for as long as the model
		// talks. Turn lifetime is bounded by the caller's context.
		http: &http.Client{},
	}, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stream sends a built chat request and returns a source of response
// fragments. The plain-chat endpoint streams raw text; the document endpoint
// wraps each chunk in "data: ..." lines terminated by "data: [DONE]", which
// the returned source strips.
func (c *Client) Stream(ctx context.Context, req Request) (stream.Source, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("contacting backend: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.apiError(resp)
	}

	if req.Endpoint == pdfChatEndpoint {
		return newEventSource(resp.Body), nil
	}
	return newBodySource(resp.Body), nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	return nil
}

// apiError turns a non-200 response into an error carrying the backend's
// detail message when one is present.
func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var fastAPIErr struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &fastAPIErr); err == nil && fastAPIErr.Detail != "" {
		return fmt.Errorf("backend returned %s: %s", resp.Status, fastAPIErr.Detail)
	}
	return fmt.Errorf("backend returned %s", resp.Status)
}
