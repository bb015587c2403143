package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ddudnik/clipsight/internal/types"
)

const (
	requestTimeout = 120 * time.Second
	retryBaseDelay = 500 * time.Millisecond
	maxBodyBytes   = 64 << 20
)

// client posts to one upstream service, retrying transient failures with
// exponential backoff. Exhausted retries surface as ErrUpstreamUnavailable.
type client struct {
	name       string
	baseURL    string
	apiKey     string
	maxRetries int
	http       *http.Client
}

func newClient(name, baseURL, apiKey string, maxRetries int) *client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &client{
		name:       name,
		baseURL:    NormalizeBaseURL(baseURL),
		apiKey:     apiKey,
		maxRetries: maxRetries,
		http:       &http.Client{Timeout: requestTimeout},
	}
}

func (c *client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %v", types.ErrUpstreamUnavailable, c.name, ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, retryable, err := c.attempt(ctx, path, contentType, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", types.ErrUpstreamUnavailable, c.name, c.maxRetries, lastErr)
}

func (c *client) attempt(ctx context.Context, path, contentType string, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", types.ErrUpstreamUnavailable, c.name, ctx.Err())
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("%s read response: %w", c.name, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return b, false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("%s status %d: %s", c.name, resp.StatusCode, truncate(string(b), 200))
	default:
		return nil, false, fmt.Errorf("%s status %d: %s", c.name, resp.StatusCode, truncate(string(b), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
