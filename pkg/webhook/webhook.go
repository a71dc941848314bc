// Package webhook posts analysis reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccollicutt/mtr/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// RunIDHeader carries the report run ID so receivers can drop duplicates.
const RunIDHeader = "X-MTR-Run-ID"

const (
	userAgent    = "mtr-webhook"
	maxBodyBytes = 1024 * 1024
)

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL string

	// Token is sent as a bearer token when set.
	Token string

	// Timeout bounds each attempt. Zero uses DefaultTimeout.
	Timeout time.Duration

	// Retries is the number of extra attempts after a network error or a
	// 5xx response.
	Retries int

	// Backoff is the pause before each retry.
	Backoff time.Duration
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Attempts   int
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	payload, err := json.Marshal(report)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 && opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				resp.Error = ctx.Err()
				resp.Duration = time.Since(start)
				return resp
			case <-time.After(opts.Backoff):
			}
		}

		resp.Attempts++
		retry := c.post(ctx, payload, report.RunID, opts, timeout, resp)
		if !retry {
			break
		}
	}

	resp.Duration = time.Since(start)
	return resp
}

// post makes one attempt and reports whether another is worthwhile.
func (c *Client) post(ctx context.Context, payload []byte, runID string, opts SendOptions, timeout time.Duration, resp *Response) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp.StatusCode = 0
	resp.Body = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("failed to create request: %w", err)
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if runID != "" {
		req.Header.Set(RunIDHeader, runID)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		return true
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		resp.Error = fmt.Errorf("failed to read response: %w", err)
		return false
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Error = nil

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode >= 500
}
