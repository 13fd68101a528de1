// Package callback implements the CallbackClient port with net/http.
package callback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// DefaultTimeout bounds a single callback attempt when none is configured.
const DefaultTimeout = 30 * time.Second

// Compile-time interface satisfaction check.
var _ driven.CallbackClient = (*Client)(nil)

// Client posts authenticated callbacks. It makes exactly one attempt per call
// and reports only the response status.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client whose requests time out after timeout. A
// non-positive timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NewClientWithHTTPClient creates a Client around a caller-supplied http.Client.
// This constructor is intended for testing.
func NewClientWithHTTPClient(httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{http: httpClient, logger: logger}
}

// Post sends req as an HTTP POST with Basic Auth. A non-empty Body is sent as
// text/plain; otherwise the request has no body. The response body is
// discarded.
func (c *Client) Post(ctx context.Context, req driven.CallbackRequest) (int, error) {
	var body io.Reader = http.NoBody
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, body)
	if err != nil {
		return 0, fmt.Errorf("build callback request: %w", err)
	}
	httpReq.SetBasicAuth(req.Username, req.Password.Reveal())
	if req.Body != "" {
		httpReq.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("post callback: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	c.logger.Debug("callback response",
		"url", req.URL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp.StatusCode, nil
}
