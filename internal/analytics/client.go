package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecosystem/web-bff/internal/correlation"
)

const (
	eventsPath      = "/api/analytics/events"
	eventsBatchPath = "/api/analytics/events/batch"

	defaultSingleTimeout = 5 * time.Second
	defaultBatchTimeout  = 10 * time.Second
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is shared across
// requests, so it must be safe for concurrent use.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeouts overrides the single-event and batch request timeouts.
func WithTimeouts(single, batch time.Duration) ClientOption {
	return func(c *Client) {
		c.singleTimeout = single
		c.batchTimeout = batch
	}
}

// Client is the HTTP client for the downstream analytics service. It is
// stateless per call and owned at process scope: create one at startup and
// reuse it for every request.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	singleTimeout time.Duration
	batchTimeout  time.Duration
}

// NewClient creates an analytics client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    http.DefaultClient,
		singleTimeout: defaultSingleTimeout,
		batchTimeout:  defaultBatchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts a single event payload under the 5 second timeout.
func (c *Client) Send(ctx context.Context, payload any, corr correlation.Context) error {
	return c.post(ctx, eventsPath, payload, corr, c.singleTimeout)
}

// SendBatch posts a batch payload as one downstream call under the 10 second
// timeout. There is no partial-success signal; atomicity is the downstream
// service's concern.
func (c *Client) SendBatch(ctx context.Context, payload any, corr correlation.Context) error {
	return c.post(ctx, eventsBatchPath, payload, corr, c.batchTimeout)
}

func (c *Client) post(ctx context.Context, path string, payload any, corr correlation.Context, timeout time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal analytics payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if corr.JourneyID != "" {
		req.Header.Set(correlation.HeaderJourneyID, corr.JourneyID)
	}
	if corr.UserID != "" {
		req.Header.Set(correlation.HeaderUserEcosystemID, corr.UserID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
