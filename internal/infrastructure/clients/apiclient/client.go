// Package apiclient is the JSON-over-HTTP transport shared by every
// external provider client. It paces calls with an optional rate limiter and
// records otel metrics and spans per provider.
package apiclient

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

	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	maxErrorBody            = 512
	// DefaultMaxResponseBytes bounds a successful response body
	DefaultMaxResponseBytes = 16 << 20
)

// StatusError is returned for responses outside 2xx
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api returned status %d", e.Provider, e.StatusCode)
}

// UpstreamStatus returns the HTTP status the provider answered with
func (e *StatusError) UpstreamStatus() int {
	return e.StatusCode
}

// Client performs JSON requests against one provider
type Client struct {
	provider   string
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
	maxBody    int64
}

// Option configures a Client
type Option func(*Client)

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithRateLimit paces requests to rps with the given burst
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxResponseBytes caps the size of a successful response body
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client whose requests time out after timeout
func New(provider string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		headers:    make(http.Header),
		maxBody:    DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider label used in metrics
func (c *Client) Provider() string {
	return c.provider
}

// GetJSON issues a GET with query parameters and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, operation, endpoint string, query url.Values, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid %s endpoint: %w", c.provider, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return c.do(ctx, operation, http.MethodGet, u.String(), nil, out)
}

// PostJSON encodes body as JSON, posts it and decodes the response into out
func (c *Client) PostJSON(ctx context.Context, operation, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", c.provider, err)
	}
	return c.do(ctx, operation, http.MethodPost, endpoint, payload, out)
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, payload []byte, out any) error {
	ctx, span := observability.StartSpan(ctx, c.provider+"."+operation)
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("provider", c.provider),
		attribute.String("http.method", method),
	)

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			observability.RecordProviderCall(ctx, c.provider, operation, 0, 0, err)
			observability.RecordError(span, err)
			return fmt.Errorf("%s rate limiter: %w", c.provider, err)
		}
		observability.RecordProviderRateLimitWait(ctx, c.provider, time.Since(waitStart))
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordProviderCall(ctx, c.provider, operation, 0, time.Since(start), err)
		observability.RecordError(span, err)
		return fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	observability.SetSpanAttributes(span, attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		observability.RecordProviderCall(ctx, c.provider, operation, resp.StatusCode, time.Since(start), statusErr)
		observability.RecordError(span, statusErr)
		return statusErr
	}

	if out != nil {
		body := &io.LimitedReader{R: resp.Body, N: c.maxBody + 1}
		err := json.NewDecoder(body).Decode(out)
		if body.N <= 0 {
			err = fmt.Errorf("%s response exceeds %d bytes", c.provider, c.maxBody)
		} else if err != nil {
			err = fmt.Errorf("failed to decode %s response: %w", c.provider, err)
		}
		if err != nil {
			observability.RecordProviderCall(ctx, c.provider, operation, resp.StatusCode, time.Since(start), err)
			observability.RecordError(span, err)
			return err
		}
	}

	observability.RecordProviderCall(ctx, c.provider, operation, resp.StatusCode, time.Since(start), nil)
	return nil
}
