// Package remote implements the HTTP client of the task service.
// Each operation issues one request and decodes the uniform response envelope; it never retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/api"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20
)

// ErrNoEnvelope is returned when a response body is not a response envelope.
var ErrNoEnvelope = errors.New("response is not an envelope")

// Client talks to the task service REST API.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger

	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// WithTimeout sets the per-request timeout. It applies after WithHTTPClient regardless of order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTokenSource attaches "Authorization: Bearer <token>" to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New constructs a client for the API rooted at baseURL (e.g. "https://host/api/v1/").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http(s): %q", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	if c.tokens != nil {
		c.http.Transport = &bearerTransport{base: c.http.Transport, tokens: c.tokens}
	}
	return c, nil
}

// call issues one request and decodes the envelope.
// A body that is not an envelope (any status) or a connection failure is returned as an error.
func call[T any](ctx context.Context, c *Client, method string, path []string, query url.Values, body any) (api.Envelope[T], error) {
	var env api.Envelope[T]

	u := c.base.JoinPath(path...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return env, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("http request failed",
			zap.String("method", method),
			zap.String("path", u.Path),
			zap.Error(err),
		)
		return env, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Debug("close response body", zap.Error(cerr))
		}
	}()

	c.log.Debug("http",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return env, fmt.Errorf("read response body: %w", err)
	}

	if !isEnvelope(raw) {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return env, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return env, ErrNoEnvelope
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode response: %w", err)
	}
	return env, nil
}

// isEnvelope reports whether raw is a JSON object carrying a boolean "success" field.
func isEnvelope(raw []byte) bool {
	var head struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	return head.Success != nil
}
