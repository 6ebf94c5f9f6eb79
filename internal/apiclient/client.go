// Package apiclient talks JSON to the remote social-media service.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/dtroode/gophsocial/internal/logger"
	"github.com/dtroode/gophsocial/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

var (
	_ model.UserAPI    = (*Client)(nil)
	_ model.PostAPI    = (*Client)(nil)
	_ model.CommentAPI = (*Client)(nil)
)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	StatusCode int                 `json:"statusCode"`
	Data       jsoniter.RawMessage `json:"data"`
	Message    string              `json:"message"`
	Success    bool                `json:"success"`
}

// Client is an HTTP client bound to a fixed base address.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logger.Logger
	metrics *Metrics
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option configures a Client. Options may be given in any order; the
// transport is assembled after all of them are applied.
type Option func(*Client)

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMetrics records request metrics through m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient sends requests through a copy of hc. Its transport is
// wrapped, hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// New creates a Client for baseURL.
func New(baseURL string, logger *logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		logger:  logger.Component("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	c.http.Transport = newTransport(c.http.Transport, c.logger, c.metrics)

	return c, nil
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Route:      path,
			Message:    env.Message,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data of %s %s: %w", method, path, err)
	}

	return nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}

func segment(s string) string {
	return url.PathEscape(s)
}
