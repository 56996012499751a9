// Package arr provides clients for the Sonarr and Radarr v3 APIs.
package arr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/vmunix/arrbot/internal/metrics"
	"github.com/vmunix/arrbot/internal/transport"
)

const (
	// DefaultTimeout bounds every API call.
	DefaultTimeout = 15 * time.Second
	// PingTimeout bounds status probes.
	PingTimeout = 10 * time.Second
)

// Sentinel errors. Anything other than ErrNotConfigured is a communication
// failure from the caller's point of view.
var (
	ErrNotConfigured      = errors.New("not configured")
	ErrUnauthorized       = errors.New("unauthorized: invalid API key")
	ErrUnexpectedStatus   = errors.New("unexpected status")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// Client performs authenticated GET requests against one *arr instance.
type Client struct {
	service    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	verifyTLS  bool
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTLSVerify toggles certificate verification. Ignored when a custom
// HTTP client is supplied.
func WithTLSVerify(verify bool) Option {
	return func(c *Client) {
		c.verifyTLS = verify
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func newClient(service, baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		service:   service,
		baseURL:   transport.NormalizeBaseURL(baseURL),
		apiKey:    apiKey,
		verifyTLS: true,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", service)
	if c.httpClient == nil {
		c.httpClient = transport.NewHTTPClient(service, DefaultTimeout, c.verifyTLS, c.log)
	}
	return c
}

// Configured reports whether both the base URL and API key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs GET {baseURL}{path}?{query} and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (err error) {
	if !c.Configured() {
		return fmt.Errorf("%s: %w", c.service, ErrNotConfigured)
	}
	defer func() { metrics.RecordUpstream(c.service, err) }()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", "path", path, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp, path); err != nil {
		return err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.log.Error("decode failed", "path", path, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, path, err)
	}
	// null decodes into a nil slice or zero struct without error.
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		c.log.Error("null response body", "path", path)
		return fmt.Errorf("%w: %s: null body", ErrUnexpectedResponse, path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Error("decode failed", "path", path, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, path, err)
	}

	c.log.Debug("request completed", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// checkResponse maps non-2xx responses to sentinel errors.
func (c *Client) checkResponse(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Error("authentication failed, check api_key", "path", path)
		return fmt.Errorf("%s: %w", c.service, ErrUnauthorized)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	c.log.Error("unexpected status", "path", path, "status", resp.StatusCode, "body", string(body))
	return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
}

// systemStatus is the subset of /api/v3/system/status used by Ping.
type systemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// ping checks reachability and credentials.
func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	var status systemStatus
	if err := c.get(ctx, "/api/v3/system/status", nil, &status); err != nil {
		return err
	}
	c.log.Debug("ping ok", "version", status.Version)
	return nil
}
