package tvdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const defaultBaseURL = "https://api4.thetvdb.com/v4"

// Sentinel errors for TVDB API responses.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized: invalid or expired API key")
	ErrRateLimited  = errors.New("rate limited: too many requests")
	ErrNoAPIKey     = errors.New("no API key configured")
)

// Client is a TVDB API v4 client with JWT authentication.
//
// The token is fetched lazily on first use. Concurrent callers that find no
// token share a single login. A 401 from any data call clears the token so
// the next call logs in again; the failing call itself is not retried.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	onRequest  func(error)

	mu     sync.RWMutex
	token  string
	logins singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tvdb")
	}
}

// WithRequestHook sets a function called once per HTTP exchange with TVDB,
// login included, with the call's error or nil.
func WithRequestHook(fn func(error)) Option {
	return func(c *Client) {
		c.onRequest = fn
	}
}

// New creates a new TVDB API v4 client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// login authenticates with TVDB and returns a JWT token.
func (c *Client) login(ctx context.Context) (_ string, err error) {
	defer func() { c.observe(err) }()

	jsonBody, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("marshal login body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %s", resp.Status)
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if loginResp.Data.Token == "" {
		return "", errors.New("login response missing token")
	}

	if c.log != nil {
		c.log.Debug("authenticated with TVDB")
	}
	return loginResp.Data.Token, nil
}

// ensureToken returns the cached token, logging in if there is none.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := c.logins.Do("login", func() (any, error) {
		c.mu.RLock()
		cached := c.token
		c.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		// Detached from the first caller's cancellation; the HTTP client timeout still applies.
		token, err := c.login(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = token
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// invalidateToken clears the cached token if it is still the one that failed.
func (c *Client) invalidateToken(failed string) {
	c.mu.Lock()
	if c.token == failed {
		c.token = ""
	}
	c.mu.Unlock()
}

// doRequest performs an authenticated GET and decodes the JSON body into out.
func (c *Client) doRequest(ctx context.Context, endpoint string, out any) (err error) {
	if !c.Enabled() {
		return ErrNoAPIKey
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	defer func() { c.observe(err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			if c.log != nil {
				c.log.Warn("request unauthorized, invalidating token", "endpoint", endpoint)
			}
			c.invalidateToken(token)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(err error) {
	if c.onRequest != nil {
		c.onRequest(err)
	}
}

// Artwork fetches the base record for a series or movie, which carries its
// primary poster image.
func (c *Client) Artwork(ctx context.Context, kind Kind, id int) (*Artwork, error) {
	start := time.Now()

	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}

	var resp artworkResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/%s/%d", path, id), &resp); err != nil {
		if c.log != nil && errors.Is(err, ErrNotFound) {
			c.log.Debug("record not found", "kind", kind, "id", id)
		}
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("fetched artwork", "kind", kind, "id", id, "duration_ms", time.Since(start).Milliseconds())
	}
	return &Artwork{ID: resp.Data.ID, Name: resp.Data.Name, Image: resp.Data.Image}, nil
}

// PosterURL returns the absolute poster URL for a series or movie, or "" if
// TVDB has none.
func (c *Client) PosterURL(ctx context.Context, kind Kind, id int) (string, error) {
	art, err := c.Artwork(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return art.Image, nil
}

// checkResponse checks the HTTP response for errors and returns appropriate sentinel errors.
func (c *Client) checkResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("TVDB API error: %s", resp.Status)
	}
}
