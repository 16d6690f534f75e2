// Package gateway issues authenticated JSON requests to the kanori REST backend.
//
// Every request carries the bearer access token when one is held, and unsafe
// methods carry the csrftoken cookie as X-CSRFToken. A 401 on a non-auth path
// triggers a single refresh and a single retry; if the refresh fails the
// credentials are cleared and the original 401 is returned.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
)

const csrfCookie = "csrftoken"

// Credentials is the shared token pair the gateway reads and rotates.
type Credentials interface {
	RefreshToken() string
	Install(access, refresh string) error
	Clear() error
	SetAuthHeader(r *http.Request)
}

// Client is the authenticated request gateway.
type Client struct {
	baseURL  string
	http     *http.Client
	creds    Credentials
	logger   *slog.Logger
	onLogout func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. A cookie jar is added if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLogoutHook registers a callback run after a failed refresh cleared the credentials.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// New creates a gateway for the API rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		creds:   creds,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	return c
}

// Get issues a GET and decodes the response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one logical request, refreshing and retrying at most once on 401.
// A 204 response, or a nil out, skips decoding.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	res, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if res.status == http.StatusUnauthorized && shouldAttemptRefresh(path) {
		if c.tryRefresh(ctx) {
			res, err = c.send(ctx, method, path, payload)
			if err != nil {
				return err
			}
		} else {
			c.logout()
		}
	}

	if res.status < 200 || res.status > 299 {
		return &HTTPError{Status: res.status, StatusText: res.statusText, Body: string(res.body)}
	}
	if res.status == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

type response struct {
	status     int
	statusText string
	body       []byte
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if method != http.MethodGet && method != http.MethodHead {
		c.setCSRF(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode)

	return &response{
		status:     resp.StatusCode,
		statusText: statusText(resp),
		body:       data,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	c.creds.SetAuthHeader(req)
}

func (c *Client) setCSRF(req *http.Request) {
	if token := c.csrfToken(); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}
}

func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name != csrfCookie {
			continue
		}
		if v, err := url.QueryUnescape(cookie.Value); err == nil {
			return v
		}
		return cookie.Value
	}
	return ""
}

// tryRefresh exchanges the refresh token for a new access token.
// It never returns an error: any failure means "not refreshed".
func (c *Client) tryRefresh(ctx context.Context) bool {
	refresh := c.creds.RefreshToken()
	if refresh == "" {
		c.logger.Debug("refresh skipped: no refresh token")
		return false
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathRefresh, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	c.setCSRF(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("refresh failed", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("refresh rejected", "status", resp.StatusCode)
		return false
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Debug("refresh body invalid", "err", err)
		return false
	}
	access, ok := data["access"].(string)
	if !ok || access == "" {
		c.logger.Debug("refresh body missing access token")
		return false
	}
	rotated, _ := data["refresh"].(string)

	if err := c.creds.Install(access, rotated); err != nil {
		// The new pair is live in memory even if it could not be saved.
		c.logger.Warn("refreshed token not persisted", "err", err)
	}
	c.logger.Debug("access token refreshed", "rotated", rotated != "")
	return true
}

func (c *Client) logout() {
	c.logger.Debug("refresh failed, clearing credentials")
	if err := c.creds.Clear(); err != nil {
		c.logger.Warn("clear credentials", "err", err)
	}
	if c.onLogout != nil {
		c.onLogout()
	}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
