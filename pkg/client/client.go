// Package client is the Go API client for an Easyplit server. It owns the
// session cookie, mirrors the server's error envelope, and caches the
// caller's authentication state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultStaleAfter = 5 * time.Minute

// User mirrors the server's public user projection.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	HasPassword bool   `json:"hasPassword"`
}

// AuthState is the caller's authentication snapshot. IsAuthenticated is true
// exactly when User is non-nil.
type AuthState struct {
	IsAuthenticated bool
	User            *User
}

// APIError is the decoded server error envelope.
type APIError struct {
	Status  int
	Code    string            `json:"error"`
	Message string            `json:"error_description"`
	Fields  map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// Client talks to one Easyplit server on behalf of one user. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	staleAfter time.Duration
	clock      func() time.Time

	sf    singleflight.Group
	cache authCache
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStaleAfter overrides the auth-state staleness window.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Client) { c.staleAfter = d }
}

// New constructs a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		staleAfter: defaultStaleAfter,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Register creates an account. Validation failures come back as an *APIError
// with a populated Fields map.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates and stores the session cookie. A successful login
// invalidates the cached auth state, so the next AuthState call observes the
// new identity.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.cache.invalidate()
	return resp.User, nil
}

// Logout revokes the session and invalidates the cached auth state. It
// succeeds even when no session was active.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.cache.invalidate()
	return nil
}

// AuthState reports who the client is, from cache when fresh. Concurrent
// misses are deduplicated into a single fetch; a failed fetch is remembered
// for the rest of the staleness window rather than hammering the server.
func (c *Client) AuthState(ctx context.Context) (*AuthState, error) {
	if state, err, ok := c.cache.fresh(c.clock(), c.staleAfter); ok {
		return state, err
	}

	v, err, _ := c.sf.Do("auth_state", func() (any, error) {
		// Double-check under singleflight so callers queued behind the
		// winner reuse its result.
		if state, err, ok := c.cache.fresh(c.clock(), c.staleAfter); ok {
			return state, err
		}

		var resp struct {
			User *User `json:"user"`
		}
		if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
			c.cache.store(nil, err, c.clock())
			return nil, err
		}
		state := &AuthState{IsAuthenticated: resp.User != nil, User: resp.User}
		c.cache.store(state, nil, c.clock())
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AuthState), nil
}

// do runs one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown"}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
