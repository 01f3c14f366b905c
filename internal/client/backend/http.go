package backend

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
	"sync"
	"time"
)

const (
	authPath      = "/auth/v1"
	functionsPath = "/functions/v1"
	restPath      = "/rest/v1"
)

// HTTPClient implements Client over the backend's JSON/HTTP API.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	now     func() time.Time

	// authMu orders grant changes with their events.
	authMu    sync.Mutex
	mu        sync.RWMutex
	grant     *Grant
	expiresAt time.Time
	epoch     uint64

	events    chan AuthEvent
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewHTTPClient returns a client for the backend rooted at baseURL.
func NewHTTPClient(baseURL, anonKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
		events:  make(chan AuthEvent, 16),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (c *HTTPClient) Events() <-chan AuthEvent {
	return c.events
}

func (c *HTTPClient) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *HTTPClient) publish(ctx context.Context, ev AuthEvent) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	case <-c.done:
	}
}

// setGrantLocked installs g; c.mu must be held. A new epoch starts unless
// g continues the current session.
func (c *HTTPClient) setGrantLocked(g *Grant, renewal bool) {
	c.grant = g
	if g != nil {
		c.expiresAt = g.Expiry(c.now())
	} else {
		c.expiresAt = time.Time{}
	}
	if !renewal {
		c.epoch++
	}
}

func (c *HTTPClient) wakeRefresher() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *HTTPClient) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// endSession clears the grant and publishes SignedOut, unless the session
// that started at epoch has already been replaced.
func (c *HTTPClient) endSession(ctx context.Context, epoch uint64) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.setGrantLocked(nil, false)
	c.mu.Unlock()
	c.wakeRefresher()

	c.publish(ctx, AuthEvent{Kind: SignedOut})
}

func (c *HTTPClient) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.grant == nil {
		return ""
	}
	return c.grant.AccessToken
}

// Ping probes the identity provider's health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, authPath+"/health", nil, nil, nil)
	return err
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) error {
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	raw, err := c.do(ctx, http.MethodPost, authPath+"/token", q, body, nil)
	if err != nil {
		return err
	}
	var g Grant
	if err := json.Unmarshal(raw, &g); err != nil {
		return fmt.Errorf("decode grant: %w", err)
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	c.mu.Lock()
	c.setGrantLocked(&g, false)
	c.mu.Unlock()
	c.wakeRefresher()

	c.publish(ctx, AuthEvent{Kind: SignedIn, Grant: &g})
	return nil
}

// RefreshSession exchanges refreshToken for a new grant. The first grant of
// a process is reported as InitialSession, later ones as TokenRefreshed.
// A grant that arrives after a sign-in or sign-out started since the call
// is dropped with ErrSessionEnded.
func (c *HTTPClient) RefreshSession(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrNoSession
	}
	epoch := c.currentEpoch()
	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	raw, err := c.do(ctx, http.MethodPost, authPath+"/token", q, body, nil)
	if err != nil {
		return err
	}
	var g Grant
	if err := json.Unmarshal(raw, &g); err != nil {
		return fmt.Errorf("decode grant: %w", err)
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrSessionEnded
	}
	kind := TokenRefreshed
	if c.grant == nil {
		kind = InitialSession
	}
	c.setGrantLocked(&g, true)
	c.mu.Unlock()
	c.wakeRefresher()

	c.publish(ctx, AuthEvent{Kind: kind, Grant: &g})
	return nil
}

// SignOut ends the local session before calling the backend, so a refresh
// completing meanwhile cannot reinstate it.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.grant != nil {
		token = c.grant.AccessToken
	}
	c.setGrantLocked(nil, false)
	c.mu.Unlock()
	c.wakeRefresher()

	var err error
	if token != "" {
		headers := http.Header{"Authorization": {"Bearer " + token}}
		_, err = c.do(ctx, http.MethodPost, authPath+"/logout", nil, nil, headers)
	}

	c.authMu.Lock()
	c.publish(ctx, AuthEvent{Kind: SignedOut})
	c.authMu.Unlock()
	return err
}

func (c *HTTPClient) GetUser(ctx context.Context) (*User, error) {
	if c.accessToken() == "" {
		return nil, ErrNoSession
	}
	raw, err := c.do(ctx, http.MethodGet, authPath+"/user", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Invoke calls the named serverless function with a JSON body and returns
// the raw JSON response.
func (c *HTTPClient) Invoke(ctx context.Context, function string, body any) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodPost, functionsPath+"/"+url.PathEscape(function), nil, body, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// Select reads rows of table filtered by query (select=, eq.-style filters,
// order=, limit=) and decodes the JSON array into out.
func (c *HTTPClient) Select(ctx context.Context, table string, query url.Values, out any) error {
	raw, err := c.do(ctx, http.MethodGet, restPath+"/"+url.PathEscape(table), query, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// Update patches the rows of table matched by match.
func (c *HTTPClient) Update(ctx context.Context, table string, match url.Values, patch any) error {
	headers := http.Header{"Prefer": {"return=minimal"}}
	_, err := c.do(ctx, http.MethodPatch, restPath+"/"+url.PathEscape(table), match, patch, headers)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}
	bearer := c.anonKey
	if token := c.accessToken(); token != "" {
		bearer = token
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return raw, mapStatus(resp.StatusCode, raw)
}

// mapStatus turns a non-2xx response into a sentinel or an *APIError.
func mapStatus(status int, body []byte) error {
	msg := extractMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			return ErrUnauthorized
		}
		return &APIError{Status: status, Message: msg}
	case status == http.StatusNotFound && msg == "":
		return ErrNotFound
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// Is lets callers match an explained 401/403/404 with the sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

func extractMessage(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for _, key := range []string{"error_description", "msg", "message", "error"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

var _ Client = (*HTTPClient)(nil)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
