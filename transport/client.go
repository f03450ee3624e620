package transport

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
)

// ErrNoRefreshToken is returned internally when a 401 arrives and the
// credential store holds no refresh token to recover with.
var ErrNoRefreshToken = errors.New("no refresh token available")

// CredentialSource is the slice of the credential store the pipeline needs.
// It is satisfied by store.Store.
type CredentialSource interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Hooks are optional observation points invoked synchronously by the
// pipeline. Nil funcs are skipped.
type Hooks struct {
	// OnRefreshSuccess fires after a new access token has been stored.
	OnRefreshSuccess func()
	// OnRefreshFailure fires when the refresh call itself failed and the
	// store has been cleared.
	OnRefreshFailure func()
	// OnRetry fires just before the original request is replayed with the
	// refreshed credential.
	OnRetry func()
	// OnAuthExpired fires after an unrecoverable credential failure, once
	// per failed refresh. The consumer navigates to its login entry point.
	OnAuthExpired func()
}

// Config configures a pipeline [Client].
type Config struct {
	// BaseURL is the identity service root, e.g. "https://portal.example.com/api".
	BaseURL string
	// HTTPClient defaults to a client with a 15 second timeout.
	HTTPClient *http.Client
	// Credentials is required.
	Credentials CredentialSource
	// RefreshPath defaults to "/auth/refresh".
	RefreshPath string
	// RequestIDHeader defaults to [DefaultRequestIDHeader].
	RequestIDHeader string
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// Hooks are optional.
	Hooks Hooks
}

// Client is the request pipeline. All calls from the session controller to
// the identity service go through Do or DoJSON.
type Client struct {
	http        *http.Client
	base        *url.URL
	creds       CredentialSource
	refreshPath string
	idHeader    string
	log         *zap.Logger
	hooks       Hooks
}

// Response is a successful backend response passed through unchanged.
type Response struct {
	Status int
	Body   []byte
}

// New validates cfg and builds a pipeline client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("transport: base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("transport: base URL %q must be absolute", cfg.BaseURL)
	}
	if cfg.Credentials == nil {
		return nil, errors.New("transport: credential source required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = "/auth/refresh"
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = DefaultRequestIDHeader
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		http:        cfg.HTTPClient,
		base:        base,
		creds:       cfg.Credentials,
		refreshPath: cfg.RefreshPath,
		idHeader:    cfg.RequestIDHeader,
		log:         cfg.Logger,
		hooks:       cfg.Hooks,
	}, nil
}

// invocation wraps one logical caller request. The retried flag lives here,
// outside the http.Request, so the one-shot guard cannot leak between
// requests or survive a replay.
type invocation struct {
	method  string
	path    string
	payload []byte
	retried bool
}

// Do sends one request through the pipeline. body is JSON-marshaled when
// non-nil. Successful responses pass through unchanged; every failure is
// normalized into *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("transport: marshal request body: %w", err)
		}
	}

	inv := &invocation{method: method, path: path, payload: payload}

	status, raw, err := c.attempt(ctx, inv)
	if err != nil {
		c.log.Debug("request failed before a response arrived",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, normalizeNetwork(err)
	}
	if status < http.StatusBadRequest {
		return &Response{Status: status, Body: raw}, nil
	}

	if status == http.StatusUnauthorized && !inv.retried {
		inv.retried = true

		if refreshErr := c.refresh(ctx); refreshErr == nil {
			if c.hooks.OnRetry != nil {
				c.hooks.OnRetry()
			}
			c.log.Debug("replaying request after refresh",
				zap.String("method", method), zap.String("path", path))

			status, raw, err = c.attempt(ctx, inv)
			if err != nil {
				return nil, normalizeNetwork(err)
			}
			if status < http.StatusBadRequest {
				return &Response{Status: status, Body: raw}, nil
			}
			// A second 401 after a successful refresh is a normal error,
			// never another refresh.
		} else if !errors.Is(refreshErr, ErrNoRefreshToken) {
			c.teardown(ctx, refreshErr)
		}
	}

	return nil, normalizeResponse(status, raw)
}

// DoJSON sends a request and unmarshals the response body into out when out
// is non-nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("transport: decode response body: %w", err)
	}
	return nil
}

// attempt performs exactly one decorated HTTP exchange for inv.
func (c *Client) attempt(ctx context.Context, inv *invocation) (int, []byte, error) {
	u := c.resolve(inv.path)

	var reader io.Reader
	if len(inv.payload) > 0 {
		reader = bytes.NewReader(inv.payload)
	}
	req, err := http.NewRequestWithContext(ctx, inv.method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	c.decorate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

// decorate applies the outbound transform: bearer credential when present,
// unique request identifier always. Nothing else is touched.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if token, err := c.creds.AccessToken(ctx); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(c.idHeader, newRequestID())
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

// refresh exchanges the stored refresh token for a new access token.
func (c *Client) refresh(ctx context.Context) error {
	rt, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if rt == "" {
		return ErrNoRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": rt})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	inv := &invocation{method: http.MethodPost, path: c.refreshPath, payload: payload}
	status, raw, err := c.attempt(ctx, inv)
	if err != nil {
		return fmt.Errorf("refresh call: %w", err)
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("refresh rejected with status %d", status)
	}

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if env.Data.Token == "" {
		return errors.New("refresh response carried no token")
	}

	if err := c.creds.SetAccessToken(ctx, env.Data.Token); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	if c.hooks.OnRefreshSuccess != nil {
		c.hooks.OnRefreshSuccess()
	}
	return nil
}

// teardown clears the credential store after an unrecoverable refresh
// failure and signals the consumer to navigate to its login entry point.
func (c *Client) teardown(ctx context.Context, cause error) {
	c.log.Warn("refresh failed, clearing credentials", zap.Error(cause))
	if err := c.creds.Clear(ctx); err != nil {
		c.log.Warn("credential clear failed during teardown", zap.Error(err))
	}
	if c.hooks.OnRefreshFailure != nil {
		c.hooks.OnRefreshFailure()
	}
	if c.hooks.OnAuthExpired != nil {
		c.hooks.OnAuthExpired()
	}
}

func (c *Client) resolve(path string) string {
	base := strings.TrimRight(c.base.String(), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
