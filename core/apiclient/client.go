package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/logger"
)

// API endpoint paths. The refresh and login paths are special-cased by the
// 401 recovery protocol and must match the server's routes exactly.
const (
	LoginPath   = "/api/auth/login"
	RefreshPath = "/api/auth/refresh"
	SelfPath    = "/api/users/me"
)

const defaultTimeout = 10 * time.Second

// Authorizer supplies the current access token for outbound requests and
// performs a refresh when the server rejects it. Implemented by
// session.Store; a Client without an Authorizer sends requests
// unauthenticated and never attempts recovery.
type Authorizer interface {
	AccessToken() string
	RefreshAccessToken(ctx context.Context) error
}

// Config holds client configuration loadable from the environment.
type Config struct {
	BaseURL string        `env:"AUTH_API_BASE_URL,required"`
	Timeout time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"10s"`
}

// Client is an HTTP client for the auth-backed API. It attaches the bearer
// token to every outbound request and drives the bounded refresh-and-retry
// protocol on 401 responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	mu               sync.RWMutex
	authorizer       Authorizer
	onSessionExpired func()
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The default client uses a
// 10 second timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger for request and protocol events.
// Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAuthorizer sets the credential source driving token injection and
// refresh. Can be nil for unauthenticated use.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) {
		c.authorizer = a
	}
}

// WithSessionExpiredHook sets the callback invoked when the refresh protocol
// gives up and the session is terminally expired. Applications typically
// navigate to their login entry point here.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewFromConfig creates a client from an environment-loaded Config.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	return New(cfg.BaseURL, append([]Option{WithTimeout(cfg.Timeout)}, opts...)...)
}

// SetAuthorizer wires the credential source after construction. Needed
// because the session store and the client reference each other.
func (c *Client) SetAuthorizer(a Authorizer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorizer = a
}

// SetSessionExpiredHook replaces the session-expired callback.
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) authorizerRef() Authorizer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authorizer
}

func (c *Client) expireSession() {
	c.mu.RLock()
	fn := c.onSessionExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Get issues an authenticated GET and decodes the response data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// retryMarkerKey marks a request context as already retried once, bounding
// the refresh protocol to a single replay per original request.
type retryMarkerKey struct{}

func withRetryMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

func wasRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retryMarkerKey{}).(bool)
	return retried
}

// envelope is the API's uniform response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, requestID, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "request transport failure",
			logger.Component("apiclient"),
			logger.Method(method),
			logger.Path(path),
			logger.RequestID(requestID),
			logger.Error(err),
		)
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	c.log.LogAttrs(ctx, slog.LevelDebug, "request completed",
		logger.Component("apiclient"),
		logger.Method(method),
		logger.Path(path),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
		logger.RequestID(requestID),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return c.recoverUnauthorized(ctx, method, path, body, out, raw)
	}

	return decodeEnvelope(resp.StatusCode, raw, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", &Error{Kind: KindParse, Message: "invalid request body", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, "", networkError(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if a := c.authorizerRef(); a != nil {
		if token := a.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, requestID, nil
}

// recoverUnauthorized classifies a 401 and drives the refresh protocol:
//
//  1. 401 from the refresh endpoint: the refresh token was rejected,
//     terminal. No retry.
//  2. 401 from the login endpoint: bad credentials, not a session-expiry
//     event. No refresh.
//  3. First 401 on any other request: refresh once, then replay the original
//     request, which picks up the new token on its way out.
//  4. Replayed request still 401: give up with the server's error.
func (c *Client) recoverUnauthorized(ctx context.Context, method, path string, body, out any, raw []byte) error {
	message := serverErrorMessage(raw)

	switch {
	case path == RefreshPath:
		c.log.LogAttrs(ctx, slog.LevelWarn, "refresh token rejected",
			logger.Component("apiclient"),
			logger.Path(path),
		)
		c.expireSession()
		return sessionExpiredError()

	case path == LoginPath:
		return apiError(http.StatusUnauthorized, message)

	case !wasRetried(ctx) && c.authorizerRef() != nil:
		ctx := withRetryMarker(ctx)

		c.log.LogAttrs(ctx, slog.LevelDebug, "access token rejected, refreshing",
			logger.Component("apiclient"),
			logger.Method(method),
			logger.Path(path),
		)

		if err := c.authorizerRef().RefreshAccessToken(ctx); err != nil {
			// The authorizer has already torn the session down.
			c.expireSession()
			return sessionExpiredError()
		}

		return c.do(ctx, method, path, body, out)

	default:
		return apiError(http.StatusUnauthorized, message)
	}
}

func decodeEnvelope(statusCode int, raw []byte, out any) error {
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if statusCode >= http.StatusBadRequest {
				return apiError(statusCode, "")
			}
			return parseError(err)
		}
	}

	if statusCode >= http.StatusBadRequest || env.Error != "" {
		return apiError(statusCode, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return parseError(err)
		}
	}

	return nil
}

func serverErrorMessage(raw []byte) string {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return env.Error
}
