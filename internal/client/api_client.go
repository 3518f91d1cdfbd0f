package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/devilmonastery/pixelplaylist/internal/pkg/logger"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/metrics"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
)

const (
	// DefaultBaseURL is used when no backend URL is configured
	DefaultBaseURL = "http://localhost:8000"

	// BaseURLEnv names the environment variable holding the backend URL
	BaseURLEnv = "PIXELPLAYLIST_API_URL"

	// RequestIDHeader carries a per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)

// BaseURLFromEnv returns the backend URL from the environment, or DefaultBaseURL
func BaseURLFromEnv() string {
	if u := os.Getenv(BaseURLEnv); u != "" {
		return u
	}
	return DefaultBaseURL
}

// RequestOptions tunes a single request
type RequestOptions struct {
	// Headers override the defaults (including Content-Type)
	Headers map[string]string

	// RequiresAuth attaches a valid bearer token, refreshing it first if needed
	RequiresAuth bool
}

// Client sends JSON requests to the backend REST API
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        *TokenManager
	onAuthFailure func()
	log           *slog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuthFailureHandler sets a hook called after tokens are cleared because
// the backend rejected them or a refresh failed. Surfaces use it to send the
// user back to sign-in.
func WithAuthFailureHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onAuthFailure = fn
	}
}

// WithClientLogger sets the logger
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates an API client for baseURL.
// If tokens is nil, the client holds an empty in-memory token manager.
func NewClient(baseURL string, tokens *TokenManager, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		tokens:     tokens,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = NewTokenManager(nil, NewHTTPRefresher(baseURL, c.httpClient), WithLogger(c.log))
	}
	c.log = c.log.With(slog.String("component", "api_client"))
	return c
}

// Tokens returns the token manager used by this client
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// BaseURL returns the backend URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request and decodes a successful JSON response into out.
// out may be nil when the response body is not needed.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts RequestOptions, out any) error {
	start := time.Now()
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.WithRequest(logger.WithEndpoint(c.log, method, endpoint), requestID)

	var token string
	if opts.RequiresAuth {
		t, err := c.tokens.EnsureValidToken(ctx)
		if err != nil {
			if errors.Is(err, ErrRefreshFailed) {
				c.authFailed()
			}
			return err
		}
		if t == "" {
			return ErrAuthRequired
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlutil.JoinEndpoint(c.baseURL, endpoint), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	logger.WithDuration(log, time.Since(start)).Debug("backend response", slog.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && c.tokens.IsAuthenticated() {
			log.Info("backend rejected credentials, clearing tokens")
			if err := c.tokens.ClearTokens(); err != nil {
				log.Warn("failed to clear tokens", slog.String("error", err.Error()))
			}
			metrics.TokenClears.WithLabelValues("unauthorized").Inc()
			c.authFailed()
		}
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 || out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authFailed() {
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

// Get sends a GET request and decodes the response into T
func Get[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	return send[T](ctx, c, http.MethodGet, endpoint, nil, opts)
}

// Post sends a POST request with a JSON body and decodes the response into T
func Post[T any](ctx context.Context, c *Client, endpoint string, body any, opts RequestOptions) (T, error) {
	return send[T](ctx, c, http.MethodPost, endpoint, body, opts)
}

// Put sends a PUT request with a JSON body and decodes the response into T
func Put[T any](ctx context.Context, c *Client, endpoint string, body any, opts RequestOptions) (T, error) {
	return send[T](ctx, c, http.MethodPut, endpoint, body, opts)
}

// Patch sends a PATCH request with a JSON body and decodes the response into T
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any, opts RequestOptions) (T, error) {
	return send[T](ctx, c, http.MethodPatch, endpoint, body, opts)
}

// Delete sends a DELETE request and decodes the response (usually empty) into T
func Delete[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	return send[T](ctx, c, http.MethodDelete, endpoint, nil, opts)
}

func send[T any](ctx context.Context, c *Client, method, endpoint string, body any, opts RequestOptions) (T, error) {
	var out T
	if err := c.Do(ctx, method, endpoint, body, opts, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
