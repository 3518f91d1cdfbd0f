package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/pkg/urlutil"
)

// RefreshEndpoint is the backend path that exchanges a refresh token for a new access token
const RefreshEndpoint = "api/token/refresh/"

// Refresher exchanges a refresh token for a new access token
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

// HTTPRefresher calls the backend token-refresh endpoint
type HTTPRefresher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPRefresher creates a refresher against baseURL.
// If httpClient is nil, http.DefaultClient is used.
func NewHTTPRefresher(baseURL string, httpClient *http.Client) *HTTPRefresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPRefresher{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Refresh posts the refresh token and returns the new access token
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlutil.JoinEndpoint(r.baseURL, RefreshEndpoint), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp.StatusCode, data)
	}

	var parsed refreshResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Access == "" {
		return "", ErrInvalidRefreshResponse
	}

	return parsed.Access, nil
}
