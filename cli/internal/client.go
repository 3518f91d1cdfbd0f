package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

const requestTimeout = 30 * time.Second

// session bundles the API client with the stores backing it
type session struct {
	api     *client.Client
	creds   *FileStore
	cookies *CookieFileStore
}

// newSession builds an API client for the current context.
// Tokens are read from the context's credentials file and mirrored into the
// cookie jar sent to the backend.
func newSession(config *Config) (*session, error) {
	baseURL, err := config.BaseURL()
	if err != nil {
		return nil, fmt.Errorf("failed to get backend URL: %w", err)
	}

	credsPath, cookiesPath, err := contextFiles(config.CurrentContext)
	if err != nil {
		return nil, err
	}
	creds := NewFileStore(credsPath)
	cookies := NewCookieFileStore(cookiesPath)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if err := seedJar(jar, baseURL, cookies); err != nil {
		slog.Debug("failed to restore cookies", slog.String("error", err.Error()))
	}
	jarMirror, err := client.NewJarMirror(jar, baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Jar:       jar,
		Timeout:   requestTimeout,
		Transport: client.NewMetricsTransport(nil),
	}

	tokens := client.NewTokenManager(
		client.NewPersistence(creds, cookies, jarMirror),
		client.NewHTTPRefresher(baseURL, httpClient),
		client.WithLogger(slog.Default()),
	)

	api := client.NewClient(baseURL, tokens,
		client.WithHTTPClient(httpClient),
		client.WithAuthFailureHandler(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Please run 'pixelplaylist auth login' again.")
		}),
	)

	return &session{api: api, creds: creds, cookies: cookies}, nil
}

// seedJar restores persisted mirror cookies into the jar for baseURL
func seedJar(jar http.CookieJar, baseURL string, cookies *CookieFileStore) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	stored, err := cookies.Cookies()
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		jar.SetCookies(u, stored)
	}
	return nil
}
