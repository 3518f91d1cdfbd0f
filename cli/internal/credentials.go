package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

// Credentials is the on-disk token record for one context
type Credentials struct {
	Token    string `json:"token"`
	Refresh  string `json:"refresh"`
	Username string `json:"username,omitempty"`
}

// FileStore keeps the token pair and signed-in username in a JSON file readable only by the owner.
// It is the authoritative token store for the CLI.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		log:  slog.Default().With(slog.String("component", "cli-creds")),
	}
}

// Path returns the credentials file location
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (client.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return client.Pair{}, err
	}
	pair := client.Pair{Access: creds.Token, Refresh: creds.Refresh}
	if pair.IsZero() {
		return client.Pair{}, client.ErrNoTokens
	}
	return pair, nil
}

func (f *FileStore) Save(pair client.Pair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		creds = &Credentials{}
	}
	creds.Token = pair.Access
	creds.Refresh = pair.Refresh
	return f.write(creds)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// MarkSignedIn records the username alongside the stored tokens
func (f *FileStore) MarkSignedIn(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		creds = &Credentials{}
	}
	creds.Username = username
	return f.write(creds)
}

// MarkSignedOut forgets the username. Tokens are cleared separately.
func (f *FileStore) MarkSignedOut() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return nil
	}
	creds.Username = ""
	if creds.Token == "" && creds.Refresh == "" {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		return nil
	}
	return f.write(creds)
}

// Username returns the signed-in username, if recorded
func (f *FileStore) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return ""
	}
	return creds.Username
}

func (f *FileStore) read() (*Credentials, error) {
	f.log.Debug("loading credentials from file", slog.String("path", f.path))

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, client.ErrNoTokens
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

func (f *FileStore) write(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions (read/write for owner only)
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// storedCookie is the on-disk form of a mirrored cookie
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// CookieFileStore persists the mirrored token cookies between CLI invocations,
// the way a browser keeps its cookie jar
type CookieFileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewCookieFileStore creates a cookie mirror backed by path
func NewCookieFileStore(path string) *CookieFileStore {
	return &CookieFileStore{path: path, now: time.Now}
}

// Cookies returns the persisted cookies that have not yet expired
func (s *CookieFileStore) Cookies() ([]*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse cookies: %w", err)
	}

	now := s.now()
	var cookies []*http.Cookie
	for _, sc := range stored {
		if !sc.Expires.After(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     "/",
			Expires:  sc.Expires,
			MaxAge:   int(sc.Expires.Sub(now).Seconds()),
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
	return cookies, nil
}

func (s *CookieFileStore) Load() (client.Pair, error) {
	cookies, err := s.Cookies()
	if err != nil {
		return client.Pair{}, err
	}

	var pair client.Pair
	for _, c := range cookies {
		switch c.Name {
		case client.AccessCookie:
			pair.Access = c.Value
		case client.RefreshCookie:
			pair.Refresh = c.Value
		}
	}
	if pair.IsZero() {
		return client.Pair{}, client.ErrNoTokens
	}
	return pair, nil
}

func (s *CookieFileStore) Save(pair client.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored []storedCookie
	for _, c := range client.MirrorCookies(pair, s.now()) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value, Expires: c.Expires})
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	return nil
}

func (s *CookieFileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cookies: %w", err)
	}
	return nil
}

// contextFiles returns the credentials and cookie file paths for a context
func contextFiles(contextName string) (credsPath, cookiesPath string, err error) {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".config", "pixelplaylist")
	}

	credsPath = filepath.Join(dir, fmt.Sprintf("credentials-%s.json", contextName))
	cookiesPath = filepath.Join(dir, fmt.Sprintf("cookies-%s.json", contextName))
	return credsPath, cookiesPath, nil
}

// ConfigDirEnv overrides the directory holding per-context credentials
const ConfigDirEnv = "PIXELPLAYLIST_CONFIG_DIR"
