package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	// AccessCookie is the cookie mirroring the access token for server-side checks
	AccessCookie = "access_token"

	// RefreshCookie is the cookie mirroring the refresh token
	RefreshCookie = "refresh_token"

	// CookieLifetime is how long mirrored token cookies live
	CookieLifetime = 7 * 24 * time.Hour
)

// ErrNoTokens is returned by a Store that holds nothing
var ErrNoTokens = errors.New("no tokens stored")

// Pair is an access/refresh token pair
type Pair struct {
	Access  string
	Refresh string
}

// IsZero reports whether the pair holds no tokens at all
func (p Pair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists a token pair.
// Different implementations keep tokens in files, cookie jars, HTTP responses, etc.
type Store interface {
	// Load returns the stored pair, or ErrNoTokens
	Load() (Pair, error)

	// Save replaces the stored pair
	Save(pair Pair) error

	// Clear removes the stored pair; clearing an empty store is not an error
	Clear() error
}

// Persistence writes a pair to one authoritative store and any number of mirrors.
// Load only consults the authoritative store.
type Persistence struct {
	primary Store
	mirrors []Store
	log     *slog.Logger
}

// NewPersistence creates a persistence layer over primary and its mirrors
func NewPersistence(primary Store, mirrors ...Store) *Persistence {
	return &Persistence{
		primary: primary,
		mirrors: mirrors,
		log:     slog.Default().With(slog.String("component", "token_persistence")),
	}
}

// Load returns the pair held by the authoritative store
func (p *Persistence) Load() (Pair, error) {
	return p.primary.Load()
}

// Save writes the pair to the authoritative store and every mirror
func (p *Persistence) Save(pair Pair) error {
	if err := p.primary.Save(pair); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	var errs []error
	for _, m := range p.mirrors {
		if err := m.Save(pair); err != nil {
			p.log.Warn("failed to mirror tokens", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveAccess writes a refreshed pair to the authoritative store only.
// Mirrors keep the access token they were given at sign-in.
func (p *Persistence) SaveAccess(pair Pair) error {
	if err := p.primary.Save(pair); err != nil {
		return fmt.Errorf("failed to save refreshed token: %w", err)
	}
	return nil
}

// Clear removes the pair from every store, attempting all of them
func (p *Persistence) Clear() error {
	errs := []error{p.primary.Clear()}
	for _, m := range p.mirrors {
		errs = append(errs, m.Clear())
	}
	return errors.Join(errs...)
}

// MemoryStore keeps a pair in process memory
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pair.IsZero() {
		return Pair{}, ErrNoTokens
	}
	return s.pair, nil
}

func (s *MemoryStore) Save(pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}

// MirrorCookies returns the cookies that mirror pair, expiring CookieLifetime after now
func MirrorCookies(pair Pair, now time.Time) []*http.Cookie {
	expires := now.Add(CookieLifetime)
	return []*http.Cookie{
		mirrorCookie(AccessCookie, pair.Access, expires, int(CookieLifetime.Seconds())),
		mirrorCookie(RefreshCookie, pair.Refresh, expires, int(CookieLifetime.Seconds())),
	}
}

// ExpiredMirrorCookies returns cookies that delete the mirrored tokens
func ExpiredMirrorCookies() []*http.Cookie {
	return []*http.Cookie{
		mirrorCookie(AccessCookie, "", time.Unix(0, 0), -1),
		mirrorCookie(RefreshCookie, "", time.Unix(0, 0), -1),
	}
}

func mirrorCookie(name, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// JarMirror mirrors the pair into the cookie jar used for backend requests
type JarMirror struct {
	jar http.CookieJar
	url *url.URL
	now func() time.Time
}

// NewJarMirror creates a mirror that scopes cookies to baseURL
func NewJarMirror(jar http.CookieJar, baseURL string) (*JarMirror, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &JarMirror{jar: jar, url: u, now: time.Now}, nil
}

// Load reads the mirrored cookies back from the jar.
// Jars do not hand Secure cookies to plain-http URLs, so this is empty for http backends.
func (j *JarMirror) Load() (Pair, error) {
	var pair Pair
	for _, c := range j.jar.Cookies(j.url) {
		switch c.Name {
		case AccessCookie:
			pair.Access = c.Value
		case RefreshCookie:
			pair.Refresh = c.Value
		}
	}
	if pair.IsZero() {
		return Pair{}, ErrNoTokens
	}
	return pair, nil
}

func (j *JarMirror) Save(pair Pair) error {
	j.jar.SetCookies(j.url, MirrorCookies(pair, j.now()))
	return nil
}

func (j *JarMirror) Clear() error {
	j.jar.SetCookies(j.url, ExpiredMirrorCookies())
	return nil
}
