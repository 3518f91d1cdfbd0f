package session

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "pixelplaylist_session"

	// AccessKey is the session key for the access token
	AccessKey = "token"

	// RefreshKey is the session key for the refresh token
	RefreshKey = "refresh"

	// UsernameKey is the session key for the signed-in username
	UsernameKey = "username"
)

// Manager wraps gorilla/sessions for our use case
type Manager struct {
	store  *sessions.CookieStore
	secure bool
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes; maxAge is in seconds.
func NewManager(secretKey []byte, maxAge int, secure bool) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store:  store,
		secure: secure,
	}
}

// SecureCookies reports whether cookies set by the gateway carry the Secure attribute
func (m *Manager) SecureCookies() bool {
	return m.secure
}

// GetSession returns the session for r, creating a fresh one if the cookie is missing or unreadable
func (m *Manager) GetSession(r *http.Request) *sessions.Session {
	// An undecodable cookie (e.g. after a secret rotation) yields a fresh session
	session, _ := m.store.Get(r, SessionName)
	return session
}

// Username returns the signed-in username recorded in the session
func (m *Manager) Username(r *http.Request) string {
	username, _ := m.GetSession(r).Values[UsernameKey].(string)
	return username
}

// ForRequest binds the session to one request/response pair
func (m *Manager) ForRequest(r *http.Request, w http.ResponseWriter) *RequestSession {
	return &RequestSession{
		manager: m,
		request: r,
		writer:  w,
		log:     slog.Default().With(slog.String("component", "web_session")),
	}
}

// RequestSession is the session of a single request. It is the authoritative
// token store for the gateway and records the signed-in username.
type RequestSession struct {
	manager *Manager
	request *http.Request
	writer  http.ResponseWriter
	log     *slog.Logger
}

func (s *RequestSession) Load() (client.Pair, error) {
	values := s.manager.GetSession(s.request).Values
	access, _ := values[AccessKey].(string)
	refresh, _ := values[RefreshKey].(string)

	pair := client.Pair{Access: access, Refresh: refresh}
	if pair.IsZero() {
		return client.Pair{}, client.ErrNoTokens
	}
	return pair, nil
}

func (s *RequestSession) Save(pair client.Pair) error {
	session := s.manager.GetSession(s.request)
	session.Values[AccessKey] = pair.Access
	session.Values[RefreshKey] = pair.Refresh
	return session.Save(s.request, s.writer)
}

func (s *RequestSession) Clear() error {
	session := s.manager.GetSession(s.request)
	delete(session.Values, AccessKey)
	delete(session.Values, RefreshKey)
	return session.Save(s.request, s.writer)
}

// MarkSignedIn records the username in the session
func (s *RequestSession) MarkSignedIn(username string) error {
	session := s.manager.GetSession(s.request)
	session.Values[UsernameKey] = username
	return session.Save(s.request, s.writer)
}

// MarkSignedOut removes the session cookie entirely
func (s *RequestSession) MarkSignedOut() error {
	session := s.manager.GetSession(s.request)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	s.log.Debug("session destroyed")
	return session.Save(s.request, s.writer)
}

// Username returns the signed-in username
func (s *RequestSession) Username() string {
	return s.manager.Username(s.request)
}
