package session

import (
	"log/slog"
	"net/http"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

// NewTokenManager creates a token manager for one request.
// The session is authoritative; the plain cookies mirror it for the route guard.
// Note: This must be created per-request since it needs access to the request/response
func NewTokenManager(m *Manager, r *http.Request, w http.ResponseWriter, refresher client.Refresher) (*client.TokenManager, *RequestSession) {
	rs := m.ForRequest(r, w)
	persistence := client.NewPersistence(rs, NewCookieStore(r, w, m.SecureCookies()))
	tokens := client.NewTokenManager(persistence, refresher, client.WithLogger(slog.Default()))
	return tokens, rs
}
