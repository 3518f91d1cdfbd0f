package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/metrics"
)

const (
	// SignInPath is where unauthenticated visitors of private routes are sent
	SignInPath = "/sign-in"

	// HomePath is where signed-in visitors of the sign-in page are sent
	HomePath = "/recommendations"
)

// PrivateRoutes require a signed-in visitor. Matching is by substring, so
// localized paths such as /en/settings are covered too.
var PrivateRoutes = []string{"/admin-page", "/settings", "/playlists"}

// RouteGuard redirects page requests based on the access_token cookie.
// It only looks at the cookie; the token is never refreshed here.
type RouteGuard struct {
	now func() time.Time
	log *slog.Logger
}

// NewRouteGuard creates a route guard
func NewRouteGuard(log *slog.Logger) *RouteGuard {
	return &RouteGuard{
		now: time.Now,
		log: log.With(slog.String("component", "route_guard")),
	}
}

// Wrap applies the guard in front of next. Only page loads (GET and HEAD) are checked.
func (g *RouteGuard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || !guarded(path) {
			next.ServeHTTP(w, r)
			return
		}

		authenticated := g.hasValidAccessCookie(r)

		if isPrivate(path) && !authenticated {
			g.log.Debug("no valid access token cookie, redirecting to sign-in", slog.String("path", path))
			metrics.RouteGuardRedirects.WithLabelValues("unauthenticated").Inc()
			redirect(w, r, SignInPath)
			return
		}

		if authenticated && strings.Contains(path, SignInPath) {
			metrics.RouteGuardRedirects.WithLabelValues("already_signed_in").Inc()
			redirect(w, r, HomePath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hasValidAccessCookie reports whether the access_token cookie holds a JWT whose
// exp lies in the future. Tokens without exp do not count.
func (g *RouteGuard) hasValidAccessCookie(r *http.Request) bool {
	cookie, err := r.Cookie(client.AccessCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	exp, ok, err := client.TokenExpiry(cookie.Value)
	if err != nil || !ok {
		return false
	}
	return exp.After(g.now())
}

// guarded reports whether path is a page route. API calls, static assets and
// anything that looks like a file are passed straight through.
func guarded(path string) bool {
	rest := strings.TrimPrefix(path, "/")
	for _, prefix := range []string{"api", "static", "_next"} {
		if strings.HasPrefix(rest, prefix) {
			return false
		}
	}
	return !strings.Contains(rest, ".")
}

func isPrivate(path string) bool {
	for _, route := range PrivateRoutes {
		if strings.Contains(path, route) {
			return true
		}
	}
	return false
}

// redirect keeps the query string, like a rewritten URL would
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	target := *r.URL
	target.Path = path
	http.Redirect(w, r, target.RequestURI(), http.StatusTemporaryRedirect)
}
