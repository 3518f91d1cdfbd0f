package session

import (
	"net/http"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

// CookieStore mirrors the token pair into the access_token/refresh_token
// cookies read by the route guard. Reads come from the request; writes go out
// as Set-Cookie headers on the response.
type CookieStore struct {
	request *http.Request
	writer  http.ResponseWriter
	secure  bool
	now     func() time.Time
}

// NewCookieStore creates a cookie mirror for one request
func NewCookieStore(r *http.Request, w http.ResponseWriter, secure bool) *CookieStore {
	return &CookieStore{
		request: r,
		writer:  w,
		secure:  secure,
		now:     time.Now,
	}
}

func (c *CookieStore) Load() (client.Pair, error) {
	var pair client.Pair
	if cookie, err := c.request.Cookie(client.AccessCookie); err == nil {
		pair.Access = cookie.Value
	}
	if cookie, err := c.request.Cookie(client.RefreshCookie); err == nil {
		pair.Refresh = cookie.Value
	}
	if pair.IsZero() {
		return client.Pair{}, client.ErrNoTokens
	}
	return pair, nil
}

func (c *CookieStore) Save(pair client.Pair) error {
	for _, cookie := range client.MirrorCookies(pair, c.now()) {
		cookie.Secure = c.secure
		http.SetCookie(c.writer, cookie)
	}
	return nil
}

func (c *CookieStore) Clear() error {
	for _, cookie := range client.ExpiredMirrorCookies() {
		cookie.Secure = c.secure
		http.SetCookie(c.writer, cookie)
	}
	return nil
}
