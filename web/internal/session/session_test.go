package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devilmonastery/pixelplaylist/internal/client"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// carryCookies copies the cookies set on rec into a new request, the way a browser would
func carryCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	latest := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		latest[c.Name] = c
	}
	for _, c := range latest {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestRequestSession_RoundTrip(t *testing.T) {
	m := NewManager(testSecret, 3600, false)

	rec := httptest.NewRecorder()
	rs := m.ForRequest(httptest.NewRequest(http.MethodPost, "/sign-in", nil), rec)

	if _, err := rs.Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Fatalf("expected ErrNoTokens, got %v", err)
	}
	if err := rs.Save(client.Pair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := rs.MarkSignedIn("alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	next := m.ForRequest(carryCookies(rec), httptest.NewRecorder())
	pair, err := next.Load()
	if err != nil {
		t.Fatalf("expected tokens in the next request, got %v", err)
	}
	if pair != (client.Pair{Access: "a", Refresh: "r"}) {
		t.Errorf("unexpected pair %+v", pair)
	}
	if next.Username() != "alice" {
		t.Errorf("expected username alice, got %q", next.Username())
	}
}

func TestRequestSession_SignOutDestroysSession(t *testing.T) {
	m := NewManager(testSecret, 3600, false)

	rec := httptest.NewRecorder()
	rs := m.ForRequest(httptest.NewRequest(http.MethodPost, "/sign-in", nil), rec)
	_ = rs.Save(client.Pair{Access: "a", Refresh: "r"})
	_ = rs.MarkSignedIn("alice")

	out := httptest.NewRecorder()
	signedIn := m.ForRequest(carryCookies(rec), out)
	if err := signedIn.Clear(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := signedIn.MarkSignedOut(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var deleted bool
	for _, c := range out.Result().Cookies() {
		if c.Name == SessionName && c.MaxAge < 0 {
			deleted = true
		}
	}
	if !deleted {
		t.Error("expected the session cookie to be deleted")
	}

	after := m.ForRequest(carryCookies(out), httptest.NewRecorder())
	if _, err := after.Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Errorf("expected no tokens after sign-out, got %v", err)
	}
	if after.Username() != "" {
		t.Errorf("expected no username after sign-out, got %q", after.Username())
	}
}

func TestRequestSession_ForeignSecret(t *testing.T) {
	rec := httptest.NewRecorder()
	rs := NewManager(testSecret, 3600, false).ForRequest(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = rs.Save(client.Pair{Access: "a", Refresh: "r"})

	rotated := NewManager([]byte("fedcba9876543210fedcba9876543210"), 3600, false)
	if _, err := rotated.ForRequest(carryCookies(rec), httptest.NewRecorder()).Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Errorf("expected unreadable session to hold no tokens, got %v", err)
	}
}

func TestCookieStore(t *testing.T) {
	rec := httptest.NewRecorder()
	store := NewCookieStore(httptest.NewRequest(http.MethodGet, "/", nil), rec, true)

	if _, err := store.Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Fatalf("expected ErrNoTokens, got %v", err)
	}

	if err := store.Save(client.Pair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
			t.Errorf("cookie %s: unexpected attributes %+v", c.Name, c)
		}
		if c.MaxAge != int(client.CookieLifetime.Seconds()) {
			t.Errorf("cookie %s: expected 7 day lifetime, got %d", c.Name, c.MaxAge)
		}
	}

	loaded, err := NewCookieStore(carryCookies(rec), httptest.NewRecorder(), true).Load()
	if err != nil || loaded != (client.Pair{Access: "a", Refresh: "r"}) {
		t.Errorf("unexpected pair %+v, %v", loaded, err)
	}

	cleared := httptest.NewRecorder()
	_ = NewCookieStore(carryCookies(rec), cleared, true).Clear()
	for _, c := range cleared.Result().Cookies() {
		if c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("cookie %s: expected deletion, got %+v", c.Name, c)
		}
	}
}

func TestNewTokenManager_SessionIsAuthoritative(t *testing.T) {
	m := NewManager(testSecret, 3600, false)

	rec := httptest.NewRecorder()
	_ = m.ForRequest(httptest.NewRequest(http.MethodGet, "/", nil), rec).Save(client.Pair{Access: "from-session", Refresh: "r"})

	req := carryCookies(rec)
	req.AddCookie(&http.Cookie{Name: client.AccessCookie, Value: "from-cookie"})

	tokens, _ := NewTokenManager(m, req, httptest.NewRecorder(), nil)
	if tokens.AccessToken() != "from-session" {
		t.Errorf("expected token from the session, got %q", tokens.AccessToken())
	}

	// Cookies alone do not sign anyone in
	cookieOnly := httptest.NewRequest(http.MethodGet, "/", nil)
	cookieOnly.AddCookie(&http.Cookie{Name: client.AccessCookie, Value: "from-cookie"})
	tokens, _ = NewTokenManager(m, cookieOnly, httptest.NewRecorder(), nil)
	if tokens.IsAuthenticated() {
		t.Error("expected no tokens without a session")
	}
}
