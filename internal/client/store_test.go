package client

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"
	"time"
)

type failingStore struct {
	MemoryStore
	err error
}

func (s *failingStore) Save(Pair) error { return s.err }
func (s *failingStore) Clear() error    { return s.err }

func TestPersistence_SaveWritesAllStores(t *testing.T) {
	primary := NewMemoryStore()
	mirror := NewMemoryStore()
	p := NewPersistence(primary, mirror)

	pair := Pair{Access: "a", Refresh: "r"}
	if err := p.Save(pair); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for name, s := range map[string]*MemoryStore{"primary": primary, "mirror": mirror} {
		got, err := s.Load()
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", name, err)
		}
		if got != pair {
			t.Errorf("%s: expected %+v, got %+v", name, pair, got)
		}
	}
}

func TestPersistence_SaveAccessSkipsMirrors(t *testing.T) {
	primary := NewMemoryStore()
	mirror := NewMemoryStore()
	p := NewPersistence(primary, mirror)

	if err := p.Save(Pair{Access: "old", Refresh: "r"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := p.SaveAccess(Pair{Access: "new", Refresh: "r"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := primary.Load()
	if got.Access != "new" {
		t.Errorf("expected primary access=new, got %q", got.Access)
	}
	mirrored, _ := mirror.Load()
	if mirrored.Access != "old" {
		t.Errorf("expected mirror access=old, got %q", mirrored.Access)
	}
}

func TestPersistence_ClearAttemptsEveryStore(t *testing.T) {
	boom := errors.New("boom")
	primary := &failingStore{err: boom}
	mirror := NewMemoryStore()
	_ = mirror.Save(Pair{Access: "a", Refresh: "r"})

	p := NewPersistence(primary, mirror)
	err := p.Clear()
	if !errors.Is(err, boom) {
		t.Errorf("expected boom error, got %v", err)
	}

	if _, err := mirror.Load(); !errors.Is(err, ErrNoTokens) {
		t.Errorf("expected mirror to be cleared, got %v", err)
	}
}

func TestPersistence_PrimaryFailureStopsSave(t *testing.T) {
	boom := errors.New("boom")
	mirror := NewMemoryStore()
	p := NewPersistence(&failingStore{err: boom}, mirror)

	if err := p.Save(Pair{Access: "a", Refresh: "r"}); !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if _, err := mirror.Load(); !errors.Is(err, ErrNoTokens) {
		t.Errorf("expected mirror untouched, got %v", err)
	}
}

func TestMemoryStore_EmptyLoad(t *testing.T) {
	if _, err := NewMemoryStore().Load(); !errors.Is(err, ErrNoTokens) {
		t.Errorf("expected ErrNoTokens, got %v", err)
	}
}

func TestMirrorCookies(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	cookies := MirrorCookies(Pair{Access: "a", Refresh: "r"}, now)

	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}

	want := map[string]string{AccessCookie: "a", RefreshCookie: "r"}
	for _, c := range cookies {
		if want[c.Name] != c.Value {
			t.Errorf("cookie %s: expected value %q, got %q", c.Name, want[c.Name], c.Value)
		}
		if !c.Secure {
			t.Errorf("cookie %s: expected Secure", c.Name)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie %s: expected SameSite=Strict", c.Name)
		}
		if !c.Expires.Equal(now.Add(7 * 24 * time.Hour)) {
			t.Errorf("cookie %s: expected 7 day expiry, got %v", c.Name, c.Expires)
		}
	}
}

func TestJarMirror(t *testing.T) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create jar: %v", err)
	}

	mirror, err := NewJarMirror(jar, "https://api.example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mirror.Save(Pair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := mirror.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Access != "a" || got.Refresh != "r" {
		t.Errorf("expected mirrored pair, got %+v", got)
	}

	if err := mirror.Clear(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	u, _ := url.Parse("https://api.example.com")
	if cookies := jar.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected jar to be empty, got %d cookies", len(cookies))
	}
}
