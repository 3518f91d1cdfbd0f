package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

func createTestToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     float64(exp.Unix()),
	})
	// ParseUnverified doesn't check signatures
	tokenString, _ := token.SigningString()
	return tokenString + ".fake_signature"
}

// testBackend wires a fake backend to a client with separate primary and mirror stores
type testBackend struct {
	srv     *httptest.Server
	api     *client.Client
	primary *client.MemoryStore
	mirror  *client.MemoryStore
	hits    atomic.Int32
}

func newTestBackend(t *testing.T, mux *http.ServeMux) *testBackend {
	t.Helper()
	b := &testBackend{
		primary: client.NewMemoryStore(),
		mirror:  client.NewMemoryStore(),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)

	tokens := client.NewTokenManager(
		client.NewPersistence(b.primary, b.mirror),
		client.NewHTTPRefresher(b.srv.URL, b.srv.Client()),
	)
	b.api = client.NewClient(b.srv.URL, tokens, client.WithHTTPClient(b.srv.Client()))
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignIn_ValidCredentials(t *testing.T) {
	access := createTestToken(time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var creds entities.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "alice" || creds.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": "opaque-refresh"})
	})
	b := newTestBackend(t, mux)

	state := NewMemoryAuthState()
	auth := NewAuthService(b.api, state)

	res := auth.SignIn(context.Background(), "alice", "secret123")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !auth.IsAuthenticated() {
		t.Error("expected authenticated after sign-in")
	}
	if state.Username() != "alice" {
		t.Errorf("expected username alice, got %q", state.Username())
	}

	want := client.Pair{Access: access, Refresh: "opaque-refresh"}
	for name, store := range map[string]*client.MemoryStore{"primary": b.primary, "mirror": b.mirror} {
		got, err := store.Load()
		if err != nil {
			t.Fatalf("%s: expected tokens, got %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %+v, got %+v", name, want, got)
		}
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
	})
	b := newTestBackend(t, mux)
	auth := NewAuthService(b.api, nil)

	res := auth.SignIn(context.Background(), "alice", "wrong-password")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "No active account found with the given credentials" {
		t.Errorf("unexpected error message %q", res.Error)
	}
	if auth.IsAuthenticated() {
		t.Error("expected to remain unauthenticated")
	}
	if auth.Username() != "" {
		t.Errorf("expected no username, got %q", auth.Username())
	}
}

func TestSignIn_ValidationSkipsNetwork(t *testing.T) {
	b := newTestBackend(t, http.NewServeMux())
	auth := NewAuthService(b.api, nil)

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "missing identifier", identifier: "  ", password: "secret123"},
		{name: "missing password", identifier: "alice", password: ""},
		{name: "malformed email", identifier: "alice@", password: "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := auth.SignIn(context.Background(), tt.identifier, tt.password)
			if res.Success {
				t.Error("expected failure")
			}
			if res.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
	if b.hits.Load() != 0 {
		t.Errorf("expected no network calls, got %d", b.hits.Load())
	}
}

func TestSignIn_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	auth := NewAuthService(client.NewClient(url, nil), nil)
	res := auth.SignIn(context.Background(), "alice", "secret123")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != NetworkErrorMessage {
		t.Errorf("expected network message, got %q", res.Error)
	}
}

func TestSignUp(t *testing.T) {
	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		if received["username"] == "taken" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 2, "username": received["username"]})
	})
	b := newTestBackend(t, mux)
	auth := NewAuthService(b.api, nil)

	res := auth.SignUp(context.Background(), entities.Registration{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "hunter222",
		ConfirmPassword: "hunter222",
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Message != SignUpSuccessMessage {
		t.Errorf("unexpected message %q", res.Message)
	}
	if _, ok := received["ConfirmPassword"]; ok {
		t.Error("confirmation should not be sent to the backend")
	}
	if auth.IsAuthenticated() {
		t.Error("sign-up must not authenticate")
	}

	res = auth.SignUp(context.Background(), entities.Registration{
		Username:        "taken",
		Email:           "taken@example.com",
		Password:        "hunter222",
		ConfirmPassword: "hunter222",
	})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.FieldErrors["username"] != "A user with that username already exists." {
		t.Errorf("expected username field error, got %v", res.FieldErrors)
	}
}

func TestSignOut(t *testing.T) {
	b := newTestBackend(t, http.NewServeMux())
	state := NewMemoryAuthState()
	_ = state.MarkSignedIn("alice")
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")

	auth := NewAuthService(b.api, state)
	if res := auth.SignOut(); !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if auth.IsAuthenticated() {
		t.Error("expected unauthenticated after sign-out")
	}
	if state.Username() != "" {
		t.Error("expected signed-out state")
	}
	if _, err := b.primary.Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Errorf("expected primary cleared, got %v", err)
	}
	if _, err := b.mirror.Load(); !errors.Is(err, client.ErrNoTokens) {
		t.Errorf("expected mirror cleared, got %v", err)
	}

	// Signing out twice is fine
	if res := auth.SignOut(); !res.Success {
		t.Errorf("expected second sign-out to succeed, got %+v", res)
	}
}

func TestValidateRegistration(t *testing.T) {
	valid := entities.Registration{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "hunter222",
		ConfirmPassword: "hunter222",
	}

	tests := []struct {
		name  string
		edit  func(r *entities.Registration)
		field string
	}{
		{name: "valid", edit: func(r *entities.Registration) {}},
		{name: "missing username", edit: func(r *entities.Registration) { r.Username = "" }, field: "username"},
		{name: "missing email", edit: func(r *entities.Registration) { r.Email = "" }, field: "email"},
		{name: "bad email", edit: func(r *entities.Registration) { r.Email = "bob@example" }, field: "email"},
		{name: "short password", edit: func(r *entities.Registration) { r.Password, r.ConfirmPassword = "short", "short" }, field: "password"},
		{name: "exactly 8 characters", edit: func(r *entities.Registration) { r.Password, r.ConfirmPassword = "12345678", "12345678" }},
		{name: "mismatch", edit: func(r *entities.Registration) { r.ConfirmPassword = "hunter333" }, field: "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid
			tt.edit(&reg)
			err := ValidateRegistration(reg)

			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, vErr.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected error to match ErrValidation")
			}
		})
	}
}

func TestValidatePasswordChange(t *testing.T) {
	tests := []struct {
		name    string
		pc      entities.PasswordChange
		wantErr bool
	}{
		{name: "valid", pc: entities.PasswordChange{OldPassword: "old", NewPassword1: "newpassword", NewPassword2: "newpassword"}},
		{name: "missing old", pc: entities.PasswordChange{NewPassword1: "newpassword", NewPassword2: "newpassword"}, wantErr: true},
		{name: "mismatch", pc: entities.PasswordChange{OldPassword: "old", NewPassword1: "newpassword", NewPassword2: "newpassworx"}, wantErr: true},
		{name: "too short", pc: entities.PasswordChange{OldPassword: "old", NewPassword1: "short", NewPassword2: "short"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordChange(tt.pc)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePasswordChange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSavePlaylist_RejectsWithoutNetwork(t *testing.T) {
	b := newTestBackend(t, http.NewServeMux())
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")
	playlists := NewPlaylistService(b.api)

	eight := make([]entities.GameRecommendation, entities.MaxPlaylistGames+1)
	for i := range eight {
		eight[i].Title = "Game"
	}

	tests := []struct {
		name  string
		pName string
		games []entities.GameRecommendation
	}{
		{name: "empty name", pName: "", games: []entities.GameRecommendation{{Title: "Celeste"}}},
		{name: "blank name", pName: "   ", games: []entities.GameRecommendation{{Title: "Celeste"}}},
		{name: "too many games", pName: "Too many", games: eight},
		{name: "game without title", pName: "Untitled", games: []entities.GameRecommendation{{Title: "Celeste"}, {Title: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := playlists.SavePlaylist(context.Background(), tt.pName, tt.games)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if b.hits.Load() != 0 {
		t.Errorf("expected no network calls, got %d", b.hits.Load())
	}
}

func TestSavePlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/playlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("expected bearer token")
		}
		var body entities.NewPlaylist
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, entities.Playlist{ID: 5, Name: body.Name, Games: body.Games})
	})
	b := newTestBackend(t, mux)
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")

	games := make([]entities.GameRecommendation, entities.MaxPlaylistGames)
	for i := range games {
		games[i].Title = "Game"
	}

	playlist, err := NewPlaylistService(b.api).SavePlaylist(context.Background(), "Weekend", games)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if playlist.ID != 5 || playlist.Name != "Weekend" || len(playlist.Games) != entities.MaxPlaylistGames {
		t.Errorf("unexpected playlist %+v", playlist)
	}
}

func TestGetPlaylists_RequiresSignIn(t *testing.T) {
	b := newTestBackend(t, http.NewServeMux())

	_, err := NewPlaylistService(b.api).GetPlaylists(context.Background())
	if !errors.Is(err, client.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if msg := UserMessage(err, "fallback"); msg != SignInRequiredMessage {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDeletePlaylist(t *testing.T) {
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/playlists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, []entities.Playlist{{ID: 3, Name: "Retro"}})
	})
	b := newTestBackend(t, mux)
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")
	svc := NewPlaylistService(b.api)

	if err := svc.DeletePlaylist(context.Background(), 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "/api/playlists/3/" {
		t.Errorf("unexpected delete path %q", deleted)
	}

	found, err := svc.FindPlaylist(context.Background(), "Retro")
	if err != nil || found.ID != 3 {
		t.Errorf("expected to find playlist 3, got %+v, %v", found, err)
	}
	if _, err := svc.FindPlaylist(context.Background(), "Missing"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestFetchGameRecommendations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recommendations/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("recommendations are public")
		}
		var q entities.RecommendationQuery
		_ = json.NewDecoder(r.Body).Decode(&q)
		if len(q.Platforms) != 1 || q.Platforms[0] != 130 {
			t.Errorf("unexpected query %+v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title":"Hades","cover":null,"platforms":["Nintendo Switch"],"summary":"Roguelike","genres":["Indie"],"price":{"price":19.99,"store":"eShop","discount":null,"currency":"GBP","url":null}}]`))
	})
	b := newTestBackend(t, mux)
	svc := NewRecommendationService(b.api)

	games, err := svc.FetchGameRecommendations(context.Background(), entities.RecommendationQuery{Platforms: []int{130}, Budget: 30})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(games) != 1 || games[0].Title != "Hades" {
		t.Fatalf("unexpected games %+v", games)
	}
	if got := games[0].Price.String(); got != "19.99 GBP at eShop" {
		t.Errorf("unexpected price %q", got)
	}

	_, err = svc.FetchGameRecommendations(context.Background(), entities.RecommendationQuery{Budget: 30})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error without platforms, got %v", err)
	}
	_, err = svc.FetchGameRecommendations(context.Background(), entities.RecommendationQuery{Platforms: []int{6}, Budget: -1})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for negative budget, got %v", err)
	}
}

func TestFetchGenres_Sorted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/genres/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []entities.Genre{{ID: 12, Name: "Role-playing (RPG)"}, {ID: 5, Name: "Adventure"}})
	})
	b := newTestBackend(t, mux)

	genres, err := NewGenreService(b.api).FetchGenres(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Adventure" {
		t.Errorf("expected genres sorted by name, got %+v", genres)
	}
}

func TestUpdateProfile_FieldErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/profile/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"user with this email already exists."}})
	})
	b := newTestBackend(t, mux)
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")

	user, res := NewUserService(b.api).UpdateProfile(context.Background(), entities.ProfileUpdate{Email: "dup@example.com"})
	if user != nil || res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != ValidationErrorMessage {
		t.Errorf("expected %q, got %q", ValidationErrorMessage, res.Error)
	}
	if res.FieldErrors["email"] != "user with this email already exists." {
		t.Errorf("unexpected field errors %v", res.FieldErrors)
	}
}

func TestChangePassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/change-password/", func(w http.ResponseWriter, r *http.Request) {
		var pc map[string]string
		_ = json.NewDecoder(r.Body).Decode(&pc)
		if pc["old_password"] != "oldpassword" || pc["new_password1"] != "newpassword" || pc["new_password2"] != "newpassword" {
			t.Errorf("unexpected body %v", pc)
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Password updated"})
	})
	b := newTestBackend(t, mux)
	_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")

	res := NewUserService(b.api).ChangePassword(context.Background(), entities.PasswordChange{
		OldPassword:  "oldpassword",
		NewPassword1: "newpassword",
		NewPassword2: "newpassword",
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role    string
		wantErr error
	}{
		{role: entities.RoleAdmin},
		{role: "USER", wantErr: ErrAdminRequired},
		{role: "", wantErr: ErrAdminRequired},
	}

	for _, tt := range tests {
		t.Run("role="+tt.role, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/user/profile/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, entities.User{ID: 1, Username: "alice", Role: tt.role})
			})
			b := newTestBackend(t, mux)
			_ = b.api.Tokens().SetTokens(createTestToken(time.Now().Add(time.Hour)), "refresh")

			user, err := NewUserService(b.api).RequireAdmin(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && (user == nil || !user.IsAdmin()) {
				t.Errorf("expected admin user, got %+v", user)
			}
			if tt.wantErr != nil && UserMessage(err, "") != "Admin access required" {
				t.Errorf("unexpected message %q", UserMessage(err, ""))
			}
		})
	}
}

func TestResultFromError_KeepsCause(t *testing.T) {
	res := ResultFromError(client.ErrAuthRequired, "fallback")
	if !errors.Is(res.Cause, client.ErrAuthRequired) {
		t.Errorf("expected cause to be kept, got %v", res.Cause)
	}

	res = ResultFromError(invalid("email", "Please enter a valid email address"), "fallback")
	if !errors.Is(res.Cause, ErrValidation) {
		t.Errorf("expected validation cause, got %v", res.Cause)
	}
}

func TestResultFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "validation", err: invalid("name", "Playlist name cannot be empty"), expected: "Playlist name cannot be empty"},
		{name: "network", err: client.ErrNetwork, expected: NetworkErrorMessage},
		{name: "auth required", err: client.ErrAuthRequired, expected: SignInRequiredMessage},
		{name: "refresh failed", err: client.ErrRefreshFailed, expected: SessionExpiredMessage},
		{name: "server reported", err: &client.APIError{StatusCode: 500, Message: "Engine down", ServerReported: true}, expected: "Engine down"},
		{name: "unknown", err: errors.New("decode failure"), expected: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResultFromError(tt.err, "Something went wrong")
			if res.Success {
				t.Error("expected failure")
			}
			if res.Error != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, res.Error)
			}
		})
	}
}
