package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/logger"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/metrics"
)

const (
	// TokenEndpoint issues an access/refresh pair for valid credentials
	TokenEndpoint = "api/token/"

	// RegisterEndpoint creates a user account
	RegisterEndpoint = "api/users/"

	signInFallback = "Login failed"
	signUpFallback = "An unexpected error occurred"

	// SignUpSuccessMessage tells a newly registered user to sign in
	SignUpSuccessMessage = "Account created successfully! You may now sign in. :)"
)

// AuthState records who the surface believes is signed in.
// Tokens live in the TokenManager; this only tracks the display state.
type AuthState interface {
	MarkSignedIn(username string) error
	MarkSignedOut() error
	Username() string
}

// MemoryAuthState keeps auth state in process memory
type MemoryAuthState struct {
	mu       sync.RWMutex
	username string
}

// NewMemoryAuthState creates a signed-out state
func NewMemoryAuthState() *MemoryAuthState {
	return &MemoryAuthState{}
}

func (s *MemoryAuthState) MarkSignedIn(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	return nil
}

func (s *MemoryAuthState) MarkSignedOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	return nil
}

func (s *MemoryAuthState) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// AuthService signs users in, up, and out
type AuthService struct {
	api   *client.Client
	state AuthState
	log   *slog.Logger
}

// NewAuthService creates a new auth service.
// If state is nil, auth state is kept in memory.
func NewAuthService(api *client.Client, state AuthState) *AuthService {
	if state == nil {
		state = NewMemoryAuthState()
	}
	return &AuthService{
		api:   api,
		state: state,
		log:   slog.Default().With(slog.String("component", "auth_service")),
	}
}

// SignIn exchanges credentials for tokens and stores them
func (s *AuthService) SignIn(ctx context.Context, identifier, password string) entities.Result {
	if err := ValidateSignIn(identifier, password); err != nil {
		return ResultFromError(err, signInFallback)
	}
	identifier = strings.TrimSpace(identifier)
	log := logger.WithUser(s.log, identifier)

	pair, err := client.Post[entities.TokenPair](ctx, s.api, TokenEndpoint, entities.Credentials{
		Username: identifier,
		Password: password,
	}, client.RequestOptions{})
	if err != nil {
		log.Info("sign-in rejected", slog.String("error", err.Error()))
		return ResultFromError(err, signInFallback)
	}
	if pair.Access == "" || pair.Refresh == "" {
		log.Warn("token endpoint returned an incomplete pair")
		return entities.Failed(signInFallback)
	}

	if err := s.api.Tokens().SetTokens(pair.Access, pair.Refresh); err != nil {
		log.Warn("failed to persist tokens", slog.String("error", err.Error()))
	}
	if err := s.state.MarkSignedIn(identifier); err != nil {
		log.Warn("failed to record signed-in state", slog.String("error", err.Error()))
	}

	log.Info("signed in")
	return entities.Succeeded("Signed in successfully")
}

// SignUp registers a new account. It does not sign the user in.
func (s *AuthService) SignUp(ctx context.Context, reg entities.Registration) entities.Result {
	if err := ValidateRegistration(reg); err != nil {
		return ResultFromError(err, signUpFallback)
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if _, err := client.Post[json.RawMessage](ctx, s.api, RegisterEndpoint, reg, client.RequestOptions{}); err != nil {
		s.log.Info("sign-up rejected", slog.String("username", reg.Username), slog.String("error", err.Error()))
		return ResultFromError(err, signUpFallback)
	}

	s.log.Info("account created", slog.String("username", reg.Username))
	return entities.Succeeded(SignUpSuccessMessage)
}

// SignOut clears tokens and the signed-in state. Safe to call when signed out.
func (s *AuthService) SignOut() entities.Result {
	if err := s.api.Tokens().ClearTokens(); err != nil {
		s.log.Warn("failed to clear stored tokens", slog.String("error", err.Error()))
	}
	if err := s.state.MarkSignedOut(); err != nil {
		s.log.Warn("failed to record signed-out state", slog.String("error", err.Error()))
	}
	metrics.TokenClears.WithLabelValues("sign_out").Inc()
	return entities.Succeeded("Signed out")
}

// IsAuthenticated reports whether an access token is held
func (s *AuthService) IsAuthenticated() bool {
	return s.api.Tokens().IsAuthenticated()
}

// Username returns the name the user signed in with, if any
func (s *AuthService) Username() string {
	return s.state.Username()
}
