package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devilmonastery/pixelplaylist/internal/pkg/logger"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/metrics"
)

const refreshFlightKey = "refresh"

// errPairReplaced reports that the pair being refreshed was replaced or cleared mid-exchange
var errPairReplaced = errors.New("token pair replaced during refresh")

// TokenManager is the single holder of the current access/refresh pair.
// It is safe for concurrent use; concurrent refreshes collapse into one exchange.
type TokenManager struct {
	mu      sync.RWMutex
	access  string
	refresh string

	store     *Persistence
	refresher Refresher
	flight    singleflight.Group
	now       func() time.Time
	log       *slog.Logger
}

// Option configures a TokenManager
type Option func(*TokenManager)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *TokenManager) {
		m.log = l
	}
}

// NewTokenManager creates a token manager and loads any pair already held by store.
// If store is nil, tokens live in memory only.
func NewTokenManager(store *Persistence, refresher Refresher, opts ...Option) *TokenManager {
	if store == nil {
		store = NewPersistence(NewMemoryStore())
	}

	m := &TokenManager{
		store:     store,
		refresher: refresher,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(slog.String("component", "token_manager"))

	pair, err := store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoTokens) {
			m.log.Warn("failed to load stored tokens", slog.String("error", err.Error()))
		}
		return m
	}
	m.access = pair.Access
	m.refresh = pair.Refresh
	return m
}

// SetTokens replaces both tokens and persists them to every store
func (m *TokenManager) SetTokens(access, refresh string) error {
	m.mu.Lock()
	m.access = access
	m.refresh = refresh
	m.mu.Unlock()

	m.log.Debug("tokens set", slog.String("preview", logger.TokenPreview(access)))
	return m.store.Save(Pair{Access: access, Refresh: refresh})
}

// AccessToken returns the in-memory access token without validating it
func (m *TokenManager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

// ClearTokens wipes tokens from memory and every store. Safe to call repeatedly.
func (m *TokenManager) ClearTokens() error {
	m.mu.Lock()
	m.access = ""
	m.refresh = ""
	m.mu.Unlock()

	return m.store.Clear()
}

// IsAuthenticated reports whether an access token is held. Expiry is not checked.
func (m *TokenManager) IsAuthenticated() bool {
	return m.AccessToken() != ""
}

// EnsureValidToken returns an access token that does not expire within RefreshWindow,
// refreshing it first if needed. It returns "" and a nil error when no token is held.
// A failed refresh clears all tokens and returns an error wrapping ErrRefreshFailed.
func (m *TokenManager) EnsureValidToken(ctx context.Context) (string, error) {
	for {
		m.mu.RLock()
		access, refresh := m.access, m.refresh
		m.mu.RUnlock()

		if access == "" {
			return "", nil
		}
		if !ExpiresWithin(access, m.now(), RefreshWindow) {
			return access, nil
		}

		token, err := m.awaitRefresh(ctx, access, refresh)
		if errors.Is(err, errPairReplaced) {
			// Signed in again while the exchange was in flight; check the new pair
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		return token, err
	}
}

// awaitRefresh joins the exchange for refresh, starting it if none is running.
// Callers holding different pairs never share an exchange.
func (m *TokenManager) awaitRefresh(ctx context.Context, access, refresh string) (string, error) {
	// The exchange outlives any single caller so that waiters are not failed
	// by the cancellation of whichever caller started it.
	ch := m.flight.DoChan(refreshFlightKey+":"+refresh, func() (interface{}, error) {
		return m.refreshAccessToken(context.WithoutCancel(ctx), access, refresh)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.TokenRefreshShared.Inc()
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// refreshAccessToken performs one refresh exchange for the pair (stale, refresh)
func (m *TokenManager) refreshAccessToken(ctx context.Context, stale, refresh string) (string, error) {
	m.mu.RLock()
	access, current := m.access, m.refresh
	m.mu.RUnlock()

	if current != refresh || access == "" {
		return "", errPairReplaced
	}
	// An earlier exchange for this pair already finished
	if access != stale && !ExpiresWithin(access, m.now(), RefreshWindow) {
		return access, nil
	}

	if refresh == "" {
		m.clearAfterFailure(refresh, ErrNoRefreshToken)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoRefreshToken)
	}
	if m.refresher == nil {
		m.clearAfterFailure(refresh, errors.New("no refresher configured"))
		return "", ErrRefreshFailed
	}

	m.log.Info("access token expiring, refreshing")
	start := time.Now()
	newAccess, err := m.refresher.Refresh(ctx, refresh)
	metrics.RecordTokenRefresh(time.Since(start), err)
	if err != nil {
		if m.clearAfterFailure(refresh, err) {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		return "", errPairReplaced
	}

	m.mu.Lock()
	if m.refresh != refresh || m.access == "" {
		m.mu.Unlock()
		m.log.Debug("discarding refresh result for replaced token pair")
		return "", errPairReplaced
	}
	m.access = newAccess
	m.mu.Unlock()

	if err := m.store.SaveAccess(Pair{Access: newAccess, Refresh: refresh}); err != nil {
		m.log.Warn("failed to persist refreshed token", slog.String("error", err.Error()))
	}

	m.log.Info("successfully refreshed token")
	return newAccess, nil
}

// clearAfterFailure wipes the pair that failed to refresh, unless it was already replaced.
// It reports whether the pair was cleared.
func (m *TokenManager) clearAfterFailure(refresh string, cause error) bool {
	m.mu.Lock()
	if m.refresh != refresh || m.access == "" {
		m.mu.Unlock()
		m.log.Debug("ignoring refresh failure for replaced token pair", slog.String("error", cause.Error()))
		return false
	}
	m.access = ""
	m.refresh = ""
	m.mu.Unlock()

	m.log.Error("token refresh failed, clearing tokens", slog.String("error", cause.Error()))
	metrics.TokenClears.WithLabelValues("refresh_failed").Inc()
	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to clear stored tokens", slog.String("error", err.Error()))
	}
	return true
}
