package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshWindow is how close to expiry an access token may get before it is refreshed
const RefreshWindow = 300 * time.Second

// ErrMalformedToken is returned when a token cannot be decoded as a JWT
var ErrMalformedToken = errors.New("malformed token")

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The backend verifies tokens; the client only needs to know when to refresh.
// ok is false when the token is well formed but carries no exp claim.
func TokenExpiry(token string) (exp time.Time, ok bool, err error) {
	if token == "" {
		return time.Time{}, false, ErrMalformedToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	date, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if date == nil {
		return time.Time{}, false, nil
	}

	return date.Time, true, nil
}

// ExpiresWithin reports whether token expires before now+window.
// Tokens that cannot be decoded count as expiring.
// A token without an exp claim never expires from the client's point of view.
func ExpiresWithin(token string, now time.Time, window time.Duration) bool {
	exp, ok, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return exp.Before(now.Add(window))
}

// IsExpired reports whether token is already past its exp claim (or unreadable)
func IsExpired(token string, now time.Time) bool {
	exp, ok, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !exp.After(now)
}
